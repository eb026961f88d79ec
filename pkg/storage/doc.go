// Package storage writes finished archives to disk.
//
// Files are written to a temporary file in the output directory and renamed
// into place, so a partially written archive is never visible under its final
// name. When overwriting is disabled an existing file keeps its name and the
// new archive is saved as name-2.zip, name-3.zip and so on.
//
// Usage:
//
//	manager, err := storage.NewManager(cfg.Output.Directory, cfg.Output.OverwriteExisting)
//	if err != nil {
//	    return err
//	}
//
//	path, err := manager.Save(cfg.Output.ArchiveName, result)
//	if err != nil {
//	    return fmt.Errorf("failed to save archive: %w", err)
//	}
package storage
