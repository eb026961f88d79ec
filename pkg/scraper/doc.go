// Package scraper runs the download pipeline for one user and date range.
//
// A run validates its inputs, then pages through every post of the user at
// fixed offsets until the API returns an empty page. Each page is filtered
// by creation date, the surviving image URLs are normalized and collected,
// and the collected list is downloaded into a single zip archive.
//
// Invalid input stops the run before any request is made. A scan that
// matches nothing ends with a no_results error instead of an archive.
//
// Usage:
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    return err
//	}
//
//	result, err := s.Run(ctx, scraper.Request{
//	    UserID: "5f0c...",
//	    Start:  "2024-05-27T00:00:00Z",
//	    End:    "2024-05-28T00:00:00Z",
//	})
//	switch {
//	case errors.IsType(err, errors.ErrorTypeNoResults):
//	    // nothing in range
//	case err != nil:
//	    return err
//	}
//	_, err = result.Archive.WriteTo(w)
package scraper
