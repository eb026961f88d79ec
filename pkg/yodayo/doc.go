// Package yodayo provides a client for the Yodayo posts API.
//
// The client fetches a user's posts one page at a time, probes image URLs
// with HEAD requests and downloads image bytes. Identical page requests are
// memoized for the configured cache window.
//
// Example usage:
//
//	client := yodayo.NewClient(&cfg.API, cfg.Cache.TTL, log)
//
//	for offset := 0; ; offset += cfg.API.PageSize {
//	    posts, err := client.FetchPage(ctx, userID, cfg.API.PageSize, offset)
//	    if err != nil {
//	        return err
//	    }
//	    if len(posts) == 0 {
//	        break
//	    }
//	    for _, post := range posts {
//	        // post.CreatedAt, post.MediaURLs()
//	    }
//	}
package yodayo
