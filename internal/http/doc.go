// Package http is the small HTTP client behind the update checker: it
// reads a release manifest and downloads release files.
//
//	client := http.NewClient(http.WithUserAgent("sheet-export/1.4.0"))
//
//	var m update.Manifest
//	err := client.GetJSON(ctx, manifestURL, &m)
//
//	err = client.DownloadFile(ctx, m.URL, dest, func(written, total int64) {
//	    // total is -1 when the server sends no Content-Length
//	})
//
// Non-200 responses come back as *StatusError. Downloads go through a
// ".part" file so an interrupted download never replaces an existing file.
package http
