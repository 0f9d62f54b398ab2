// Package download fetches release artifacts over HTTP.
//
// A Fetcher performs exactly one download attempt per call: it creates the
// destination file, follows redirects up to a fixed cap, and streams the
// response body to disk. There is no retry, no resumption, and no content
// verification; the HTTPS channel is the only integrity guarantee.
package download
