// Package sanitize strips unsafe HTML from the free-text fields clients
// may author (course and lecture descriptions).
package sanitize

import "github.com/microcosm-cc/bluemonday"

var ugc = bluemonday.UGCPolicy()

// UGC sanitizes user-generated rich text, keeping common formatting
// elements and dropping scripts and event handlers.
func UGC(s string) string {
	return ugc.Sanitize(s)
}
