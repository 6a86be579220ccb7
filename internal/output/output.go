// Package output serializes the finished feed.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JakeFAU/eventfeed/internal/feed"
)

// Write encodes listings as a two-space indented JSON array followed by a
// newline. The whole document is built before anything reaches w. A nil
// slice is written as [].
func Write(w io.Writer, listings []feed.Listing) error {
	if listings == nil {
		listings = []feed.Listing{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}
