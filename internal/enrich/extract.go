package enrich

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Meta tag names read from listing pages.
const (
	tagTwitterImage = "twitter:image"
	tagOGImage      = "og:image"
	tagTwitterSite  = "twitter:site"
	tagDescription  = "description"
	tagKeywords     = "keywords"
)

// ErrNotHTML is returned for responses that declare a non-HTML media type.
var ErrNotHTML = errors.New("response is not html")

// CheckContentType accepts an empty header or any HTML media type.
func CheckContentType(header string) error {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotHTML, header)
	}
	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotHTML, mediaType)
}

// Extract reads the supported meta tags from an HTML document. Tags are
// matched on either the name or the property attribute, case-insensitively,
// and the first non-empty content wins.
func Extract(body []byte) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	tags := make(map[string]string)
	present := make(map[string]bool)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		for _, attr := range []string{"name", "property"} {
			key, found := s.Attr(attr)
			if !found {
				continue
			}
			key = strings.ToLower(strings.TrimSpace(key))
			present[key] = true
			if _, seen := tags[key]; !seen && content != "" {
				tags[key] = content
			}
		}
	})

	md := Metadata{
		Image:       tags[tagTwitterImage],
		Twitter:     tags[tagTwitterSite],
		Description: tags[tagDescription],
	}
	if md.Image == "" {
		md.Image = tags[tagOGImage]
	}
	if present[tagKeywords] {
		md.Keywords = SplitKeywords(tags[tagKeywords])
	}
	return md, nil
}

// SplitKeywords splits a comma-separated keywords value, trimming entries and
// dropping empty ones. The result is never nil.
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
