package feed

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedLink is returned when a data row has no [text](url) link.
var ErrMalformedLink = errors.New("malformed link")

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// ParseLink extracts the text and target of the first markdown link in cell.
func ParseLink(cell string) (name, url string, err error) {
	m := linkPattern.FindStringSubmatch(cell)
	if m == nil {
		return "", "", ErrMalformedLink
	}
	return m[1], m[2], nil
}

// NormalizePrice drops markdown escape backslashes. An empty result means
// the price is absent.
func NormalizePrice(cell string) string {
	return strings.TrimSpace(strings.ReplaceAll(cell, `\`, ""))
}

// NormalizeTopic trims the topic cell. An empty result means the topic is
// absent.
func NormalizeTopic(cell string) string {
	return strings.TrimSpace(cell)
}
