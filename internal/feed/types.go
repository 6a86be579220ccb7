// Package feed turns the event table into listing records.
package feed

// Listing is one event in the generated feed. Optional fields are empty when
// absent and omitted from the JSON output.
type Listing struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Topic       string   `json:"topic,omitempty"`
	Price       string   `json:"price,omitempty"`
	StartDay    string   `json:"startDay"`
	EndDay      string   `json:"endDay"`
	Image       string   `json:"image,omitempty"`
	Twitter     string   `json:"twitter,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Stats summarises a parse run.
type Stats struct {
	Rows     int
	Listings int
	Skipped  int
}
