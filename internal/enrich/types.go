package enrich

// Outcome classifies a metadata lookup.
type Outcome string

// Lookup outcomes.
const (
	OutcomeOK         Outcome = "ok"
	OutcomeNoMetadata Outcome = "no_metadata"
)

// Metadata holds the values read from a listing page. Empty fields are
// absent; Keywords is nil when the page has no keywords tag.
type Metadata struct {
	Image       string
	Twitter     string
	Description string
	Keywords    []string
}

// Result is the outcome of one lookup. Cause explains a no-metadata outcome
// and is only used for logging.
type Result struct {
	Outcome  Outcome
	Metadata Metadata
	Cause    error
}

func withMetadata(md Metadata) Result {
	return Result{Outcome: OutcomeOK, Metadata: md}
}

func withoutMetadata(cause error) Result {
	return Result{Outcome: OutcomeNoMetadata, Cause: cause}
}
