package domain

// Source is a single configured feed endpoint.
type Source struct {
	Name    string
	URL     string
	Scanner string
	Options map[string]string
}

// FetchResult is the outcome of fetching one source. Err distinguishes a
// failed fetch from a successful fetch that returned zero entries.
type FetchResult struct {
	Source   string
	Entries  []FeedEntry
	Attempts int
	Err      error
}

// OK reports whether the transport succeeded.
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// EntryOutcome labels what the pipeline did with an entry.
type EntryOutcome string

const (
	OutcomeAccepted     EntryOutcome = "accepted"
	OutcomeNoLink       EntryOutcome = "no_link"
	OutcomeSeen         EntryOutcome = "seen"
	OutcomeNoCountry    EntryOutcome = "no_country"
	OutcomeNotCandidate EntryOutcome = "not_candidate"
)
