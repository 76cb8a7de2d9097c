package identity

// Source tells which resolution step produced a candidate.
type Source string

const (
	SourceExistingRecord Source = "existing-record"
	SourceManualMapping  Source = "manual-mapping"
	SourceRoster         Source = "roster"
	SourceFuzzySearch    Source = "fuzzy-search"
)

// Candidate is a resolved player identity. It is never persisted.
type Candidate struct {
	PlayerID string
	Name     string
	Score    float64
	Source   Source
}

// Entry is a player row returned by a roster lookup or a player search.
type Entry struct {
	ID        string
	Name      string
	Firstname string
	Lastname  string
}

// DisplayName prefers "first last" and falls back to the raw entry name.
func (e Entry) DisplayName() string {
	if e.Firstname != "" && e.Lastname != "" {
		return e.Firstname + " " + e.Lastname
	}
	if e.Name != "" {
		return e.Name
	}
	if e.Lastname != "" {
		return e.Lastname
	}
	return e.Firstname
}
