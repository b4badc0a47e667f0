package model

// Event is a normalized upcoming performance. Optional provider
// fields stay absent when missing: Capacity 0 means unknown and must
// never be fed to scoring as a real capacity, LocalDate "" means the
// provider omitted the date.
type Event struct {
	ID        string
	Name      string
	LocalDate string // YYYY-MM-DD, "" when absent
	City      string
	Venue     string
	Capacity  int // 0 = unknown
	URL       string
	Raw       map[string]any // original provider record, nil for synthetic events
}

// HasCapacity reports whether the provider exposed a venue capacity.
func (e Event) HasCapacity() bool {
	return e.Capacity > 0
}

// VerifiedFanProgram is one presale or registration program attached
// to an artist.
type VerifiedFanProgram struct {
	Name string
	URL  string
}

// VerifiedFanResult reports a program lookup without an error path.
// Lookups that found nothing carry a warning instead of failing.
type VerifiedFanResult struct {
	Programs []VerifiedFanProgram
	Warning  string
}

// Found reports whether any program was observed.
func (r VerifiedFanResult) Found() bool {
	return len(r.Programs) > 0
}
