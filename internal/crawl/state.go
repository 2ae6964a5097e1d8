package crawl

import "sync"

// State is the shared accumulator for one crawl: every street name seen,
// every prefix proven exhausted, and the house numbers per street. All
// merges are set unions, so the contents only ever grow. Methods are safe
// for concurrent use; the worker pool in the engine relies on that.
type State struct {
	mu sync.Mutex

	streets          map[string]bool
	completedQueries map[string]bool // street prefixes proven exhausted
	streetNumbers    map[string]map[string]bool
	completedNumbers map[string]bool // street + "#" + prefix, not persisted
}

// NewState creates an empty crawl state.
func NewState() *State {
	return &State{
		streets:          make(map[string]bool),
		completedQueries: make(map[string]bool),
		streetNumbers:    make(map[string]map[string]bool),
		completedNumbers: make(map[string]bool),
	}
}

// Restore rehydrates the state from a persisted snapshot. Completed
// house-number queries are intentionally not restored: per-street
// resumability is governed by key presence in the number index alone.
func (s *State) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range snap.Streets {
		s.streets[name] = true
	}
	for _, prefix := range snap.CompletedQueries {
		s.completedQueries[prefix] = true
	}
	for street, numbers := range snap.StreetNumbers {
		set, ok := s.streetNumbers[street]
		if !ok {
			set = make(map[string]bool, len(numbers))
			s.streetNumbers[street] = set
		}
		for _, n := range numbers {
			set[n] = true
		}
	}
}

// MergeStreets unions names into the street set and reports how many were new.
func (s *State) MergeStreets(names []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, name := range names {
		if !s.streets[name] {
			s.streets[name] = true
			added++
		}
	}
	return added
}

// MergeHouseNumbers unions numbers into the street's set, creating the
// street key if needed, and reports how many were new.
func (s *State) MergeHouseNumbers(street string, numbers []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.ensureStreetLocked(street)
	added := 0
	for _, n := range numbers {
		if !set[n] {
			set[n] = true
			added++
		}
	}
	return added
}

// EnsureStreet records the street key in the number index, marking the
// street as visited even when no house number has been found for it.
func (s *State) EnsureStreet(street string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureStreetLocked(street)
}

func (s *State) ensureStreetLocked(street string) map[string]bool {
	set, ok := s.streetNumbers[street]
	if !ok {
		set = make(map[string]bool)
		s.streetNumbers[street] = set
	}
	return set
}

// StreetDone reports whether the street already exists as a key in the
// number index, regardless of how many numbers it holds.
func (s *State) StreetDone(street string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.streetNumbers[street]
	return ok
}

// QueryCompleted reports whether a street prefix was proven exhausted.
func (s *State) QueryCompleted(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedQueries[prefix]
}

// MarkQueryCompleted records a street prefix as proven exhausted.
func (s *State) MarkQueryCompleted(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedQueries[prefix] = true
}

// ClearCompletedQueries drops all completed street prefixes so a forced
// re-crawl revisits the full tree. Discovered streets are kept.
func (s *State) ClearCompletedQueries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedQueries = make(map[string]bool)
}

// NumberQueryCompleted reports whether a (street, prefix) house-number
// query was proven exhausted during this run.
func (s *State) NumberQueryCompleted(street, prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedNumbers[numberKey(street, prefix)]
}

// MarkNumberQueryCompleted records a (street, prefix) house-number query
// as proven exhausted.
func (s *State) MarkNumberQueryCompleted(street, prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedNumbers[numberKey(street, prefix)] = true
}

func numberKey(street, prefix string) string {
	return street + "#" + prefix
}

// StreetCount returns the number of distinct streets discovered.
func (s *State) StreetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streets)
}

// CompletedCount returns the number of exhausted street prefixes.
func (s *State) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completedQueries)
}

// ProcessedStreetCount returns the number of streets present in the
// number index.
func (s *State) ProcessedStreetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streetNumbers)
}

// NumberCount returns the total number of house numbers across all streets.
func (s *State) NumberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, set := range s.streetNumbers {
		total += len(set)
	}
	return total
}

// Streets returns the discovered street names sorted with German collation.
func (s *State) Streets() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.streets))
	for name := range s.streets {
		names = append(names, name)
	}
	s.mu.Unlock()

	sortGerman(names)
	return names
}
