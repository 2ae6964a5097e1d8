package crawl

import "context"

// Suggester is the autocomplete collaborator the crawl depends on. Both
// calls return at most TruncationThreshold entries.
type Suggester interface {
	// Streets returns street-name suggestions for a prefix.
	Streets(ctx context.Context, prefix string) ([]string, error)

	// HouseNumbers returns house-number suggestions for a street and an
	// optional number prefix.
	HouseNumbers(ctx context.Context, street, numberPrefix string) ([]string, error)
}

// streetScope explores the global street-name namespace.
type streetScope struct {
	state     *State
	suggester Suggester
	pruner    *Pruner
}

func (s *streetScope) Query(ctx context.Context, prefix string) ([]string, error) {
	return s.suggester.Streets(ctx, prefix)
}

func (s *streetScope) Merge(results []string) {
	s.state.MergeStreets(results)
}

func (s *streetScope) NextSymbols(prefix string) []rune {
	return s.pruner.NextSymbols(prefix)
}

func (s *streetScope) Completed(prefix string) bool {
	return s.state.QueryCompleted(prefix)
}

func (s *streetScope) MarkCompleted(prefix string) {
	s.state.MarkQueryCompleted(prefix)
}

// numberScope explores the house-number namespace of a single street.
type numberScope struct {
	state     *State
	suggester Suggester
	street    string
}

func (s *numberScope) Query(ctx context.Context, prefix string) ([]string, error) {
	return s.suggester.HouseNumbers(ctx, s.street, prefix)
}

func (s *numberScope) Merge(results []string) {
	s.state.MergeHouseNumbers(s.street, results)
}

func (s *numberScope) NextSymbols(string) []rune {
	return []rune(Digits)
}

func (s *numberScope) Completed(prefix string) bool {
	return s.state.NumberQueryCompleted(s.street, prefix)
}

func (s *numberScope) MarkCompleted(prefix string) {
	s.state.MarkNumberQueryCompleted(s.street, prefix)
}
