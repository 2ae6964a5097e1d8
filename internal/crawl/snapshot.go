package crawl

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Snapshot is the serializable view of a crawl state. Slices are sorted:
// street names and completed prefixes with German collation, house numbers
// per street by natural numeric order.
type Snapshot struct {
	Streets          []string            `json:"streets"`
	CompletedQueries []string            `json:"completed_queries"`
	StreetNumbers    map[string][]string `json:"street_numbers"`
}

// Snapshot builds a sorted, serializable copy of the current state.
func (s *State) Snapshot() *Snapshot {
	s.mu.Lock()

	snap := &Snapshot{
		Streets:          make([]string, 0, len(s.streets)),
		CompletedQueries: make([]string, 0, len(s.completedQueries)),
		StreetNumbers:    make(map[string][]string, len(s.streetNumbers)),
	}
	for name := range s.streets {
		snap.Streets = append(snap.Streets, name)
	}
	for prefix := range s.completedQueries {
		snap.CompletedQueries = append(snap.CompletedQueries, prefix)
	}
	for street, set := range s.streetNumbers {
		numbers := make([]string, 0, len(set))
		for n := range set {
			numbers = append(numbers, n)
		}
		snap.StreetNumbers[street] = numbers
	}
	s.mu.Unlock()

	sortGerman(snap.Streets)
	sortGerman(snap.CompletedQueries)
	for _, numbers := range snap.StreetNumbers {
		SortHouseNumbers(numbers)
	}
	return snap
}

func sortGerman(items []string) {
	c := collate.New(language.German)
	c.SortStrings(items)
}

// SortHouseNumbers sorts house-number tokens naturally: by the numeric
// value of all digit characters in the token, ties broken by the full
// string. If any token yields no usable numeric key the whole slice falls
// back to plain lexicographic order.
func SortHouseNumbers(numbers []string) {
	keys := make([]int64, len(numbers))
	for i, n := range numbers {
		k, ok := numericKey(n)
		if !ok {
			sort.Strings(numbers)
			return
		}
		keys[i] = k
	}

	sort.Sort(&byNumericKey{numbers: numbers, keys: keys})
}

type byNumericKey struct {
	numbers []string
	keys    []int64
}

func (b *byNumericKey) Len() int { return len(b.numbers) }

func (b *byNumericKey) Less(i, j int) bool {
	if b.keys[i] != b.keys[j] {
		return b.keys[i] < b.keys[j]
	}
	return b.numbers[i] < b.numbers[j]
}

func (b *byNumericKey) Swap(i, j int) {
	b.numbers[i], b.numbers[j] = b.numbers[j], b.numbers[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// numericKey concatenates every digit character in the token and parses
// the result. "12a" -> 12, "1/2" -> 12. Tokens without digits have no key.
func numericKey(token string) (int64, bool) {
	var digits strings.Builder
	for _, r := range token {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
