package crawl

// Alphabet is the set of symbols street-name prefixes are built from:
// the lowercase German alphabet including umlauts and eszett.
const Alphabet = "abcdefghijklmnopqrstuvwxyzäöüß"

// SeedLetters are the initial single-character street prefixes. The
// autocomplete endpoint matches case-insensitively but the city publishes
// street names capitalized, so seeding follows suit.
const SeedLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÜ"

// Digits used to extend a house-number prefix.
const Digits = "0123456789"

// SeedDigits are the initial house-number prefixes. An empty number prefix
// returns no suggestions, and no house number starts with zero, so
// exploration seeds with 1-9.
const SeedDigits = "123456789"

// DefaultExclusions maps a prefix's last character to the successors that
// cannot follow it in German orthography. Pruning these cuts query volume;
// a wrong entry costs completeness, never correctness of what was found.
func DefaultExclusions() map[rune][]rune {
	return map[rune][]rune{
		'b': []rune("bcdfgjkpqvwxz"),
		'c': []rune("bcdfgjpqvwxyz"),
		'd': []rune("bcdfgjkpqvwxz"),
		'f': []rune("bcdgjkpqvwxz"),
		'g': []rune("bcdfjkpqvwxz"),
		'k': []rune("bcdfgjkpqvwxz"),
		'p': []rune("bcdgjkpqvwxz"),
		't': []rune("bcdfgjkpqvwx"),
		// x is vanishingly rare mid-word; never extend past it.
		'x': []rune(Alphabet),
		// q is always followed by u.
		'q': []rune("abcdefghijklmnopqrstvwxyzäöüß"),
	}
}

// Pruner yields the candidate successor symbols for a prefix, skipping
// letter clusters the exclusion table rules out.
type Pruner struct {
	alphabet []rune
	excluded map[rune]map[rune]bool
}

// NewPruner builds a Pruner over the given alphabet and exclusion table.
func NewPruner(alphabet string, exclusions map[rune][]rune) *Pruner {
	excluded := make(map[rune]map[rune]bool, len(exclusions))
	for last, succs := range exclusions {
		set := make(map[rune]bool, len(succs))
		for _, r := range succs {
			set[r] = true
		}
		excluded[last] = set
	}
	return &Pruner{
		alphabet: []rune(alphabet),
		excluded: excluded,
	}
}

// NewGermanPruner builds a Pruner with the default German alphabet and
// exclusion table.
func NewGermanPruner() *Pruner {
	return NewPruner(Alphabet, DefaultExclusions())
}

// NextSymbols returns the symbols that may extend prefix, in alphabet order.
// The full alphabet is returned when the prefix is empty or no exclusion
// rule matches its last character.
func (p *Pruner) NextSymbols(prefix string) []rune {
	runes := []rune(prefix)
	if len(runes) == 0 {
		out := make([]rune, len(p.alphabet))
		copy(out, p.alphabet)
		return out
	}

	last := toLower(runes[len(runes)-1])
	set, ok := p.excluded[last]
	if !ok {
		out := make([]rune, len(p.alphabet))
		copy(out, p.alphabet)
		return out
	}

	var out []rune
	for _, r := range p.alphabet {
		if !set[r] {
			out = append(out, r)
		}
	}
	return out
}

// toLower handles ASCII letters and the German specials without pulling in
// full Unicode case mapping.
func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	switch r {
	case 'Ä':
		return 'ä'
	case 'Ö':
		return 'ö'
	case 'Ü':
		return 'ü'
	}
	return r
}
