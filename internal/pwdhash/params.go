package pwdhash

import (
	"fmt"
	"sort"
)

const (
	DefaultLength = 10 // Output length of the default profile
	DefaultRounds = 10 // Hash rounds of the default profile
	MinLength     = 2  // Room for one lowercase and one upper/digit
	MaxLength     = 43 // Unpadded base64 length of a SHA-256 digest
)

// Params describes one derivation profile
type Params struct {
	Length              int
	Rounds              int
	RequireLower        bool
	RequireUpperOrDigit bool
}

// DefaultParams returns the base profile: 10 characters, 10 rounds
func DefaultParams() Params {
	return Params{
		Length:              DefaultLength,
		Rounds:              DefaultRounds,
		RequireLower:        true,
		RequireUpperOrDigit: true,
	}
}

// profiles holds the named alternates. Entries are append-only.
var profiles = map[string]Params{
	"default": DefaultParams(),
	"long": {
		Length:              16,
		Rounds:              DefaultRounds,
		RequireLower:        true,
		RequireUpperOrDigit: true,
	},
}

// Profile looks up a named profile
func Profile(name string) (Params, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames returns the known profile names in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// check reports why params cannot be used, or nil
func (p Params) check() error {
	if p.Length < MinLength || p.Length > MaxLength {
		return fmt.Errorf("%w: length %d outside [%d, %d]", ErrInvalidInput, p.Length, MinLength, MaxLength)
	}
	if p.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be at least 1, got %d", ErrInvalidInput, p.Rounds)
	}
	return nil
}
