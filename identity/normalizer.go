package identity

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer canonicalizes user names, emails and role names for lookups.
type Normalizer interface {
	Normalize(s string) string
}

// UpperInvariantNormalizer upper-cases with language independent rules.
type UpperInvariantNormalizer struct{}

func (UpperInvariantNormalizer) Normalize(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Upper(language.Und).String(s)
}
