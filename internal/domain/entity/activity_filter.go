package entity

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ActivityFilter is the typed form of an activity list query. Present criteria AND together.
type ActivityFilter struct {
	AgeMin             *int
	AgeMax             *int
	DevelopmentalAreas []DevelopmentalArea // any-match
	TimeMax            *int
	Materials          []string // all-match
	Difficulty         Difficulty
	Search             string

	// FreeOnly is set by the access policy for free-tier viewers and is never read from input.
	FreeOnly bool

	// PackID restricts the result to one pack.
	PackID *uuid.UUID

	Page  int // 1-indexed
	Limit int // 0 returns every match
}

// Offset is the number of matches skipped before the current page.
func (f ActivityFilter) Offset() int {
	if f.Limit <= 0 || f.Page <= 1 {
		return 0
	}

	return (f.Page - 1) * f.Limit
}

// TotalPages returns ceil(total/limit).
func (f ActivityFilter) TotalPages(total int64) int {
	if f.Limit <= 0 {
		if total > 0 {
			return 1
		}

		return 0
	}

	return int((total + int64(f.Limit) - 1) / int64(f.Limit))
}

// SearchTerms splits the search text into lower-case word tokens.
func (f ActivityFilter) SearchTerms() []string {
	return Tokenize(f.Search)
}

// Matches evaluates the filter against a single activity.
func (f ActivityFilter) Matches(a *Activity) bool {
	if f.FreeOnly && a.IsPremium {
		return false
	}
	if f.PackID != nil && (a.PackID == nil || *a.PackID != *f.PackID) {
		return false
	}
	if !a.AgeRange.Overlaps(f.AgeMin, f.AgeMax) {
		return false
	}
	if len(f.DevelopmentalAreas) > 0 && !a.HasAnyArea(f.DevelopmentalAreas) {
		return false
	}
	if f.TimeMax != nil && a.TimeRequired > *f.TimeMax {
		return false
	}
	if len(f.Materials) > 0 && !a.HasAllMaterials(f.Materials) {
		return false
	}
	if f.Difficulty != "" && a.Difficulty != f.Difficulty {
		return false
	}
	if terms := f.SearchTerms(); len(terms) > 0 && !matchesAnyTerm(a, terms) {
		return false
	}

	return true
}

func matchesAnyTerm(a *Activity, terms []string) bool {
	words := make(map[string]struct{})
	for _, field := range SearchableText(a) {
		for _, token := range Tokenize(field) {
			words[token] = struct{}{}
		}
	}

	return slices.ContainsFunc(terms, func(term string) bool {
		_, ok := words[term]

		return ok
	})
}

// SearchableText returns the fields covered by full-text search.
func SearchableText(a *Activity) []string {
	fields := make([]string, 0, 2+len(a.Tags)+len(a.Materials))
	fields = append(fields, a.Title, a.Description)
	fields = append(fields, a.Tags...)
	fields = append(fields, a.Materials...)

	return fields
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CompareActivities orders by popularity desc, then creation time desc, then id asc.
func CompareActivities(a, b *Activity) int {
	if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}

	return bytes.Compare(a.ID[:], b.ID[:])
}
