package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityPack is a themed, separately purchasable bundle of activities.
type ActivityPack struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	Price              float64
	CoverImage         string
	Theme              string
	AgeRange           AgeRange
	DevelopmentalFocus []DevelopmentalArea
	ActivityCount      int
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the authoring invariants and returns the first violation.
func (p *ActivityPack) Validate() string {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return "title is required"
	case strings.TrimSpace(p.Description) == "":
		return "description is required"
	case p.Price < 0:
		return "price must not be negative"
	case strings.TrimSpace(p.Theme) == "":
		return "theme is required"
	case p.AgeRange.Min < 0 || p.AgeRange.Min > p.AgeRange.Max:
		return "invalid age range"
	case len(p.DevelopmentalFocus) == 0:
		return "at least one developmental focus is required"
	}

	for _, area := range p.DevelopmentalFocus {
		if _, ok := ParseDevelopmentalArea(string(area)); !ok {
			return "unknown developmental focus: " + string(area)
		}
	}

	return ""
}
