package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DevelopmentalArea tags what an activity helps develop.
type DevelopmentalArea string

const (
	AreaCognitive  DevelopmentalArea = "cognitive"
	AreaMotor      DevelopmentalArea = "motor"
	AreaSocial     DevelopmentalArea = "social"
	AreaLanguage   DevelopmentalArea = "language"
	AreaEmotional  DevelopmentalArea = "emotional"
	AreaCreativity DevelopmentalArea = "creativity"
)

// DevelopmentalAreas lists every accepted area.
func DevelopmentalAreas() []DevelopmentalArea {
	return []DevelopmentalArea{AreaCognitive, AreaMotor, AreaSocial, AreaLanguage, AreaEmotional, AreaCreativity}
}

// ParseDevelopmentalArea converts raw input into a known area.
func ParseDevelopmentalArea(raw string) (DevelopmentalArea, bool) {
	area := DevelopmentalArea(strings.ToLower(strings.TrimSpace(raw)))

	return area, slices.Contains(DevelopmentalAreas(), area)
}

// Difficulty of an activity.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty converts raw input into a known difficulty.
func ParseDifficulty(raw string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

// AgeRange is an inclusive range of years.
type AgeRange struct {
	Min int
	Max int
}

// Overlaps reports whether the range intersects [minAge, maxAge]. A nil bound is open.
func (r AgeRange) Overlaps(minAge, maxAge *int) bool {
	if minAge != nil && r.Max < *minAge {
		return false
	}
	if maxAge != nil && r.Min > *maxAge {
		return false
	}

	return true
}

// Activity is a single educational task.
type Activity struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	AgeRange           AgeRange
	TimeRequired       int // minutes
	Materials          []string
	Steps              []string
	Images             []string
	DevelopmentalAreas []DevelopmentalArea
	Difficulty         Difficulty
	IsPremium          bool
	PackID             *uuid.UUID
	Tags               []string
	Popularity         int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the authoring invariants and returns the first violation.
func (a *Activity) Validate() string {
	switch {
	case strings.TrimSpace(a.Title) == "":
		return "title is required"
	case strings.TrimSpace(a.Description) == "":
		return "description is required"
	case a.AgeRange.Min < 0 || a.AgeRange.Max < 0:
		return "age range must be non-negative"
	case a.AgeRange.Min > a.AgeRange.Max:
		return "age range min must not exceed max"
	case a.TimeRequired <= 0:
		return "time required must be positive"
	case len(a.Steps) == 0:
		return "at least one step is required"
	case len(a.DevelopmentalAreas) == 0:
		return "at least one developmental area is required"
	}

	for _, area := range a.DevelopmentalAreas {
		if _, ok := ParseDevelopmentalArea(string(area)); !ok {
			return "unknown developmental area: " + string(area)
		}
	}
	if _, ok := ParseDifficulty(string(a.Difficulty)); !ok {
		return "unknown difficulty: " + string(a.Difficulty)
	}

	return ""
}

// ApplyDefaults fills optional fields that have a documented default.
func (a *Activity) ApplyDefaults() {
	if a.Difficulty == "" {
		a.Difficulty = DifficultyMedium
	}
}

// HasAnyArea reports whether the activity carries at least one of areas.
func (a *Activity) HasAnyArea(areas []DevelopmentalArea) bool {
	return slices.ContainsFunc(areas, func(area DevelopmentalArea) bool {
		return slices.Contains(a.DevelopmentalAreas, area)
	})
}

// HasAllMaterials reports whether every requested material is listed verbatim.
func (a *Activity) HasAllMaterials(materials []string) bool {
	for _, want := range materials {
		if !slices.Contains(a.Materials, want) {
			return false
		}
	}

	return true
}
