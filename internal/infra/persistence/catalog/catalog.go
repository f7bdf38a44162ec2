// Package catalog loads authored activities and packs from YAML and writes them through the repositories.
package catalog

import (
	"context"
	"fmt"
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/errors"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// namespace derives stable ids for entries without an explicit id, so re-loading a file yields the same ids.
var namespace = uuid.MustParse("6f1c2b8e-3d4a-4e5f-9a0b-1c2d3e4f5a6b")

// AgeRange is the authored age range.
type AgeRange struct {
	Min int `koanf:"min"`
	Max int `koanf:"max"`
}

// Pack is an authored activity pack. Key is referenced by activities through PackRef.
type Pack struct {
	Key                string   `koanf:"key"`
	ID                 string   `koanf:"id"`
	Title              string   `koanf:"title"`
	Description        string   `koanf:"description"`
	Price              float64  `koanf:"price"`
	CoverImage         string   `koanf:"coverImage"`
	Theme              string   `koanf:"theme"`
	AgeRange           AgeRange `koanf:"ageRange"`
	DevelopmentalFocus []string `koanf:"developmentalFocus"`
	IsActive           bool     `koanf:"isActive"`
}

// Activity is an authored activity.
type Activity struct {
	ID                 string   `koanf:"id"`
	Title              string   `koanf:"title"`
	Description        string   `koanf:"description"`
	AgeRange           AgeRange `koanf:"ageRange"`
	TimeRequired       int      `koanf:"timeRequired"`
	Materials          []string `koanf:"materials"`
	Steps              []string `koanf:"steps"`
	Images             []string `koanf:"images"`
	DevelopmentalAreas []string `koanf:"developmentalAreas"`
	Difficulty         string   `koanf:"difficulty"`
	IsPremium          bool     `koanf:"isPremium"`
	PackRef            string   `koanf:"packRef"`
	Tags               []string `koanf:"tags"`
	Popularity         int64    `koanf:"popularity"`
}

// File is the on-disk catalog document.
type File struct {
	Packs      []Pack     `koanf:"packs"`
	Activities []Activity `koanf:"activities"`
}

// Catalog is a validated, linked set of entities ready to insert.
type Catalog struct {
	Packs      []*entity.ActivityPack
	Activities []*entity.Activity
}

// Load reads and validates a YAML catalog file.
func Load(path string, now time.Time) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	var f File
	if err := k.Unmarshal("", &f); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog")
	}

	return Build(f, now)
}

// Build converts the authored document into entities. Every entry is validated and every PackRef must resolve.
func Build(f File, now time.Time) (*Catalog, error) {
	cat := &Catalog{}
	packsByKey := make(map[string]*entity.ActivityPack, len(f.Packs))

	for i, p := range f.Packs {
		if p.Key == "" {
			return nil, fmt.Errorf("pack #%d: key is required", i)
		}
		if _, dup := packsByKey[p.Key]; dup {
			return nil, fmt.Errorf("pack %q: duplicate key", p.Key)
		}

		id, err := resolveID(p.ID, "pack:"+p.Key)
		if err != nil {
			return nil, fmt.Errorf("pack %q: %w", p.Key, err)
		}
		focus, err := parseAreas(p.DevelopmentalFocus)
		if err != nil {
			return nil, fmt.Errorf("pack %q: %w", p.Key, err)
		}

		pack := &entity.ActivityPack{
			ID:                 id,
			Title:              p.Title,
			Description:        p.Description,
			Price:              p.Price,
			CoverImage:         p.CoverImage,
			Theme:              p.Theme,
			AgeRange:           entity.AgeRange{Min: p.AgeRange.Min, Max: p.AgeRange.Max},
			DevelopmentalFocus: focus,
			IsActive:           p.IsActive,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if msg := pack.Validate(); msg != "" {
			return nil, fmt.Errorf("pack %q: %s", p.Key, msg)
		}

		packsByKey[p.Key] = pack
		cat.Packs = append(cat.Packs, pack)
	}

	for i, a := range f.Activities {
		id, err := resolveID(a.ID, "activity:"+a.Title)
		if err != nil {
			return nil, fmt.Errorf("activity #%d: %w", i, err)
		}
		areas, err := parseAreas(a.DevelopmentalAreas)
		if err != nil {
			return nil, fmt.Errorf("activity %q: %w", a.Title, err)
		}
		var difficulty entity.Difficulty
		if a.Difficulty != "" {
			d, ok := entity.ParseDifficulty(a.Difficulty)
			if !ok {
				return nil, fmt.Errorf("activity %q: unknown difficulty %q", a.Title, a.Difficulty)
			}
			difficulty = d
		}

		activity := &entity.Activity{
			ID:                 id,
			Title:              a.Title,
			Description:        a.Description,
			AgeRange:           entity.AgeRange{Min: a.AgeRange.Min, Max: a.AgeRange.Max},
			TimeRequired:       a.TimeRequired,
			Materials:          a.Materials,
			Steps:              a.Steps,
			Images:             a.Images,
			DevelopmentalAreas: areas,
			Difficulty:         difficulty,
			IsPremium:          a.IsPremium,
			Tags:               a.Tags,
			Popularity:         a.Popularity,
			// Later entries are older so file order breaks popularity ties.
			CreatedAt: now.Add(-time.Duration(i) * time.Second),
			UpdatedAt: now,
		}
		activity.ApplyDefaults()
		if msg := activity.Validate(); msg != "" {
			return nil, fmt.Errorf("activity %q: %s", a.Title, msg)
		}

		if a.PackRef != "" {
			pack, ok := packsByKey[a.PackRef]
			if !ok {
				return nil, fmt.Errorf("activity %q: unknown packRef %q", a.Title, a.PackRef)
			}
			packID := pack.ID
			activity.PackID = &packID
			pack.ActivityCount++
		}

		cat.Activities = append(cat.Activities, activity)
	}

	return cat, nil
}

// Seed inserts the catalog. Packs go first so activity pack references are valid.
func Seed(ctx context.Context, cat *Catalog, packs repository.PackRepository, activities repository.ActivityRepository) error {
	for _, p := range cat.Packs {
		if err := packs.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "failed to seed pack %q", p.Title)
		}
	}
	for _, a := range cat.Activities {
		if err := activities.Create(ctx, a); err != nil {
			return errors.Wrapf(err, "failed to seed activity %q", a.Title)
		}
	}

	return nil
}

func resolveID(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.NewSHA1(namespace, []byte(name)), nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", raw)
	}

	return id, nil
}

func parseAreas(raw []string) ([]entity.DevelopmentalArea, error) {
	areas := make([]entity.DevelopmentalArea, 0, len(raw))
	for _, r := range raw {
		area, ok := entity.ParseDevelopmentalArea(r)
		if !ok {
			return nil, fmt.Errorf("unknown developmental area %q", r)
		}
		areas = append(areas, area)
	}

	return areas, nil
}
