package handler

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/util"
)

// Query keys accepted by the activity listing.
const (
	queryAgeMin             = "ageMin"
	queryAgeMax             = "ageMax"
	queryDevelopmentalAreas = "developmentalAreas"
	queryTimeMax            = "timeMax"
	queryMaterials          = "materials"
	queryDifficulty         = "difficulty"
	querySearch             = "search"
	queryPage               = "page"
	queryLimit              = "limit"
)

var activityQueryKeys = []string{
	queryAgeMin, queryAgeMax, queryDevelopmentalAreas, queryTimeMax,
	queryMaterials, queryDifficulty, querySearch, queryPage, queryLimit,
}

// parseActivityFilter turns list query parameters into a typed filter. Unknown keys,
// repeated keys and malformed values are rejected rather than ignored.
func parseActivityFilter(values url.Values) (entity.ActivityFilter, error) {
	var filter entity.ActivityFilter

	unknown := make([]string, 0)
	for key, vals := range values {
		if !slices.Contains(activityQueryKeys, key) {
			unknown = append(unknown, key)

			continue
		}
		if len(vals) > 1 {
			return filter, invalidQuery("%s may only be given once", key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)

		return filter, invalidQuery("unknown parameter(s): %s", strings.Join(unknown, ", "))
	}

	var err error
	if filter.AgeMin, err = optionalInt(values, queryAgeMin, 0); err != nil {
		return filter, err
	}
	if filter.AgeMax, err = optionalInt(values, queryAgeMax, 0); err != nil {
		return filter, err
	}
	if filter.AgeMin != nil && filter.AgeMax != nil && *filter.AgeMin > *filter.AgeMax {
		return filter, invalidQuery("%s must not exceed %s", queryAgeMin, queryAgeMax)
	}
	if filter.TimeMax, err = optionalInt(values, queryTimeMax, 0); err != nil {
		return filter, err
	}

	page, err := optionalInt(values, queryPage, 1)
	if err != nil {
		return filter, err
	}
	if page != nil {
		filter.Page = *page
	}
	limit, err := optionalInt(values, queryLimit, 1)
	if err != nil {
		return filter, err
	}
	if limit != nil {
		filter.Limit = *limit
	}

	if values.Has(queryDevelopmentalAreas) {
		for _, raw := range util.SplitCSV(values.Get(queryDevelopmentalAreas)) {
			area, ok := entity.ParseDevelopmentalArea(raw)
			if !ok {
				return filter, invalidQuery("unknown developmental area %q", raw)
			}
			if !slices.Contains(filter.DevelopmentalAreas, area) {
				filter.DevelopmentalAreas = append(filter.DevelopmentalAreas, area)
			}
		}
	}

	if values.Has(queryMaterials) {
		filter.Materials = util.SplitCSV(values.Get(queryMaterials))
	}

	if raw := strings.TrimSpace(values.Get(queryDifficulty)); raw != "" {
		difficulty, ok := entity.ParseDifficulty(raw)
		if !ok {
			return filter, invalidQuery("difficulty must be one of easy, medium, hard")
		}
		filter.Difficulty = difficulty
	}

	filter.Search = strings.TrimSpace(values.Get(querySearch))

	return filter, nil
}

// optionalInt parses key as an integer >= minimum. An absent or empty value yields nil.
func optionalInt(values url.Values, key string, minimum int) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidQuery("%s must be an integer", key)
	}
	if n < minimum {
		return nil, invalidQuery("%s must be at least %d", key, minimum)
	}

	return &n, nil
}

func invalidQuery(format string, args ...any) error {
	return domainerrors.ErrInvalidQuery.WithDetails(fmt.Sprintf(format, args...))
}
