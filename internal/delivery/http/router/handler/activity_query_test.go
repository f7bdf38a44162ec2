package handler

import (
	"net/url"
	"testing"

	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityFilter(t *testing.T) {
	values, err := url.ParseQuery("ageMin=2&ageMax=4&developmentalAreas=motor,Language,motor&timeMax=30" +
		"&materials=paper,%20glue&difficulty=Easy&search=%20paint%20&page=3&limit=20")
	require.NoError(t, err)

	filter, err := parseActivityFilter(values)
	require.NoError(t, err)

	assert.Equal(t, 2, *filter.AgeMin)
	assert.Equal(t, 4, *filter.AgeMax)
	assert.Equal(t, []entity.DevelopmentalArea{entity.AreaMotor, entity.AreaLanguage}, filter.DevelopmentalAreas)
	assert.Equal(t, 30, *filter.TimeMax)
	assert.Equal(t, []string{"paper", "glue"}, filter.Materials)
	assert.Equal(t, entity.DifficultyEasy, filter.Difficulty)
	assert.Equal(t, "paint", filter.Search)
	assert.Equal(t, 3, filter.Page)
	assert.Equal(t, 20, filter.Limit)
	assert.False(t, filter.FreeOnly)
	assert.Nil(t, filter.PackID)
}

func TestParseActivityFilter_Empty(t *testing.T) {
	filter, err := parseActivityFilter(url.Values{})
	require.NoError(t, err)

	assert.Nil(t, filter.AgeMin)
	assert.Nil(t, filter.AgeMax)
	assert.Nil(t, filter.TimeMax)
	assert.Empty(t, filter.DevelopmentalAreas)
	assert.Empty(t, filter.Materials)
	assert.Zero(t, filter.Page)
	assert.Zero(t, filter.Limit)
}

func TestParseActivityFilter_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "non-numeric age", query: "ageMin=two"},
		{name: "negative time", query: "timeMax=-5"},
		{name: "zero page", query: "page=0"},
		{name: "zero limit", query: "limit=0"},
		{name: "fractional limit", query: "limit=2.5"},
		{name: "inverted age range", query: "ageMin=6&ageMax=3"},
		{name: "unknown area", query: "developmentalAreas=motor,juggling"},
		{name: "unknown difficulty", query: "difficulty=extreme"},
		{name: "unknown key", query: "isPremium=false"},
		{name: "repeated key", query: "page=1&page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = parseActivityFilter(values)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidQuery)
		})
	}
}
