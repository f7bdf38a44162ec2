package entity

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func newActivity(minAge, maxAge int) *Activity {
	return &Activity{
		ID:                 uuid.New(),
		Title:              "Sensory bin",
		Description:        "Fill a tub with rice and hidden toys",
		AgeRange:           AgeRange{Min: minAge, Max: maxAge},
		TimeRequired:       20,
		Materials:          []string{"rice", "tub"},
		Steps:              []string{"Fill the tub"},
		DevelopmentalAreas: []DevelopmentalArea{AreaMotor},
		Difficulty:         DifficultyEasy,
	}
}

func TestActivityFilter_AgeOverlap(t *testing.T) {
	filter := ActivityFilter{AgeMin: intPtr(2), AgeMax: intPtr(4)}

	assert.True(t, filter.Matches(newActivity(3, 6)), "[3,6] overlaps [2,4]")
	assert.False(t, filter.Matches(newActivity(5, 6)), "[5,6] does not overlap [2,4]")
	assert.True(t, filter.Matches(newActivity(0, 2)), "touching lower bound overlaps")
	assert.True(t, filter.Matches(newActivity(1, 10)), "containing range overlaps")
	assert.False(t, filter.Matches(newActivity(0, 1)))
}

func TestActivityFilter_AgeSingleBound(t *testing.T) {
	onlyMin := ActivityFilter{AgeMin: intPtr(5)}
	assert.True(t, onlyMin.Matches(newActivity(0, 5)))
	assert.False(t, onlyMin.Matches(newActivity(0, 4)))

	onlyMax := ActivityFilter{AgeMax: intPtr(3)}
	assert.True(t, onlyMax.Matches(newActivity(3, 8)))
	assert.False(t, onlyMax.Matches(newActivity(4, 8)))
}

func TestActivityFilter_DevelopmentalAreasMatchAny(t *testing.T) {
	filter := ActivityFilter{DevelopmentalAreas: []DevelopmentalArea{AreaMotor, AreaLanguage}}

	cognitive := newActivity(2, 5)
	cognitive.DevelopmentalAreas = []DevelopmentalArea{AreaCognitive}
	motorSocial := newActivity(2, 5)
	motorSocial.DevelopmentalAreas = []DevelopmentalArea{AreaMotor, AreaSocial}

	assert.False(t, filter.Matches(cognitive))
	assert.True(t, filter.Matches(motorSocial))
}

func TestActivityFilter_MaterialsMatchAll(t *testing.T) {
	filter := ActivityFilter{Materials: []string{"paper", "glue"}}

	paperOnly := newActivity(2, 5)
	paperOnly.Materials = []string{"paper"}
	both := newActivity(2, 5)
	both.Materials = []string{"glue", "scissors", "paper"}

	assert.False(t, filter.Matches(paperOnly))
	assert.True(t, filter.Matches(both))
}

func TestActivityFilter_TimeDifficultyAndPremium(t *testing.T) {
	a := newActivity(2, 5)
	a.TimeRequired = 30
	a.Difficulty = DifficultyHard
	a.IsPremium = true

	assert.True(t, ActivityFilter{TimeMax: intPtr(30)}.Matches(a))
	assert.False(t, ActivityFilter{TimeMax: intPtr(29)}.Matches(a))
	assert.True(t, ActivityFilter{Difficulty: DifficultyHard}.Matches(a))
	assert.False(t, ActivityFilter{Difficulty: DifficultyEasy}.Matches(a))
	assert.False(t, ActivityFilter{FreeOnly: true}.Matches(a))
}

func TestActivityFilter_Search(t *testing.T) {
	a := newActivity(2, 5)
	a.Tags = []string{"Sensory-Play"}

	assert.True(t, ActivityFilter{Search: "RICE"}.Matches(a), "title and description are searched")
	assert.True(t, ActivityFilter{Search: "tub"}.Matches(a), "materials are searched")
	assert.True(t, ActivityFilter{Search: "sensory"}.Matches(a), "tags are searched")
	assert.True(t, ActivityFilter{Search: "painting toys"}.Matches(a), "any term matches")
	assert.False(t, ActivityFilter{Search: "painting"}.Matches(a))
}

func TestActivityFilter_Pack(t *testing.T) {
	packID := uuid.New()
	inPack := newActivity(2, 5)
	inPack.PackID = &packID

	assert.True(t, ActivityFilter{PackID: &packID}.Matches(inPack))
	assert.False(t, ActivityFilter{PackID: &packID}.Matches(newActivity(2, 5)))
}

func TestActivityFilter_Pagination(t *testing.T) {
	filter := ActivityFilter{Page: 3, Limit: 10}

	assert.Equal(t, 20, filter.Offset())
	assert.Equal(t, 0, filter.TotalPages(0))
	assert.Equal(t, 1, filter.TotalPages(10))
	assert.Equal(t, 3, filter.TotalPages(21))
	assert.Equal(t, 1, ActivityFilter{}.TotalPages(7))
}

func TestCompareActivities(t *testing.T) {
	now := time.Now()
	popular := &Activity{ID: uuid.New(), Popularity: 9, CreatedAt: now.Add(-time.Hour)}
	newer := &Activity{ID: uuid.New(), Popularity: 3, CreatedAt: now}
	older := &Activity{ID: uuid.New(), Popularity: 3, CreatedAt: now.Add(-time.Minute)}

	list := []*Activity{older, newer, popular}
	slices.SortFunc(list, CompareActivities)

	assert.Equal(t, []*Activity{popular, newer, older}, list)
}
