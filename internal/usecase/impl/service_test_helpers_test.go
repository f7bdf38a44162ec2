package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"brightsteps/config"
	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/service"
	"brightsteps/internal/infra/persistence/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Pagination: config.PaginationConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Subscription: config.SubscriptionConfig{
			DefaultPeriodMonths: 1,
		},
		QRCode: &config.QRCodeConfig{
			Size:    128,
			BaseURL: "https://app.example.com",
		},
	}
}

func fixedClock() time.Time {
	return testNow
}

// usageSpy records usage events.
type usageSpy struct {
	mu      sync.Mutex
	views   int
	denials map[string]int
}

func newUsageSpy() *usageSpy {
	return &usageSpy{denials: map[string]int{}}
}

func (s *usageSpy) ActivityViewed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views++
}

func (s *usageSpy) AccessDenied(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denials[reason]++
}

// eventSpy records published events.
type eventSpy struct {
	mu     sync.Mutex
	events []*service.DomainEvent
}

func (s *eventSpy) Publish(_ context.Context, event *service.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)

	return nil
}

func (s *eventSpy) Close() error {
	return nil
}

func (s *eventSpy) ofType(eventType string) []*service.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*service.DomainEvent
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}

	return out
}

// catalogFixture seeds a memory store with one pack and a spread of activities.
type catalogFixture struct {
	store       *memory.Store
	pack        *entity.ActivityPack
	inactive    *entity.ActivityPack
	free        *entity.Activity
	premium     *entity.Activity
	packPremium *entity.Activity
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()

	pack := &entity.ActivityPack{
		Title:              "Rainy Day Crafts",
		Description:        "Indoor crafts",
		Theme:              "crafts",
		AgeRange:           entity.AgeRange{Min: 3, Max: 6},
		DevelopmentalFocus: []entity.DevelopmentalArea{entity.AreaCreativity},
		ActivityCount:      1,
		IsActive:           true,
	}
	inactive := &entity.ActivityPack{
		Title:              "Retired Pack",
		Description:        "No longer sold",
		Theme:              "archive",
		AgeRange:           entity.AgeRange{Min: 2, Max: 4},
		DevelopmentalFocus: []entity.DevelopmentalArea{entity.AreaMotor},
	}
	require.NoError(t, store.Packs().Create(ctx, pack))
	require.NoError(t, store.Packs().Create(ctx, inactive))

	free := newActivity("Leaf Rubbing", false, nil, testNow.Add(-3*time.Hour))
	premium := newActivity("Shadow Puppets", true, nil, testNow.Add(-2*time.Hour))
	packPremium := newActivity("Paper Plate Masks", true, &pack.ID, testNow.Add(-1*time.Hour))
	for _, activity := range []*entity.Activity{free, premium, packPremium} {
		require.NoError(t, store.Activities().Create(ctx, activity))
	}

	return &catalogFixture{
		store:       store,
		pack:        pack,
		inactive:    inactive,
		free:        free,
		premium:     premium,
		packPremium: packPremium,
	}
}

func newActivity(title string, premium bool, packID *uuid.UUID, createdAt time.Time) *entity.Activity {
	return &entity.Activity{
		Title:              title,
		Description:        title + " for little hands",
		AgeRange:           entity.AgeRange{Min: 3, Max: 6},
		TimeRequired:       20,
		Materials:          []string{"paper"},
		Steps:              []string{"Prepare", "Play"},
		Images:             []string{"cover.png"},
		DevelopmentalAreas: []entity.DevelopmentalArea{entity.AreaCreativity},
		Difficulty:         entity.DifficultyEasy,
		IsPremium:          premium,
		PackID:             packID,
		CreatedAt:          createdAt,
	}
}

// addUser stores a user on the given tier. A nil expiry means no expiry.
func (f *catalogFixture) addUser(t *testing.T, email string, tier entity.SubscriptionTier, expiry *time.Time) *entity.User {
	t.Helper()

	user := &entity.User{
		Email:              email,
		Name:               "Parent",
		SubscriptionTier:   tier,
		SubscriptionExpiry: expiry,
		CreatedAt:          testNow,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))

	return user
}

func timePtr(t time.Time) *time.Time {
	return &t
}
