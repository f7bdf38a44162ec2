package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/service"
	"brightsteps/internal/infra/qrcode"
	mockService "brightsteps/internal/mocks/service"
	"brightsteps/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestActivityService(t *testing.T) (*activityService, *catalogFixture, *usageSpy) {
	t.Helper()

	catalog := newCatalogFixture(t)
	usage := newUsageSpy()
	cfg := newTestConfig()
	srv := NewActivityService(ActivityServiceParams{
		UserRepo:     catalog.store.Users(),
		ActivityRepo: catalog.store.Activities(),
		Usage:        usage,
		Events:       &eventSpy{},
		QRCode:       qrcode.NewQRCodeService(cfg),
		Config:       cfg,
		Logger:       newDiscardLogger(),
	}).(*activityService)
	srv.now = fixedClock

	return srv, catalog, usage
}

func TestActivityService_GetActivity_FreeActivityForAnyone(t *testing.T) {
	srv, catalog, usage := createTestActivityService(t)
	freeUser := catalog.addUser(t, "free@example.com", entity.TierFree, nil)

	for _, viewer := range []uuid.UUID{uuid.Nil, freeUser.ID} {
		activity, err := srv.GetActivity(context.Background(), viewer, catalog.free.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.free.ID, activity.ID)
		assert.NotEmpty(t, activity.Steps)
	}
	assert.Equal(t, 2, usage.views)
}

func TestActivityService_GetActivity_PremiumWithoutPack(t *testing.T) {
	srv, catalog, usage := createTestActivityService(t)

	premium := catalog.addUser(t, "premium@example.com", entity.TierPremium, timePtr(testNow.AddDate(0, 1, 0)))
	family := catalog.addUser(t, "family@example.com", entity.TierFamily, nil)
	expired := catalog.addUser(t, "expired@example.com", entity.TierPremium, timePtr(testNow.Add(-time.Minute)))
	free := catalog.addUser(t, "free@example.com", entity.TierFree, nil)

	tests := []struct {
		name    string
		viewer  uuid.UUID
		allowed bool
	}{
		{name: "anonymous", viewer: uuid.Nil},
		{name: "free tier", viewer: free.ID},
		{name: "expired premium", viewer: expired.ID},
		{name: "active premium", viewer: premium.ID, allowed: true},
		{name: "family without expiry", viewer: family.ID, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity, err := srv.GetActivity(context.Background(), tt.viewer, catalog.premium.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, catalog.premium.ID, activity.ID)

				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrPremiumRequired)
			assert.Nil(t, activity)
		})
	}

	assert.Equal(t, 3, usage.denials[service.DenyReasonPremiumRequired])
	assert.Equal(t, 2, usage.views)
}

func TestActivityService_GetActivity_PackOwnerOnFreeTier(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()

	owner := catalog.addUser(t, "owner@example.com", entity.TierFree, nil)
	require.NoError(t, catalog.store.Users().AddPurchasedPack(ctx, owner.ID, entity.PurchasedPack{
		PackID:       catalog.pack.ID,
		PurchaseDate: testNow,
	}))
	other := catalog.addUser(t, "other@example.com", entity.TierFree, nil)

	activity, err := srv.GetActivity(ctx, owner.ID, catalog.packPremium.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.packPremium.ID, activity.ID)

	_, err = srv.GetActivity(ctx, other.ID, catalog.packPremium.ID)
	assert.ErrorIs(t, err, domainerrors.ErrPremiumRequired)

	// Owning a pack does not unlock premium activities outside it.
	_, err = srv.GetActivity(ctx, owner.ID, catalog.premium.ID)
	assert.ErrorIs(t, err, domainerrors.ErrPremiumRequired)
}

func TestActivityService_GetActivity_CountsPopularity(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()

	first, err := srv.GetActivity(ctx, uuid.Nil, catalog.free.ID)
	require.NoError(t, err)
	second, err := srv.GetActivity(ctx, uuid.Nil, catalog.free.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Popularity)
	assert.Equal(t, int64(2), second.Popularity)

	stored, err := catalog.store.Activities().FindByID(ctx, catalog.free.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Popularity)
}

func TestActivityService_GetActivity_DeniedDoesNotCount(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()

	_, err := srv.GetActivity(ctx, uuid.Nil, catalog.premium.ID)
	require.Error(t, err)

	stored, err := catalog.store.Activities().FindByID(ctx, catalog.premium.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Popularity)
}

func TestActivityService_GetActivity_NotFound(t *testing.T) {
	srv, _, _ := createTestActivityService(t)

	_, err := srv.GetActivity(context.Background(), uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrActivityNotFound)
}

func TestActivityService_ListActivities_FreeViewerSeesNoPremium(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)

	page, err := srv.ListActivities(context.Background(), uuid.Nil, entity.ActivityFilter{})
	require.NoError(t, err)

	require.Len(t, page.Activities, 1)
	assert.Equal(t, catalog.free.ID, page.Activities[0].ID)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
}

func TestActivityService_ListActivities_PremiumViewerOrderAndPaging(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	premium := catalog.addUser(t, "premium@example.com", entity.TierPremium, nil)

	page, err := srv.ListActivities(context.Background(), premium.ID, entity.ActivityFilter{Page: 1, Limit: 2})
	require.NoError(t, err)

	require.Len(t, page.Activities, 2)
	// Equal popularity falls back to newest first.
	assert.Equal(t, catalog.packPremium.ID, page.Activities[0].ID)
	assert.Equal(t, catalog.premium.ID, page.Activities[1].ID)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = srv.ListActivities(context.Background(), premium.ID, entity.ActivityFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Activities, 1)
	assert.Equal(t, catalog.free.ID, page.Activities[0].ID)
}

func TestActivityService_ListActivities_ClampsLimit(t *testing.T) {
	srv, _, _ := createTestActivityService(t)

	page, err := srv.ListActivities(context.Background(), uuid.Nil, entity.ActivityFilter{Page: -3, Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
}

func TestActivityService_ListActivities_UnknownViewer(t *testing.T) {
	srv, _, _ := createTestActivityService(t)

	_, err := srv.ListActivities(context.Background(), uuid.New(), entity.ActivityFilter{})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestActivityService_AddFavorite_Twice(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()
	user := catalog.addUser(t, "fav@example.com", entity.TierFree, nil)

	require.NoError(t, srv.AddFavorite(ctx, user.ID, catalog.free.ID))
	err := srv.AddFavorite(ctx, user.ID, catalog.free.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyFavorited)

	stored, err := catalog.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{catalog.free.ID}, stored.Favorites)
}

func TestActivityService_AddFavorite_MissingActivity(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	user := catalog.addUser(t, "fav@example.com", entity.TierFree, nil)

	err := srv.AddFavorite(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrActivityNotFound)
}

func TestActivityService_RemoveFavorite_Idempotent(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()
	user := catalog.addUser(t, "fav@example.com", entity.TierFree, nil)

	require.NoError(t, srv.AddFavorite(ctx, user.ID, catalog.free.ID))
	require.NoError(t, srv.RemoveFavorite(ctx, user.ID, catalog.free.ID))
	require.NoError(t, srv.RemoveFavorite(ctx, user.ID, catalog.free.ID))

	stored, err := catalog.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Favorites)
}

func TestActivityService_LogActivity(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()
	user := catalog.addUser(t, "log@example.com", entity.TierFree, nil)

	first, err := srv.LogActivity(ctx, user.ID, catalog.free.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, testNow, first.CompletedDate)
	assert.NotEqual(t, uuid.Nil, first.ID)

	earlier := testNow.Add(-48 * time.Hour)
	second, err := srv.LogActivity(ctx, user.ID, catalog.free.ID, &usecase.LogActivityInput{
		CompletedDate: &earlier,
		Notes:         "loved the colours",
	})
	require.NoError(t, err)
	assert.Equal(t, earlier, second.CompletedDate)
	assert.Equal(t, "loved the colours", second.Notes)

	stored, err := catalog.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 2)
}

func TestActivityService_LogActivity_Rejections(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	ctx := context.Background()
	user := catalog.addUser(t, "log@example.com", entity.TierFree, nil)

	_, err := srv.LogActivity(ctx, user.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, domainerrors.ErrActivityNotFound)

	future := testNow.Add(time.Hour)
	_, err = srv.LogActivity(ctx, user.ID, catalog.free.ID, &usecase.LogActivityInput{CompletedDate: &future})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestActivityService_LogActivity_PublishesEvent(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	user := catalog.addUser(t, "log@example.com", entity.TierFree, nil)

	entry, err := srv.LogActivity(context.Background(), user.ID, catalog.free.ID, nil)
	require.NoError(t, err)

	events := srv.events.(*eventSpy).ofType(service.EventActivityCompleted)
	require.Len(t, events, 1)
	assert.Equal(t, user.ID.String(), events[0].UserID)
	assert.Equal(t, catalog.free.ID.String(), events[0].Data["activity_id"])
	assert.Equal(t, entry.ID.String(), events[0].Data["history_id"])
	assert.NotEmpty(t, events[0].EventID)
}

func TestActivityService_LogActivity_PublishFailureIsNotFatal(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)
	user := catalog.addUser(t, "log@example.com", entity.TierFree, nil)

	publisher := mockService.NewMockEventPublisher(t)
	publisher.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(e *service.DomainEvent) bool {
			return e.Type == service.EventActivityCompleted
		})).
		Return(errors.New("broker unavailable")).
		Once()
	srv.events = publisher

	_, err := srv.LogActivity(context.Background(), user.ID, catalog.free.ID, nil)
	require.NoError(t, err)

	stored, err := catalog.store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 1)
}

func TestActivityService_ShareActivity(t *testing.T) {
	srv, catalog, _ := createTestActivityService(t)

	share, err := srv.ShareActivity(context.Background(), catalog.premium.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/activities/"+catalog.premium.ID.String(), share.URL)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, share.PNG[:4])

	_, err = srv.ShareActivity(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrActivityNotFound)
}
