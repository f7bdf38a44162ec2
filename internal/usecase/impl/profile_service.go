package impl

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"brightsteps/config"
	deliverycontext "brightsteps/internal/delivery/context"
	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/domain/service"
	"brightsteps/internal/usecase"
	"brightsteps/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	packRepo     repository.PackRepository
	events       service.EventPublisher
	periodMonths int
	logger       *slog.Logger
	now          func() time.Time
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	PackRepo     repository.PackRepository
	Events       service.EventPublisher
	Config       *config.Config
	Logger       *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		userRepo:     params.UserRepo,
		activityRepo: params.ActivityRepo,
		packRepo:     params.PackRepo,
		events:       params.Events,
		periodMonths: params.Config.Subscription.DefaultPeriodMonths,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *profileService) loadUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateRepoError(err, "failed to find user")
	}

	return user, nil
}

// UpdateProfile changes name and/or email. The email stays unique case-insensitively.
func (srv *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("name must not be empty")
		}
		user.Name = name
	}
	if input.Email != nil {
		email := util.NormalizeEmail(*input.Email)
		if email == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("email must not be empty")
		}
		user.Email = email
	}

	if err := srv.userRepo.UpdateProfile(ctx, userID, user.Name, user.Email); err != nil {
		return nil, translateRepoError(err, "failed to update profile")
	}

	return srv.loadUser(ctx, userID)
}

func (srv *profileService) AddChild(ctx context.Context, userID uuid.UUID, input *usecase.AddChildInput) (*entity.Child, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("child name is required")
	}
	if input.Birthdate.IsZero() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("child birthdate is required")
	}
	if input.Birthdate.After(srv.now()) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("birthdate must not be in the future")
	}

	child := entity.Child{
		ID:                 uuid.New(),
		Name:               name,
		Birthdate:          input.Birthdate,
		Interests:          util.CleanTags(input.Interests),
		DevelopmentalFocus: util.CleanTags(input.DevelopmentalFocus),
		CreatedAt:          srv.now(),
	}

	if err := srv.userRepo.AddChild(ctx, userID, child); err != nil {
		return nil, translateRepoError(err, "failed to add child")
	}

	srv.log(ctx).Info("Child profile added", slog.Any("userID", userID), slog.Any("childID", child.ID))

	return &child, nil
}

// UpdateChild applies a partial update to a child owned by the user.
func (srv *profileService) UpdateChild(ctx context.Context, userID, childID uuid.UUID, input *usecase.UpdateChildInput) (*entity.Child, error) {
	user, err := srv.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, ok := user.FindChild(childID)
	if !ok {
		return nil, domainerrors.ErrChildNotFound
	}
	child := *current

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("child name must not be empty")
		}
		child.Name = name
	}
	if input.Birthdate != nil {
		if input.Birthdate.After(srv.now()) {
			return nil, domainerrors.ErrValidationFailed.WithDetails("birthdate must not be in the future")
		}
		child.Birthdate = *input.Birthdate
	}
	if input.Interests != nil {
		child.Interests = util.CleanTags(*input.Interests)
	}
	if input.DevelopmentalFocus != nil {
		child.DevelopmentalFocus = util.CleanTags(*input.DevelopmentalFocus)
	}

	if err := srv.userRepo.UpdateChild(ctx, userID, child); err != nil {
		return nil, translateRepoError(err, "failed to update child")
	}

	return &child, nil
}

func (srv *profileService) DeleteChild(ctx context.Context, userID, childID uuid.UUID) error {
	if err := srv.userRepo.DeleteChild(ctx, userID, childID); err != nil {
		return translateRepoError(err, "failed to delete child")
	}

	srv.log(ctx).Info("Child profile deleted", slog.Any("userID", userID), slog.Any("childID", childID))

	return nil
}

// GetFavorites returns favorite activities in the order they were added. Activities that no longer exist are skipped.
func (srv *profileService) GetFavorites(ctx context.Context, userID uuid.UUID) ([]*usecase.LibraryActivity, error) {
	user, err := srv.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID, err := srv.activitiesByID(ctx, user.Favorites)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	favorites := make([]*usecase.LibraryActivity, 0, len(user.Favorites))
	for _, id := range user.Favorites {
		activity, ok := byID[id]
		if !ok {
			continue
		}
		favorites = append(favorites, libraryActivity(user, activity, now))
	}

	return favorites, nil
}

// GetHistory returns history entries newest completion first.
func (srv *profileService) GetHistory(ctx context.Context, userID uuid.UUID) ([]*usecase.HistoryItem, error) {
	user, err := srv.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(user.History))
	for _, entry := range user.History {
		ids = append(ids, entry.ActivityID)
	}

	byID, err := srv.activitiesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	items := make([]*usecase.HistoryItem, 0, len(user.History))
	for _, entry := range user.History {
		item := &usecase.HistoryItem{Entry: entry}
		if activity, ok := byID[entry.ActivityID]; ok {
			item.Activity = libraryActivity(user, activity, now)
		}
		items = append(items, item)
	}

	// Stable so entries logged at the same instant keep insertion order.
	slices.SortStableFunc(items, func(a, b *usecase.HistoryItem) int {
		return b.Entry.CompletedDate.Compare(a.Entry.CompletedDate)
	})

	return items, nil
}

func (srv *profileService) activitiesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Activity, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*entity.Activity{}, nil
	}

	activities, err := srv.activityRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, translateRepoError(err, "failed to load activities")
	}

	byID := make(map[uuid.UUID]*entity.Activity, len(activities))
	for _, activity := range activities {
		byID[activity.ID] = activity
	}

	return byID, nil
}

// UpdateSubscription sets the subscription tier. A paid tier without an explicit expiry
// runs for the configured number of calendar months from now.
func (srv *profileService) UpdateSubscription(ctx context.Context, userID uuid.UUID, input *usecase.UpdateSubscriptionInput) (*entity.User, error) {
	tier, ok := entity.ParseSubscriptionTier(input.Tier)
	if !ok {
		return nil, domainerrors.ErrValidationFailed.WithDetails("tier must be one of free, premium, family")
	}

	expiry := input.Expiry
	if expiry == nil && tier.IsPaid() {
		next := srv.now().AddDate(0, srv.periodMonths, 0)
		expiry = &next
	}

	if err := srv.userRepo.UpdateSubscription(ctx, userID, tier, expiry); err != nil {
		return nil, translateRepoError(err, "failed to update subscription")
	}

	srv.log(ctx).Info("Subscription updated", slog.Any("userID", userID), slog.String("tier", tier.String()))

	data := map[string]string{"tier": tier.String()}
	if expiry != nil {
		data["expiry"] = expiry.UTC().Format(time.RFC3339)
	}
	publishEvent(ctx, srv.events, srv.log(ctx), &service.DomainEvent{
		Type:       service.EventSubscriptionChanged,
		UserID:     userID.String(),
		OccurredAt: srv.now(),
		Data:       data,
	})

	return srv.loadUser(ctx, userID)
}

// PurchasePack records ownership of an active pack. The subscription tier is not touched.
func (srv *profileService) PurchasePack(ctx context.Context, userID, packID uuid.UUID) (*usecase.PurchasedPackItem, error) {
	pack, err := srv.packRepo.FindByID(ctx, packID)
	if err != nil {
		return nil, translateRepoError(err, "failed to find pack")
	}
	if !pack.IsActive {
		return nil, domainerrors.ErrPackNotFound.WithDetails("pack is no longer available")
	}

	purchase := entity.PurchasedPack{PackID: packID, PurchaseDate: srv.now()}
	if err := srv.userRepo.AddPurchasedPack(ctx, userID, purchase); err != nil {
		return nil, translateRepoError(err, "failed to record purchase")
	}

	srv.log(ctx).Info("Pack purchased", slog.Any("userID", userID), slog.Any("packID", packID))

	publishEvent(ctx, srv.events, srv.log(ctx), &service.DomainEvent{
		Type:       service.EventPackPurchased,
		UserID:     userID.String(),
		OccurredAt: purchase.PurchaseDate,
		Data:       map[string]string{"pack_id": packID.String()},
	})

	return &usecase.PurchasedPackItem{Pack: pack, PurchaseDate: purchase.PurchaseDate}, nil
}

// GetPurchasedPacks returns owned packs in purchase order. Packs removed from the catalog are skipped.
func (srv *profileService) GetPurchasedPacks(ctx context.Context, userID uuid.UUID) ([]*usecase.PurchasedPackItem, error) {
	user, err := srv.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.PurchasedPacks) == 0 {
		return []*usecase.PurchasedPackItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(user.PurchasedPacks))
	for _, purchase := range user.PurchasedPacks {
		ids = append(ids, purchase.PackID)
	}

	packs, err := srv.packRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, translateRepoError(err, "failed to load packs")
	}

	byID := make(map[uuid.UUID]*entity.ActivityPack, len(packs))
	for _, pack := range packs {
		byID[pack.ID] = pack
	}

	items := make([]*usecase.PurchasedPackItem, 0, len(user.PurchasedPacks))
	for _, purchase := range user.PurchasedPacks {
		pack, ok := byID[purchase.PackID]
		if !ok {
			continue
		}
		items = append(items, &usecase.PurchasedPackItem{Pack: pack, PurchaseDate: purchase.PurchaseDate})
	}

	return items, nil
}
