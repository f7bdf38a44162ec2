// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the repository.UserRepository interface using GORM.
// Sub-records live in their own tables and every mutation is a single statement.
type userRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db, now: time.Now}
}

// Create persists a new user without sub-records.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	userM := fromUserDomain(user)
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailTaken
		}

		return errors.Wrap(err, "failed to create user")
	}

	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindByID retrieves a single user with children, favorites, history and purchases preloaded.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *userRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Children", orderBy("created_at ASC, id ASC")).
		Preload("Favorites", orderBy("created_at ASC, activity_id ASC")).
		Preload("History", orderBy("completed_date ASC, id ASC")).
		Preload("PurchasedPacks", orderBy("purchase_date ASC, pack_id ASC")).
		Where(query, arg).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

func orderBy(order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}

func (repo *userRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) error {
	return repo.updateUser(ctx, userID, map[string]any{
		"name":  name,
		"email": email,
	})
}

// AddFavorite relies on the composite primary key: a conflicting insert affects no rows.
func (repo *userRepository) AddFavorite(ctx context.Context, userID, activityID uuid.UUID) error {
	favorite := &model.FavoriteActivityModel{UserID: userID, ActivityID: activityID, CreatedAt: repo.now()}

	return repo.insertOnce(ctx, favorite, repository.ErrDuplicateFavorite)
}

func (repo *userRepository) RemoveFavorite(ctx context.Context, userID, activityID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Delete(&model.FavoriteActivityModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to remove favorite")
	}
	if result.RowsAffected == 0 {
		return repo.notMatched(ctx, userID, nil)
	}

	return nil
}

func (repo *userRepository) AppendHistory(ctx context.Context, userID uuid.UUID, entry entity.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entryM := &model.HistoryEntryModel{
		ID:            entry.ID,
		UserID:        userID,
		ActivityID:    entry.ActivityID,
		CompletedDate: entry.CompletedDate,
		Notes:         entry.Notes,
	}

	return repo.insertOwned(ctx, entryM, "failed to append history")
}

func (repo *userRepository) AddChild(ctx context.Context, userID uuid.UUID, child entity.Child) error {
	childM := fromChildDomain(userID, child)

	return repo.insertOwned(ctx, childM, "failed to add child")
}

func (repo *userRepository) UpdateChild(ctx context.Context, userID uuid.UUID, child entity.Child) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ChildModel{}).
		Where("id = ? AND user_id = ?", child.ID, userID).
		Updates(map[string]any{
			"name":                child.Name,
			"birthdate":           child.Birthdate,
			"interests":           pq.StringArray(nonNil(child.Interests)),
			"developmental_focus": pq.StringArray(nonNil(child.DevelopmentalFocus)),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update child")
	}
	if result.RowsAffected == 0 {
		return repo.notMatched(ctx, userID, repository.ErrChildNotFound)
	}

	return nil
}

func (repo *userRepository) DeleteChild(ctx context.Context, userID, childID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", childID, userID).
		Delete(&model.ChildModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete child")
	}
	if result.RowsAffected == 0 {
		return repo.notMatched(ctx, userID, repository.ErrChildNotFound)
	}

	return nil
}

func (repo *userRepository) UpdateSubscription(ctx context.Context, userID uuid.UUID, tier entity.SubscriptionTier, expiry *time.Time) error {
	values := map[string]any{"subscription": string(tier)}
	if expiry != nil {
		values["subscription_expiry"] = *expiry
	}

	return repo.updateUser(ctx, userID, values)
}

func (repo *userRepository) AddPurchasedPack(ctx context.Context, userID uuid.UUID, purchase entity.PurchasedPack) error {
	purchaseM := &model.PurchasedPackModel{UserID: userID, PackID: purchase.PackID, PurchaseDate: purchase.PurchaseDate}

	return repo.insertOnce(ctx, purchaseM, repository.ErrDuplicatePurchase)
}

func (repo *userRepository) updateUser(ctx context.Context, userID uuid.UUID, values map[string]any) error {
	values["updated_at"] = repo.now()

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(values)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrEmailTaken
		}

		return errors.Wrap(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// insertOnce inserts a row keyed by (user, item). A conflict leaves the table untouched and reports dupErr.
func (repo *userRepository) insertOnce(ctx context.Context, row any, dupErr error) error {
	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(result.Error, "failed to insert user record")
	}
	if result.RowsAffected == 0 {
		return dupErr
	}

	return nil
}

// insertOwned inserts a sub-record. The users foreign key reports a missing owner.
func (repo *userRepository) insertOwned(ctx context.Context, row any, message string) error {
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, message)
	}

	return nil
}

// notMatched tells a missing user apart from a missing sub-record. A nil guardErr means
// the no-op is acceptable once the user is known to exist.
func (repo *userRepository) notMatched(ctx context.Context, userID uuid.UUID, guardErr error) error {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count user")
	}
	if count == 0 {
		return repository.ErrUserNotFound
	}

	return guardErr
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:                 data.ID,
		Email:              data.Email,
		PasswordHash:       data.PasswordHash,
		Name:               data.Name,
		SubscriptionTier:   entity.SubscriptionTier(data.Subscription),
		SubscriptionExpiry: data.SubscriptionExpiry,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
	for _, c := range data.Children {
		user.Children = append(user.Children, entity.Child{
			ID:                 c.ID,
			Name:               c.Name,
			Birthdate:          c.Birthdate,
			Interests:          []string(c.Interests),
			DevelopmentalFocus: []string(c.DevelopmentalFocus),
			CreatedAt:          c.CreatedAt,
		})
	}
	for _, f := range data.Favorites {
		user.Favorites = append(user.Favorites, f.ActivityID)
	}
	for _, h := range data.History {
		user.History = append(user.History, entity.HistoryEntry{
			ID:            h.ID,
			ActivityID:    h.ActivityID,
			CompletedDate: h.CompletedDate,
			Notes:         h.Notes,
		})
	}
	for _, p := range data.PurchasedPacks {
		user.PurchasedPacks = append(user.PurchasedPacks, entity.PurchasedPack{PackID: p.PackID, PurchaseDate: p.PurchaseDate})
	}

	return user
}

// fromUserDomain converts a domain User entity to a GORM UserModel. Sub-records are written separately.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:                 data.ID,
		Email:              data.Email,
		PasswordHash:       data.PasswordHash,
		Name:               data.Name,
		Subscription:       string(data.SubscriptionTier),
		SubscriptionExpiry: data.SubscriptionExpiry,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

func fromChildDomain(userID uuid.UUID, data entity.Child) *model.ChildModel {
	if data.ID == uuid.Nil {
		data.ID = uuid.New()
	}

	return &model.ChildModel{
		ID:                 data.ID,
		UserID:             userID,
		Name:               data.Name,
		Birthdate:          data.Birthdate,
		Interests:          pq.StringArray(nonNil(data.Interests)),
		DevelopmentalFocus: pq.StringArray(nonNil(data.DevelopmentalFocus)),
		CreatedAt:          data.CreatedAt,
	}
}
