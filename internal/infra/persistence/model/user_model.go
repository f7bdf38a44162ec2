package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserModel mirrors the 'users' table.
type UserModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"`
	Name               string     `gorm:"type:varchar(100);not null"`
	Subscription       string     `gorm:"type:varchar(16);not null"`
	SubscriptionExpiry *time.Time `gorm:"type:timestamptz"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Children       []ChildModel            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Favorites      []FavoriteActivityModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	History        []HistoryEntryModel     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PurchasedPacks []PurchasedPackModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ChildModel mirrors the 'children' table. Rows are always addressed together with their owner.
type ChildModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name               string         `gorm:"type:varchar(100);not null"`
	Birthdate          time.Time      `gorm:"type:timestamptz;not null"`
	Interests          pq.StringArray `gorm:"type:text[]"`
	DevelopmentalFocus pq.StringArray `gorm:"type:text[]"`
	CreatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (ChildModel) TableName() string {
	return "children"
}

// FavoriteActivityModel mirrors the 'favorite_activities' table. The composite key enforces uniqueness.
type FavoriteActivityModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActivityID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (FavoriteActivityModel) TableName() string {
	return "favorite_activities"
}

// HistoryEntryModel mirrors the 'history_entries' table.
type HistoryEntryModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ActivityID    uuid.UUID `gorm:"type:uuid;not null"`
	CompletedDate time.Time `gorm:"type:timestamptz;not null"`
	Notes         string    `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (HistoryEntryModel) TableName() string {
	return "history_entries"
}

// PurchasedPackModel mirrors the 'purchased_packs' table.
type PurchasedPackModel struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PackID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PurchaseDate time.Time `gorm:"type:timestamptz;not null"`
}

// TableName explicitly sets the table name for GORM.
func (PurchasedPackModel) TableName() string {
	return "purchased_packs"
}
