package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ActivityModel mirrors the 'activities' table.
type ActivityModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Title              string         `gorm:"type:varchar(200);not null"`
	Description        string         `gorm:"type:text;not null"`
	AgeMin             int            `gorm:"not null;index:idx_activities_age"`
	AgeMax             int            `gorm:"not null;index:idx_activities_age"`
	TimeRequired       int            `gorm:"not null"`
	Materials          pq.StringArray `gorm:"type:text[]"`
	Steps              pq.StringArray `gorm:"type:text[]"`
	Images             pq.StringArray `gorm:"type:text[]"`
	DevelopmentalAreas pq.StringArray `gorm:"type:text[]"`
	Difficulty         string         `gorm:"type:varchar(16);not null"`
	IsPremium          bool           `gorm:"not null"`
	PackID             *uuid.UUID     `gorm:"type:uuid;index"`
	Tags               pq.StringArray `gorm:"type:text[]"`
	Popularity         int64          `gorm:"not null;index:idx_activities_listing,priority:1,sort:desc"`
	CreatedAt          time.Time      `gorm:"index:idx_activities_listing,priority:2,sort:desc"`
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (ActivityModel) TableName() string {
	return "activities"
}

// ActivityPackModel mirrors the 'activity_packs' table.
type ActivityPackModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Title              string         `gorm:"type:varchar(200);not null"`
	Description        string         `gorm:"type:text"`
	Price              float64        `gorm:"type:decimal(10,2);not null"`
	CoverImage         string         `gorm:"type:varchar(500)"`
	Theme              string         `gorm:"type:varchar(100)"`
	AgeMin             int            `gorm:"not null"`
	AgeMax             int            `gorm:"not null"`
	DevelopmentalFocus pq.StringArray `gorm:"type:text[]"`
	ActivityCount      int            `gorm:"not null"`
	IsActive           bool           `gorm:"not null;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (ActivityPackModel) TableName() string {
	return "activity_packs"
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&UserModel{},
		&ChildModel{},
		&FavoriteActivityModel{},
		&HistoryEntryModel{},
		&PurchasedPackModel{},
		&ActivityPackModel{},
		&ActivityModel{},
	}
}
