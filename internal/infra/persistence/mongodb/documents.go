package mongodb

import (
	"time"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// Documents store ids as canonical UUID strings.

type userDocument struct {
	ID                 string                  `bson:"_id"`
	Email              string                  `bson:"email"`
	PasswordHash       string                  `bson:"passwordHash"`
	Name               string                  `bson:"name"`
	Children           []childDocument         `bson:"children"`
	Subscription       string                  `bson:"subscription"`
	SubscriptionExpiry *time.Time              `bson:"subscriptionExpiry,omitempty"`
	PurchasedPacks     []purchasedPackDocument `bson:"purchasedPacks"`
	FavoriteActivities []string                `bson:"favoriteActivities"`
	ActivityHistory    []historyDocument       `bson:"activityHistory"`
	CreatedAt          time.Time               `bson:"createdAt"`
	UpdatedAt          time.Time               `bson:"updatedAt"`
}

type childDocument struct {
	ID                 string    `bson:"_id"`
	Name               string    `bson:"name"`
	Birthdate          time.Time `bson:"birthdate"`
	Interests          []string  `bson:"interests"`
	DevelopmentalFocus []string  `bson:"developmentalFocus"`
	CreatedAt          time.Time `bson:"createdAt"`
}

type purchasedPackDocument struct {
	PackID       string    `bson:"packId"`
	PurchaseDate time.Time `bson:"purchaseDate"`
}

type historyDocument struct {
	ID            string    `bson:"_id"`
	Activity      string    `bson:"activity"`
	CompletedDate time.Time `bson:"completedDate"`
	Notes         string    `bson:"notes,omitempty"`
}

type ageRangeDocument struct {
	Min int `bson:"min"`
	Max int `bson:"max"`
}

type activityDocument struct {
	ID                 string           `bson:"_id"`
	Title              string           `bson:"title"`
	Description        string           `bson:"description"`
	AgeRange           ageRangeDocument `bson:"ageRange"`
	TimeRequired       int              `bson:"timeRequired"`
	Materials          []string         `bson:"materials"`
	Steps              []string         `bson:"steps"`
	Images             []string         `bson:"images"`
	DevelopmentalAreas []string         `bson:"developmentalAreas"`
	Difficulty         string           `bson:"difficulty"`
	IsPremium          bool             `bson:"isPremium"`
	PackID             *string          `bson:"packId,omitempty"`
	Tags               []string         `bson:"tags"`
	Popularity         int64            `bson:"popularity"`
	CreatedAt          time.Time        `bson:"createdAt"`
	UpdatedAt          time.Time        `bson:"updatedAt"`
}

type packDocument struct {
	ID                 string           `bson:"_id"`
	Title              string           `bson:"title"`
	Description        string           `bson:"description"`
	Price              float64          `bson:"price"`
	CoverImage         string           `bson:"coverImage"`
	Theme              string           `bson:"theme"`
	AgeRange           ageRangeDocument `bson:"ageRange"`
	DevelopmentalFocus []string         `bson:"developmentalFocus"`
	ActivityCount      int              `bson:"activityCount"`
	IsActive           bool             `bson:"isActive"`
	CreatedAt          time.Time        `bson:"createdAt"`
	UpdatedAt          time.Time        `bson:"updatedAt"`
}

// nonNil keeps arrays as arrays in BSON; $push fails on a null field.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if id, err := uuid.Parse(r); err == nil {
			ids = append(ids, id)
		}
	}

	return ids
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

func areaStrings(areas []entity.DevelopmentalArea) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = string(a)
	}

	return out
}

func toAreas(raw []string) []entity.DevelopmentalArea {
	out := make([]entity.DevelopmentalArea, len(raw))
	for i, r := range raw {
		out[i] = entity.DevelopmentalArea(r)
	}

	return out
}

func toUserDocument(u *entity.User) *userDocument {
	doc := &userDocument{
		ID:                 u.ID.String(),
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Name:               u.Name,
		Children:           make([]childDocument, 0, len(u.Children)),
		Subscription:       string(u.SubscriptionTier),
		SubscriptionExpiry: u.SubscriptionExpiry,
		PurchasedPacks:     make([]purchasedPackDocument, 0, len(u.PurchasedPacks)),
		FavoriteActivities: nonNil(idStrings(u.Favorites)),
		ActivityHistory:    make([]historyDocument, 0, len(u.History)),
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	for _, c := range u.Children {
		doc.Children = append(doc.Children, toChildDocument(c))
	}
	for _, p := range u.PurchasedPacks {
		doc.PurchasedPacks = append(doc.PurchasedPacks, purchasedPackDocument{PackID: p.PackID.String(), PurchaseDate: p.PurchaseDate})
	}
	for _, h := range u.History {
		doc.ActivityHistory = append(doc.ActivityHistory, toHistoryDocument(h))
	}

	return doc
}

func toChildDocument(c entity.Child) childDocument {
	return childDocument{
		ID:                 c.ID.String(),
		Name:               c.Name,
		Birthdate:          c.Birthdate,
		Interests:          nonNil(c.Interests),
		DevelopmentalFocus: nonNil(c.DevelopmentalFocus),
		CreatedAt:          c.CreatedAt,
	}
}

func toHistoryDocument(h entity.HistoryEntry) historyDocument {
	return historyDocument{
		ID:            h.ID.String(),
		Activity:      h.ActivityID.String(),
		CompletedDate: h.CompletedDate,
		Notes:         h.Notes,
	}
}

func (d *userDocument) toDomain() *entity.User {
	user := &entity.User{
		ID:                 uuid.MustParse(d.ID),
		Email:              d.Email,
		PasswordHash:       d.PasswordHash,
		Name:               d.Name,
		SubscriptionTier:   entity.SubscriptionTier(d.Subscription),
		SubscriptionExpiry: d.SubscriptionExpiry,
		Favorites:          parseIDs(d.FavoriteActivities),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	for _, c := range d.Children {
		user.Children = append(user.Children, entity.Child{
			ID:                 uuid.MustParse(c.ID),
			Name:               c.Name,
			Birthdate:          c.Birthdate,
			Interests:          c.Interests,
			DevelopmentalFocus: c.DevelopmentalFocus,
			CreatedAt:          c.CreatedAt,
		})
	}
	for _, p := range d.PurchasedPacks {
		if packID, err := uuid.Parse(p.PackID); err == nil {
			user.PurchasedPacks = append(user.PurchasedPacks, entity.PurchasedPack{PackID: packID, PurchaseDate: p.PurchaseDate})
		}
	}
	for _, h := range d.ActivityHistory {
		activityID, err := uuid.Parse(h.Activity)
		if err != nil {
			continue
		}
		entryID, _ := uuid.Parse(h.ID)
		user.History = append(user.History, entity.HistoryEntry{
			ID:            entryID,
			ActivityID:    activityID,
			CompletedDate: h.CompletedDate,
			Notes:         h.Notes,
		})
	}

	return user
}

func toActivityDocument(a *entity.Activity) *activityDocument {
	doc := &activityDocument{
		ID:                 a.ID.String(),
		Title:              a.Title,
		Description:        a.Description,
		AgeRange:           ageRangeDocument{Min: a.AgeRange.Min, Max: a.AgeRange.Max},
		TimeRequired:       a.TimeRequired,
		Materials:          nonNil(a.Materials),
		Steps:              nonNil(a.Steps),
		Images:             nonNil(a.Images),
		DevelopmentalAreas: areaStrings(a.DevelopmentalAreas),
		Difficulty:         string(a.Difficulty),
		IsPremium:          a.IsPremium,
		Tags:               nonNil(a.Tags),
		Popularity:         a.Popularity,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if a.PackID != nil {
		packID := a.PackID.String()
		doc.PackID = &packID
	}

	return doc
}

func (d *activityDocument) toDomain() *entity.Activity {
	activity := &entity.Activity{
		ID:                 uuid.MustParse(d.ID),
		Title:              d.Title,
		Description:        d.Description,
		AgeRange:           entity.AgeRange{Min: d.AgeRange.Min, Max: d.AgeRange.Max},
		TimeRequired:       d.TimeRequired,
		Materials:          d.Materials,
		Steps:              d.Steps,
		Images:             d.Images,
		DevelopmentalAreas: toAreas(d.DevelopmentalAreas),
		Difficulty:         entity.Difficulty(d.Difficulty),
		IsPremium:          d.IsPremium,
		Tags:               d.Tags,
		Popularity:         d.Popularity,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.PackID != nil {
		if packID, err := uuid.Parse(*d.PackID); err == nil {
			activity.PackID = &packID
		}
	}

	return activity
}

func toPackDocument(p *entity.ActivityPack) *packDocument {
	return &packDocument{
		ID:                 p.ID.String(),
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price,
		CoverImage:         p.CoverImage,
		Theme:              p.Theme,
		AgeRange:           ageRangeDocument{Min: p.AgeRange.Min, Max: p.AgeRange.Max},
		DevelopmentalFocus: areaStrings(p.DevelopmentalFocus),
		ActivityCount:      p.ActivityCount,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (d *packDocument) toDomain() *entity.ActivityPack {
	return &entity.ActivityPack{
		ID:                 uuid.MustParse(d.ID),
		Title:              d.Title,
		Description:        d.Description,
		Price:              d.Price,
		CoverImage:         d.CoverImage,
		Theme:              d.Theme,
		AgeRange:           entity.AgeRange{Min: d.AgeRange.Min, Max: d.AgeRange.Max},
		DevelopmentalFocus: toAreas(d.DevelopmentalFocus),
		ActivityCount:      d.ActivityCount,
		IsActive:           d.IsActive,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}
