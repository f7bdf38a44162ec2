package handler

import (
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/policy"
	"brightsteps/internal/usecase"

	"github.com/google/uuid"
)

// --- Responses ---

type ageRangeResponse struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// UserResponse is the public view of an account. The password hash never leaves the server.
type UserResponse struct {
	ID                    uuid.UUID                `json:"id"`
	Email                 string                   `json:"email"`
	Name                  string                   `json:"name"`
	Subscription          entity.SubscriptionTier  `json:"subscription"`
	SubscriptionExpiry    *time.Time               `json:"subscriptionExpiry,omitempty"`
	EffectiveSubscription entity.SubscriptionTier  `json:"effectiveSubscription"`
	Children              []ChildResponse          `json:"children"`
	Favorites             []uuid.UUID              `json:"favorites"`
	PurchasedPacks        []PurchasedPackReference `json:"purchasedPacks"`
	CreatedAt             time.Time                `json:"createdAt"`
}

// PurchasedPackReference is a purchase as stored on the user.
type PurchasedPackReference struct {
	PackID       uuid.UUID `json:"packId"`
	PurchaseDate time.Time `json:"purchaseDate"`
}

type ChildResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Birthdate          time.Time `json:"birthdate"`
	Interests          []string  `json:"interests"`
	DevelopmentalFocus []string  `json:"developmentalFocus"`
}

type ActivityResponse struct {
	ID                 uuid.UUID                  `json:"id"`
	Title              string                     `json:"title"`
	Description        string                     `json:"description"`
	AgeRange           ageRangeResponse           `json:"ageRange"`
	TimeRequired       int                        `json:"timeRequired"`
	Materials          []string                   `json:"materials"`
	Steps              []string                   `json:"steps"`
	Images             []string                   `json:"images"`
	DevelopmentalAreas []entity.DevelopmentalArea `json:"developmentalAreas"`
	Difficulty         entity.Difficulty          `json:"difficulty"`
	IsPremium          bool                       `json:"isPremium"`
	PackID             *uuid.UUID                 `json:"packId,omitempty"`
	Tags               []string                   `json:"tags"`
	Popularity         int64                      `json:"popularity"`
	CreatedAt          time.Time                  `json:"createdAt"`
	Locked             bool                       `json:"locked,omitempty"`
}

type PaginationResponse struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Pagination PaginationResponse `json:"pagination"`
}

type PackResponse struct {
	ID                 uuid.UUID                  `json:"id"`
	Title              string                     `json:"title"`
	Description        string                     `json:"description"`
	Price              float64                    `json:"price"`
	CoverImage         string                     `json:"coverImage,omitempty"`
	Theme              string                     `json:"theme"`
	AgeRange           ageRangeResponse           `json:"ageRange"`
	DevelopmentalFocus []entity.DevelopmentalArea `json:"developmentalFocus"`
	ActivityCount      int                        `json:"activityCount"`
	IsActive           bool                       `json:"isActive"`
}

type PurchasedPackResponse struct {
	Pack         PackResponse `json:"pack"`
	PurchaseDate time.Time    `json:"purchaseDate"`
}

type HistoryResponse struct {
	ID            uuid.UUID         `json:"id"`
	ActivityID    uuid.UUID         `json:"activityId"`
	CompletedDate time.Time         `json:"completedDate"`
	Notes         string            `json:"notes,omitempty"`
	Activity      *ActivityResponse `json:"activity,omitempty"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// --- Mappers ---

func toUserResponse(user *entity.User, now time.Time) UserResponse {
	children := make([]ChildResponse, 0, len(user.Children))
	for _, child := range user.Children {
		children = append(children, toChildResponse(&child))
	}

	purchases := make([]PurchasedPackReference, 0, len(user.PurchasedPacks))
	for _, p := range user.PurchasedPacks {
		purchases = append(purchases, PurchasedPackReference{PackID: p.PackID, PurchaseDate: p.PurchaseDate})
	}

	favorites := user.Favorites
	if favorites == nil {
		favorites = []uuid.UUID{}
	}

	return UserResponse{
		ID:                    user.ID,
		Email:                 user.Email,
		Name:                  user.Name,
		Subscription:          user.SubscriptionTier,
		SubscriptionExpiry:    user.SubscriptionExpiry,
		EffectiveSubscription: policy.EffectiveTier(user, now),
		Children:              children,
		Favorites:             favorites,
		PurchasedPacks:        purchases,
		CreatedAt:             user.CreatedAt,
	}
}

func toChildResponse(child *entity.Child) ChildResponse {
	return ChildResponse{
		ID:                 child.ID,
		Name:               child.Name,
		Birthdate:          child.Birthdate,
		Interests:          orEmpty(child.Interests),
		DevelopmentalFocus: orEmpty(child.DevelopmentalFocus),
	}
}

func toActivityResponse(a *entity.Activity) ActivityResponse {
	areas := a.DevelopmentalAreas
	if areas == nil {
		areas = []entity.DevelopmentalArea{}
	}

	return ActivityResponse{
		ID:                 a.ID,
		Title:              a.Title,
		Description:        a.Description,
		AgeRange:           ageRangeResponse{Min: a.AgeRange.Min, Max: a.AgeRange.Max},
		TimeRequired:       a.TimeRequired,
		Materials:          orEmpty(a.Materials),
		Steps:              orEmpty(a.Steps),
		Images:             orEmpty(a.Images),
		DevelopmentalAreas: areas,
		Difficulty:         a.Difficulty,
		IsPremium:          a.IsPremium,
		PackID:             a.PackID,
		Tags:               orEmpty(a.Tags),
		Popularity:         a.Popularity,
		CreatedAt:          a.CreatedAt,
	}
}

func toActivityResponses(activities []*entity.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, toActivityResponse(a))
	}

	return out
}

func toLibraryActivityResponse(item *usecase.LibraryActivity) ActivityResponse {
	resp := toActivityResponse(item.Activity)
	resp.Locked = item.Locked

	return resp
}

func toPackResponse(p *entity.ActivityPack) PackResponse {
	focus := p.DevelopmentalFocus
	if focus == nil {
		focus = []entity.DevelopmentalArea{}
	}

	return PackResponse{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price,
		CoverImage:         p.CoverImage,
		Theme:              p.Theme,
		AgeRange:           ageRangeResponse{Min: p.AgeRange.Min, Max: p.AgeRange.Max},
		DevelopmentalFocus: focus,
		ActivityCount:      p.ActivityCount,
		IsActive:           p.IsActive,
	}
}

func toPurchasedPackResponse(item *usecase.PurchasedPackItem) PurchasedPackResponse {
	return PurchasedPackResponse{Pack: toPackResponse(item.Pack), PurchaseDate: item.PurchaseDate}
}

func toHistoryResponse(item *usecase.HistoryItem) HistoryResponse {
	resp := HistoryResponse{
		ID:            item.Entry.ID,
		ActivityID:    item.Entry.ActivityID,
		CompletedDate: item.Entry.CompletedDate,
		Notes:         item.Entry.Notes,
	}
	if item.Activity != nil {
		activity := toLibraryActivityResponse(item.Activity)
		resp.Activity = &activity
	}

	return resp
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}

	return items
}
