package handler

import (
	"log/slog"
	"net/http"
	"time"

	"brightsteps/internal/delivery/http/response"
	"brightsteps/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ProfileHandlerParams holds dependencies for ProfileHandler, injected by Fx.
type ProfileHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// ProfileHandler serves the authenticated user's own account, children and library.
type ProfileHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler
func NewProfileHandler(params ProfileHandlerParams) *ProfileHandler {
	return &ProfileHandler{
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// AddChildRequest represents the request body for creating a child profile
type AddChildRequest struct {
	Name               string     `json:"name" validate:"required,max=100"`
	Birthdate          *time.Time `json:"birthdate" validate:"required"`
	Interests          []string   `json:"interests,omitempty"`
	DevelopmentalFocus []string   `json:"developmentalFocus,omitempty"`
}

// UpdateChildRequest represents the request body for updating a child profile
type UpdateChildRequest struct {
	Name               *string    `json:"name,omitempty" validate:"omitempty,max=100"`
	Birthdate          *time.Time `json:"birthdate,omitempty"`
	Interests          *[]string  `json:"interests,omitempty"`
	DevelopmentalFocus *[]string  `json:"developmentalFocus,omitempty"`
}

// UpdateSubscriptionRequest represents the request body for changing the subscription
type UpdateSubscriptionRequest struct {
	Subscription string     `json:"subscription" validate:"required"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
}

// SubscriptionResponse reports the stored and effective tier after a change.
type SubscriptionResponse struct {
	Subscription          string     `json:"subscription"`
	ExpiryDate            *time.Time `json:"expiryDate,omitempty"`
	EffectiveSubscription string     `json:"effectiveSubscription"`
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profileUC.UpdateProfile(c.Request().Context(), userID, &usecase.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user, time.Now()), "Profile updated successfully")
}

func (h *ProfileHandler) AddChild(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req AddChildRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	child, err := h.profileUC.AddChild(c.Request().Context(), userID, &usecase.AddChildInput{
		Name:               req.Name,
		Birthdate:          *req.Birthdate,
		Interests:          req.Interests,
		DevelopmentalFocus: req.DevelopmentalFocus,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toChildResponse(child), "Child profile created successfully")
}

func (h *ProfileHandler) UpdateChild(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	childID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateChildRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	child, err := h.profileUC.UpdateChild(c.Request().Context(), userID, childID, &usecase.UpdateChildInput{
		Name:               req.Name,
		Birthdate:          req.Birthdate,
		Interests:          req.Interests,
		DevelopmentalFocus: req.DevelopmentalFocus,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toChildResponse(child), "Child profile updated successfully")
}

func (h *ProfileHandler) DeleteChild(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	childID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.profileUC.DeleteChild(c.Request().Context(), userID, childID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Child profile deleted successfully")
}

func (h *ProfileHandler) GetFavorites(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	favorites, err := h.profileUC.GetFavorites(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]ActivityResponse, 0, len(favorites))
	for _, item := range favorites {
		out = append(out, toLibraryActivityResponse(item))
	}

	return response.Success(c, http.StatusOK, out, "")
}

func (h *ProfileHandler) GetHistory(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	items, err := h.profileUC.GetHistory(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]HistoryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toHistoryResponse(item))
	}

	return response.Success(c, http.StatusOK, out, "")
}

func (h *ProfileHandler) UpdateSubscription(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req UpdateSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profileUC.UpdateSubscription(c.Request().Context(), userID, &usecase.UpdateSubscriptionInput{
		Tier:   req.Subscription,
		Expiry: req.ExpiryDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := toUserResponse(user, time.Now())

	return response.Success(c, http.StatusOK, SubscriptionResponse{
		Subscription:          string(resp.Subscription),
		ExpiryDate:            resp.SubscriptionExpiry,
		EffectiveSubscription: string(resp.EffectiveSubscription),
	}, "Subscription updated successfully")
}

func (h *ProfileHandler) PurchasePack(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	packID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.profileUC.PurchasePack(c.Request().Context(), userID, packID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toPurchasedPackResponse(item), "Activity pack purchased successfully")
}

func (h *ProfileHandler) GetPurchasedPacks(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	items, err := h.profileUC.GetPurchasedPacks(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]PurchasedPackResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toPurchasedPackResponse(item))
	}

	return response.Success(c, http.StatusOK, out, "")
}
