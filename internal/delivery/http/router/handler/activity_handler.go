package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	deliverycontext "brightsteps/internal/delivery/context"
	"brightsteps/internal/delivery/http/response"
	"brightsteps/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// headerShareURL carries the link encoded in a share code.
const headerShareURL = "X-Share-Url"

// ActivityHandlerParams holds dependencies for ActivityHandler, injected by Fx.
type ActivityHandlerParams struct {
	fx.In

	ActivityUC usecase.ActivityUsecase
	PackUC     usecase.PackUsecase
	Logger     *slog.Logger
}

// ActivityHandler serves the activity catalog, packs and per-activity user actions.
type ActivityHandler struct {
	activityUC usecase.ActivityUsecase
	packUC     usecase.PackUsecase
	logger     *slog.Logger
}

// NewActivityHandler is the constructor for ActivityHandler
func NewActivityHandler(params ActivityHandlerParams) *ActivityHandler {
	return &ActivityHandler{
		activityUC: params.ActivityUC,
		packUC:     params.PackUC,
		logger:     params.Logger,
	}
}

// LogActivityRequest represents the request body for logging a completed activity
type LogActivityRequest struct {
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Notes         string     `json:"notes,omitempty" validate:"max=2000"`
}

// ListActivities handles the filtered, paginated catalog listing.
func (h *ActivityHandler) ListActivities(c echo.Context) error {
	filter, err := parseActivityFilter(c.QueryParams())
	if err != nil {
		return err
	}

	page, err := h.activityUC.ListActivities(c.Request().Context(), deliverycontext.ViewerID(c), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, ActivityListResponse{
		Activities: toActivityResponses(page.Activities),
		Pagination: PaginationResponse{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.TotalPages,
		},
	}, "")
}

// GetActivity returns one activity if the viewer may see it.
func (h *ActivityHandler) GetActivity(c echo.Context) error {
	activityID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	activity, err := h.activityUC.GetActivity(c.Request().Context(), deliverycontext.ViewerID(c), activityID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toActivityResponse(activity), "")
}

func (h *ActivityHandler) AddFavorite(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	activityID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.activityUC.AddFavorite(c.Request().Context(), userID, activityID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Activity added to favorites")
}

func (h *ActivityHandler) RemoveFavorite(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	activityID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.activityUC.RemoveFavorite(c.Request().Context(), userID, activityID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, "Activity removed from favorites")
}

// LogActivity records a completion in the user's history.
func (h *ActivityHandler) LogActivity(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	activityID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req LogActivityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry, err := h.activityUC.LogActivity(c.Request().Context(), userID, activityID, &usecase.LogActivityInput{
		CompletedDate: req.CompletedDate,
		Notes:         req.Notes,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, HistoryResponse{
		ID:            entry.ID,
		ActivityID:    entry.ActivityID,
		CompletedDate: entry.CompletedDate,
		Notes:         entry.Notes,
	}, "Activity logged successfully")
}

// ShareActivity returns a PNG QR code that opens the activity in the web app.
func (h *ActivityHandler) ShareActivity(c echo.Context) error {
	activityID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	share, err := h.activityUC.ShareActivity(c.Request().Context(), activityID)
	if err != nil {
		return errors.WithStack(err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"activity-%s.png\"", activityID))
	header.Set(headerShareURL, share.URL)

	return c.Blob(http.StatusOK, "image/png", share.PNG)
}

// ListPacks returns the active packs.
func (h *ActivityHandler) ListPacks(c echo.Context) error {
	packs, err := h.packUC.ListPacks(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]PackResponse, 0, len(packs))
	for _, p := range packs {
		out = append(out, toPackResponse(p))
	}

	return response.Success(c, http.StatusOK, out, "")
}

func (h *ActivityHandler) GetPack(c echo.Context) error {
	packID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	pack, err := h.packUC.GetPack(c.Request().Context(), packID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPackResponse(pack), "")
}

// ListPackActivities returns every activity of a pack to owners and subscribers.
func (h *ActivityHandler) ListPackActivities(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	packID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	activities, err := h.packUC.ListPackActivities(c.Request().Context(), userID, packID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toActivityResponses(activities), "")
}
