package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brightsteps/config"
	"brightsteps/internal/delivery/http/middleware"
	"brightsteps/internal/delivery/http/router"
	"brightsteps/internal/delivery/http/router/handler"
	"brightsteps/internal/domain/entity"
	"brightsteps/internal/infra/auth"
	"brightsteps/internal/infra/metrics"
	"brightsteps/internal/infra/persistence/memory"
	"brightsteps/internal/infra/pubsub"
	"brightsteps/internal/infra/qrcode"
	"brightsteps/internal/infra/ratelimit"
	"brightsteps/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

const testPassword = "crayons-and-glue"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

type apiServer struct {
	echo        *echo.Echo
	free        *entity.Activity
	premium     *entity.Activity
	packPremium *entity.Activity
	pack        *entity.ActivityPack
}

func newTestConfig(rateLimit int) *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.SecretKey.Access = "test-secret"
	cfg.Auth = &config.AuthConfig{BcryptCost: 4, TokenTTL: time.Hour}
	cfg.Pagination = config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100}
	cfg.Subscription = config.SubscriptionConfig{DefaultPeriodMonths: 1}
	cfg.RateLimit = &config.RateLimitConfig{Requests: rateLimit, Window: time.Minute}
	cfg.Metrics = &config.MetricsConfig{Enabled: true, Path: "/metrics"}
	cfg.QRCode = &config.QRCodeConfig{Size: 128, BaseURL: "https://app.example.com"}

	return cfg
}

func newAPIServer(t *testing.T, rateLimit int) *apiServer {
	t.Helper()

	ctx := context.Background()
	cfg := newTestConfig(rateLimit)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	m := metrics.New()

	pack := &entity.ActivityPack{
		Title:              "Rainy Day Crafts",
		Description:        "Indoor crafts",
		Theme:              "crafts",
		AgeRange:           entity.AgeRange{Min: 3, Max: 6},
		DevelopmentalFocus: []entity.DevelopmentalArea{entity.AreaCreativity},
		ActivityCount:      1,
		IsActive:           true,
	}
	require.NoError(t, store.Packs().Create(ctx, pack))

	newActivity := func(title string, premium bool, packID *uuid.UUID) *entity.Activity {
		activity := &entity.Activity{
			Title:              title,
			Description:        title + " for little hands",
			AgeRange:           entity.AgeRange{Min: 3, Max: 6},
			TimeRequired:       20,
			Materials:          []string{"paper"},
			Steps:              []string{"Prepare", "Play"},
			DevelopmentalAreas: []entity.DevelopmentalArea{entity.AreaCreativity},
			Difficulty:         entity.DifficultyEasy,
			IsPremium:          premium,
			PackID:             packID,
		}
		require.NoError(t, store.Activities().Create(ctx, activity))

		return activity
	}

	srv := &apiServer{
		free:        newActivity("Leaf Rubbing", false, nil),
		premium:     newActivity("Shadow Puppets", true, nil),
		packPremium: newActivity("Paper Plate Masks", true, &pack.ID),
		pack:        pack,
	}

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	lc := fxtest.NewLifecycle(t)
	limiter, err := ratelimit.New(ratelimit.Params{
		Lifecycle: lc,
		Config:    cfg,
		Logger:    logger,
	})
	require.NoError(t, err)

	events, err := pubsub.NewEventPublisher(pubsub.PublisherParams{
		Lc:     lc,
		Ctx:    ctx,
		Config: cfg,
		Logger: logger,
	})
	require.NoError(t, err)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     store.Users(),
		Hasher:       auth.NewBcryptHasher(cfg),
		TokenService: tokens,
		Logger:       logger,
	})
	activityUC := impl.NewActivityService(impl.ActivityServiceParams{
		UserRepo:     store.Users(),
		ActivityRepo: store.Activities(),
		Usage:        m,
		Events:       events,
		QRCode:       qrcode.NewQRCodeService(cfg),
		Config:       cfg,
		Logger:       logger,
	})
	packUC := impl.NewPackService(impl.PackServiceParams{
		UserRepo:     store.Users(),
		ActivityRepo: store.Activities(),
		PackRepo:     store.Packs(),
		Usage:        m,
		Logger:       logger,
	})
	profileUC := impl.NewProfileService(impl.ProfileServiceParams{
		UserRepo:     store.Users(),
		ActivityRepo: store.Activities(),
		PackRepo:     store.Packs(),
		Events:       events,
		Config:       cfg,
		Logger:       logger,
	})

	srv.echo = NewEcho(cfg, logger, m, router.RouterParams{
		AuthHandler:     handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		ActivityHandler: handler.NewActivityHandler(handler.ActivityHandlerParams{ActivityUC: activityUC, PackUC: packUC, Logger: logger}),
		ProfileHandler:  handler.NewProfileHandler(handler.ProfileHandlerParams{ProfileUC: profileUC, Logger: logger}),
		AuthMiddleware:  middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{AuthUC: authUC}),
		RateLimiter:     limiter,
		Metrics:         m,
		Config:          cfg,
	})

	return srv
}

func (s *apiServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec.Code, env
}

func (s *apiServer) register(t *testing.T, email string) string {
	t.Helper()

	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Parent",
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, status)

	var out handler.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)

	return out.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

func TestAuthFlow(t *testing.T) {
	srv := newAPIServer(t, 10)
	token := srv.register(t, "Parent@Example.com")

	status, env := srv.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[handler.UserResponse](t, env)
	assert.Equal(t, "parent@example.com", me.Email)
	assert.Equal(t, entity.TierFree, me.EffectiveSubscription)

	status, env = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "parent@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, decode[handler.AuthResponse](t, env).Token)

	status, env = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "parent@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	status, env = srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Other",
		"email":    "parent@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestRegisterValidation(t *testing.T) {
	srv := newAPIServer(t, 10)

	status, env := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Parent",
		"email":    "not-an-email",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
}

func TestListActivities(t *testing.T) {
	srv := newAPIServer(t, 10)

	t.Run("anonymous viewers only see free activities", func(t *testing.T) {
		status, env := srv.do(t, http.MethodGet, "/api/activities", "", nil)
		require.Equal(t, http.StatusOK, status)

		list := decode[handler.ActivityListResponse](t, env)
		require.Len(t, list.Activities, 1)
		assert.Equal(t, srv.free.ID, list.Activities[0].ID)
		assert.Equal(t, int64(1), list.Pagination.Total)
		assert.Equal(t, 1, list.Pagination.Page)
		assert.Equal(t, 10, list.Pagination.Limit)
	})

	t.Run("subscribers see premium activities", func(t *testing.T) {
		token := srv.register(t, "premium@example.com")
		status, _ := srv.do(t, http.MethodPut, "/api/users/subscription", token, map[string]string{"subscription": "premium"})
		require.Equal(t, http.StatusOK, status)

		status, env := srv.do(t, http.MethodGet, "/api/activities", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(3), decode[handler.ActivityListResponse](t, env).Pagination.Total)
	})

	t.Run("malformed query is rejected", func(t *testing.T) {
		for _, query := range []string{"ageMin=abc", "color=red", "ageMin=6&ageMax=3", "difficulty=extreme", "page=0"} {
			status, env := srv.do(t, http.MethodGet, "/api/activities?"+query, "", nil)
			assert.Equal(t, http.StatusBadRequest, status, query)
			assert.Equal(t, "INVALID_QUERY", env.Error.Code, query)
		}
	})
}

func TestActivityAccess(t *testing.T) {
	srv := newAPIServer(t, 10)
	token := srv.register(t, "parent@example.com")

	status, env := srv.do(t, http.MethodGet, "/api/activities/"+srv.free.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), decode[handler.ActivityResponse](t, env).Popularity)

	status, env = srv.do(t, http.MethodGet, "/api/activities/"+srv.premium.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "PREMIUM_REQUIRED", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/activities/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ACTIVITY_NOT_FOUND", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/activities/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestFavoritesAndHistory(t *testing.T) {
	srv := newAPIServer(t, 10)
	token := srv.register(t, "parent@example.com")
	favoritePath := "/api/activities/" + srv.free.ID.String() + "/favorite"

	status, _ := srv.do(t, http.MethodPost, favoritePath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = srv.do(t, http.MethodPost, favoritePath, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := srv.do(t, http.MethodPost, favoritePath, token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_FAVORITED", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/users/favorites", token, nil)
	require.Equal(t, http.StatusOK, status)
	favorites := decode[[]handler.ActivityResponse](t, env)
	require.Len(t, favorites, 1)
	assert.Equal(t, srv.free.ID, favorites[0].ID)

	status, _ = srv.do(t, http.MethodDelete, favoritePath, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodPost, "/api/activities/"+srv.free.ID.String()+"/log", token, map[string]string{"notes": "Loved it"})
	require.Equal(t, http.StatusCreated, status)

	future := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	status, env = srv.do(t, http.MethodPost, "/api/activities/"+srv.free.ID.String()+"/log", token, map[string]string{"completedDate": future})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/users/history", token, nil)
	require.Equal(t, http.StatusOK, status)
	history := decode[[]handler.HistoryResponse](t, env)
	require.Len(t, history, 1)
	assert.Equal(t, "Loved it", history[0].Notes)
	require.NotNil(t, history[0].Activity)
	assert.Equal(t, srv.free.Title, history[0].Activity.Title)
}

func TestPackPurchase(t *testing.T) {
	srv := newAPIServer(t, 10)
	token := srv.register(t, "parent@example.com")
	packActivities := "/api/activities/packs/" + srv.pack.ID.String() + "/activities"

	status, env := srv.do(t, http.MethodGet, "/api/activities/packs", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]handler.PackResponse](t, env), 1)

	// the pack path returns the pack itself, its activities live one level down
	status, env = srv.do(t, http.MethodGet, "/api/activities/packs/"+srv.pack.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, srv.pack.ID, decode[handler.PackResponse](t, env).ID)

	status, env = srv.do(t, http.MethodGet, packActivities, token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "PACK_PURCHASE_REQUIRED", env.Error.Code)

	status, _ = srv.do(t, http.MethodPost, "/api/users/packs/"+srv.pack.ID.String()+"/purchase", token, nil)
	require.Equal(t, http.StatusCreated, status)

	status, env = srv.do(t, http.MethodPost, "/api/users/packs/"+srv.pack.ID.String()+"/purchase", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PACK_ALREADY_PURCHASED", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, packActivities, token, nil)
	require.Equal(t, http.StatusOK, status)
	activities := decode[[]handler.ActivityResponse](t, env)
	require.Len(t, activities, 1)
	assert.Equal(t, srv.packPremium.ID, activities[0].ID)

	status, _ = srv.do(t, http.MethodGet, "/api/activities/"+srv.packPremium.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = srv.do(t, http.MethodGet, "/api/users/packs", token, nil)
	require.Equal(t, http.StatusOK, status)
	purchased := decode[[]handler.PurchasedPackResponse](t, env)
	require.Len(t, purchased, 1)
	assert.Equal(t, srv.pack.ID, purchased[0].Pack.ID)

	status, env = srv.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, entity.TierFree, decode[handler.UserResponse](t, env).Subscription)
}

func TestSubscriptionExpiry(t *testing.T) {
	srv := newAPIServer(t, 10)
	token := srv.register(t, "parent@example.com")

	status, env := srv.do(t, http.MethodPut, "/api/users/subscription", token, map[string]string{"subscription": "family"})
	require.Equal(t, http.StatusOK, status)
	sub := decode[handler.SubscriptionResponse](t, env)
	assert.Equal(t, "family", sub.EffectiveSubscription)
	require.NotNil(t, sub.ExpiryDate)
	assert.True(t, sub.ExpiryDate.After(time.Now()))

	past := time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	status, env = srv.do(t, http.MethodPut, "/api/users/subscription", token, map[string]string{
		"subscription": "premium",
		"expiryDate":   past,
	})
	require.Equal(t, http.StatusOK, status)
	sub = decode[handler.SubscriptionResponse](t, env)
	assert.Equal(t, "premium", sub.Subscription)
	assert.Equal(t, "free", sub.EffectiveSubscription)

	status, env = srv.do(t, http.MethodGet, "/api/activities/"+srv.premium.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "PREMIUM_REQUIRED", env.Error.Code)

	status, env = srv.do(t, http.MethodPut, "/api/users/subscription", token, map[string]string{"subscription": "gold"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestChildren(t *testing.T) {
	srv := newAPIServer(t, 10)
	token := srv.register(t, "parent@example.com")

	status, env := srv.do(t, http.MethodPost, "/api/users/children", token, map[string]any{
		"name":      "Mia",
		"birthdate": "2020-05-01T00:00:00Z",
		"interests": []string{"art", " art ", "music"},
	})
	require.Equal(t, http.StatusCreated, status)
	child := decode[handler.ChildResponse](t, env)
	assert.Equal(t, []string{"art", "music"}, child.Interests)

	status, env = srv.do(t, http.MethodPut, "/api/users/children/"+child.ID.String(), token, map[string]string{"name": "Mia Rose"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Mia Rose", decode[handler.ChildResponse](t, env).Name)

	status, _ = srv.do(t, http.MethodDelete, "/api/users/children/"+child.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = srv.do(t, http.MethodDelete, "/api/users/children/"+child.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CHILD_NOT_FOUND", env.Error.Code)
}

func TestAuthRateLimit(t *testing.T) {
	srv := newAPIServer(t, 2)
	body := map[string]string{"email": "nobody@example.com", "password": testPassword}

	for range 2 {
		status, _ := srv.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, env := srv.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newAPIServer(t, 10)

	status, _ := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, "/api/activities/"+srv.free.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = srv.do(t, http.MethodGet, "/api/activities/"+srv.premium.ID.String(), "", nil)
	require.Equal(t, http.StatusForbidden, status)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "brightsteps_activities_detail_views_total 1")
	assert.Contains(t, body, `brightsteps_access_denied_total{reason="premium_required"} 1`)
	assert.Contains(t, body, `route="/api/activities/:id"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestShareActivity(t *testing.T) {
	srv := newAPIServer(t, 10)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/"+srv.premium.ID.String()+"/qrcode", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "https://app.example.com/activities/"+srv.premium.ID.String(), rec.Header().Get("X-Share-Url"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])

	status, env := srv.do(t, http.MethodGet, "/api/activities/"+uuid.NewString()+"/qrcode", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ACTIVITY_NOT_FOUND", env.Error.Code)
}
