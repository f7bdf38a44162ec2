package middleware

import (
	"strings"

	deliverycontext "brightsteps/internal/delivery/context"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
}

// AuthMiddleware resolves bearer tokens to users.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{authUC: params.AuthUC}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return domainerrors.ErrUnauthorized.WithDetails("authorization header is missing")
		}

		if err := m.resolve(c, header); err != nil {
			return err
		}

		return next(c)
	}
}

// OptionalAuthenticate lets anonymous requests through. A header that is present
// must still carry a valid token.
func (m *AuthMiddleware) OptionalAuthenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}

		if err := m.resolve(c, header); err != nil {
			return err
		}

		return next(c)
	}
}

func (m *AuthMiddleware) resolve(c echo.Context, header string) error {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return domainerrors.ErrUnauthorized.WithDetails("invalid token format, must be Bearer token")
	}

	userID, err := m.authUC.Authenticate(c.Request().Context(), strings.TrimSpace(token))
	if err != nil {
		return err
	}

	deliverycontext.SetUserID(c, userID)

	return nil
}
