// Package middleware contains the HTTP middleware of the application.
package middleware

import (
	"net/http"
	"slices"
	"strings"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/authz"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// actorFromRequest resolves the bearer token to an actor. Only access
// tokens authenticate requests; refresh tokens are rejected here.
func (m *AuthMiddleware) actorFromRequest(c echo.Context) (authz.Actor, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return authz.Actor{}, domainerrors.ErrUnauthenticated.WithDetails("Authorization header is missing")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return authz.Actor{}, domainerrors.ErrUnauthenticated.WithDetails("Invalid token format, must be Bearer token")
	}

	claims, err := m.tokenSvc.ValidateToken(tokenString)
	if err != nil {
		return authz.Actor{}, domainerrors.ErrUnauthenticated.WithDetails("Invalid or expired token")
	}
	if claims.Type != "access" {
		return authz.Actor{}, domainerrors.ErrUnauthenticated.WithDetails("Not an access token")
	}

	role, ok := entity.RoleFromString(claims.Role)
	if !ok {
		return authz.Actor{}, domainerrors.ErrUnauthenticated.WithDetails("Unknown role in token")
	}

	return authz.Actor{ID: claims.UserID, Role: role}, nil
}

// Authenticate validates the JWT access token and stores the actor on the
// context. A missing or invalid token fails the request with 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := m.actorFromRequest(c)
		if err != nil {
			return err
		}

		deliverycontext.SetActor(c, actor)

		return next(c)
	}
}

// OptionalAuthenticate resolves the actor when a valid token is presented
// but lets anonymous requests through. Public catalog reads use this so
// owners and admins see their hidden listings.
func (m *AuthMiddleware) OptionalAuthenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if actor, err := m.actorFromRequest(c); err == nil {
			deliverycontext.SetActor(c, actor)
		}

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the actor has one of
// the given roles. It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := deliverycontext.GetActor(c)
			if !ok {
				return domainerrors.ErrUnauthenticated.WithDetails("Actor information missing")
			}

			if !slices.Contains(roles, actor.Role) {
				return domainerrors.ErrForbidden.WithDetails("Insufficient role")
			}

			return next(c)
		}
	}
}

// RedirectIfAuthenticated short-circuits the auth entry pages for callers
// that already hold a valid session, sending them to their profile.
func (m *AuthMiddleware) RedirectIfAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := m.actorFromRequest(c); err == nil {
			return c.Redirect(http.StatusSeeOther, "/me")
		}

		return next(c)
	}
}
