package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxRole     = "role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Refreshed struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// RefreshFunc rotates a refresh token and returns a fresh token pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (*Refreshed, error)

type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresh   RefreshFunc
}

func NewAutoRefreshMiddleware(secret []byte, refresh RefreshFunc) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret: secret,
		Refresh:   refresh,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func accessToken(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), true
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, false
	}
	return "", false
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, bearer := accessToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err == nil {
			if validator != nil {
				if vErr := validator(claims); vErr != nil {
					return vErr
				}
			}
			setUserContext(c, claims)
			return next(c)
		}

		// bearer clients manage their own tokens
		if bearer || m.Refresh == nil || !errors.Is(err, jwt.ErrTokenExpired) {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		refreshCookie, rErr := c.Cookie(tokens.RefreshCookie)
		if rErr != nil || refreshCookie.Value == "" {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}

		refreshed, refErr := m.Refresh(c.Request().Context(), refreshCookie.Value)
		if refErr != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
		}

		c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, refreshed.AccessToken, "/", refreshed.AccessExp))
		c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, refreshed.RefreshToken, "/", refreshed.RefreshExp))

		newClaims, pErr := tokens.AccessClaimsFromToken(refreshed.AccessToken, m.JWTSecret)
		if pErr != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}

		if validator != nil {
			if vErr := validator(newClaims); vErr != nil {
				return vErr
			}
		}

		setUserContext(c, newClaims)
		return next(c)
	}
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ctxUserID, claims.Subject)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, claims.Role)
}

func UserID(c echo.Context) (uint, bool) {
	s, ok := c.Get(ctxUserID).(string)
	if !ok || s == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func Username(c echo.Context) string {
	s, _ := c.Get(ctxUsername).(string)
	return s
}

func IsAdmin(c echo.Context) bool {
	s, _ := c.Get(ctxRole).(string)
	return s == RoleAdmin
}

// SameUser reports whether the caller may act on behalf of username.
// Usernames compare case-insensitively; admins may act for anyone.
func SameUser(c echo.Context, username string) bool {
	if IsAdmin(c) {
		return true
	}
	u := Username(c)
	return u != "" && strings.EqualFold(u, username)
}

func SameUserID(c echo.Context, id uint) bool {
	if IsAdmin(c) {
		return true
	}
	uid, ok := UserID(c)
	return ok && uid == id
}
