package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxActor  = "actor"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller in the request context. Handlers read it back with
// ActorFrom; the raw "user_id" (uint64) and "role" (string) values are also
// set for middleware that only needs those.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := parseBearer(c.Request().Header.Get("Authorization"), secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing or invalid bearer token"})
			}
			c.Set(ctxUserID, actor.UserID)
			c.Set(ctxRole, actor.Role)
			c.Set(ctxActor, actor)
			return next(c)
		}
	}
}

// OptionalJWT behaves like JWTAuth but lets anonymous requests through.
// An invalid token is still rejected.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	strict := JWTAuth(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := strict(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			return withAuth(c)
		}
	}
}

func parseBearer(header, secret string) (model.Actor, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return model.Actor{}, false
	}
	tok, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return model.Actor{}, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, false
	}
	id, ok := subject(claims["sub"])
	if !ok {
		return model.Actor{}, false
	}
	role, _ := claims["role"].(string)
	if role != model.RoleAdmin && role != model.RoleUser {
		return model.Actor{}, false
	}
	return model.Actor{UserID: id, Role: role}, true
}

// subject decodes the "sub" claim. Tokens are issued with a numeric sub,
// which encoding/json decodes as float64.
func subject(v any) (uint64, bool) {
	switch s := v.(type) {
	case float64:
		if s <= 0 || s != float64(uint64(s)) {
			return 0, false
		}
		return uint64(s), true
	case string:
		n, err := strconv.ParseUint(s, 10, 64)
		return n, err == nil && n > 0
	}
	return 0, false
}
