package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// ActorFrom returns the caller stored by JWTAuth. ok is false for anonymous
// requests.
func ActorFrom(c echo.Context) (model.Actor, bool) {
	a, ok := c.Get(ctxActor).(model.Actor)
	return a, ok && a.UserID != 0
}

// userID renders the caller for cache and rate-limit keys; anonymous
// callers share "anon".
func userID(c echo.Context) string {
	if a, ok := ActorFrom(c); ok {
		return strconv.FormatUint(a.UserID, 10)
	}
	return "anon"
}
