package handler // handler defines http handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// RequestValidator adapts go-playground/validator to echo.Validator. Field
// names in errors use the json tag, so messages match the request body.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate returns an apperror.InvalidArgument naming the first bad field.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.InvalidArgument("body", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperror.InvalidArgument(fe.Field(), fe.Field()+" is required")
	case "max":
		return apperror.InvalidArgument(fe.Field(), fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "email":
		return apperror.InvalidArgument(fe.Field(), fe.Field()+" must be a valid email address")
	}
	return apperror.InvalidArgument(fe.Field(), fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
}

// bind decodes the JSON body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return apperror.InvalidArgument("body", "invalid request body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

// actorFrom returns the authenticated caller or an Unauthorized error.
func actorFrom(c echo.Context) (model.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return model.Actor{}, apperror.Unauthorized("unauthorized")
	}
	return a, nil
}

// queryID parses a required positive id from the query string.
func queryID(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, apperror.InvalidArgument(name, name+" is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.InvalidArgument(name, name+" must be a positive integer")
	}
	return id, nil
}

// writeError renders err as {error, message} with the status of its kind.
// Unclassified errors are logged and reported as 500.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	status, msg := apperror.Describe(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Any("request_id", c.Get("request_id")),
			zap.Error(err))
	}
	code := apperror.KindOf(err).String()
	if status == http.StatusGatewayTimeout || status == http.StatusServiceUnavailable {
		code = "timeout"
	}
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
