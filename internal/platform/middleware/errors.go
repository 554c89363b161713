package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ClientError is implemented by failures that carry their own status and
// field->message payload. The error handler renders them without knowing
// their concrete type.
type ClientError interface {
	error
	StatusCode() int
	Payload() map[string]string
}

type leveled interface {
	LogLevel() zerolog.Level
}

// ErrorHandler renders every error returned by a handler as a JSON
// field->message object. Client errors are logged at their own level
// (warn by default); anything unclassified is a 500 and is logged as an error.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		rid, _ := c.Get("request_id").(string)
		status := http.StatusInternalServerError
		body := map[string]string{"message": "internal server error"}

		var ce ClientError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ce):
			status, body = ce.StatusCode(), ce.Payload()
			level := zerolog.WarnLevel
			if l, ok := ce.(leveled); ok {
				level = l.LogLevel()
			}
			logger.WithLevel(level).Str("request_id", rid).Err(err).Msg("request rejected")
		case errors.As(err, &he):
			status = he.Code
			if status < http.StatusInternalServerError {
				body = map[string]string{"message": fmt.Sprint(he.Message)}
			} else {
				logger.Error().Str("request_id", rid).Err(err).Msg("request failed")
			}
		default:
			logger.Error().Str("request_id", rid).Err(err).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Str("request_id", rid).Err(err).Msg("write error response")
		}
	}
}

// BindError maps a request binding failure to a client error, keeping the
// 413 produced by BodyLimit intact.
func BindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
}

func statusOf(err error) int {
	var ce ClientError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ce):
		return ce.StatusCode()
	case errors.As(err, &he):
		return he.Code
	default:
		return http.StatusInternalServerError
	}
}
