// Package apperr maps service errors onto the API's flat error taxonomy:
// request validation renders as 400 with the message verbatim, a missing row
// as 404, known constraint violations as 400 with a stable message, and
// anything unrecognized passes through so the server's error handler renders
// an opaque 500 without leaking storage details.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dialytrack/dialytrack/internal/platform/db"
)

type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

// Invalidf builds a request validation error.
func Invalidf(format string, args ...interface{}) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}

// IsInvalid reports whether err was built with Invalidf.
func IsInvalid(err error) bool {
	var ie *invalidError
	return errors.As(err, &ie)
}

// HTTP translates a service error. notFound is the message used when the
// underlying row does not exist.
func HTTP(err error, notFound string) error {
	switch {
	case IsInvalid(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case db.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case db.IsUniqueViolation(err):
		return echo.NewHTTPError(http.StatusBadRequest, "a record with the same unique value already exists")
	case db.IsForeignKeyViolation(err):
		return echo.NewHTTPError(http.StatusBadRequest, "a referenced record does not exist")
	default:
		return err
	}
}
