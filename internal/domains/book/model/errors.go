package model

import (
	"bookit/internal/shared/response"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrInvalidBookID   = errors.New("invalid book id")
	ErrInvalidPubDate  = errors.New("invalid publication date")
	ErrInvalidNumPages = errors.New("invalid number of pages")
	ErrDatabaseQuery   = errors.New("database query error")
)

var bookErrorMap = map[error]struct {
	Status  int
	Message string
}{
	ErrBookNotFound:    {Status: http.StatusNotFound, Message: "Book not found"},
	ErrInvalidBookID:   {Status: http.StatusBadRequest, Message: "Book id must be a positive integer"},
	ErrInvalidPubDate:  {Status: http.StatusBadRequest, Message: "Invalid date format. Should be YYYY-MM-DD"},
	ErrInvalidNumPages: {Status: http.StatusBadRequest, Message: "Number of pages must be a non-negative integer"},
}

// EmptyFieldsError is returned when required fields of a request are blank.
type EmptyFieldsError struct {
	Fields []string
}

func (e *EmptyFieldsError) Error() string {
	return "The following fields are empty: " + strings.Join(e.Fields, ", ")
}

// BadBodyError wraps a request body that could not be decoded.
type BadBodyError struct {
	Err error
}

func (e *BadBodyError) Error() string { return e.Err.Error() }
func (e *BadBodyError) Unwrap() error { return e.Err }

// HandleBookError writes the {msg} error body for err and reports whether it did.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var empty *EmptyFieldsError
	if errors.As(err, &empty) {
		response.BadRequest(c, empty.Error())
		return true
	}
	var bad *BadBodyError
	if errors.As(err, &bad) {
		response.BadRequest(c, bad.Error())
		return true
	}

	for sentinel, cfg := range bookErrorMap {
		if errors.Is(err, sentinel) {
			response.Error(c, cfg.Status, cfg.Message)
			return true
		}
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("[Handler] unhandled book error")
	response.InternalServerError(c, "Internal server error")
	return true
}
