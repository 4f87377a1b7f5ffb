package model

import (
	"errors"
	"net/http"

	"bookit/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyBody        = errors.New("empty request body")
	ErrBadBody          = errors.New("invalid request format")
	ErrInvalidURL       = errors.New("invalid url")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotCanonical     = errors.New("url has no canonical form")
)

var urlErrorMap = map[error]struct {
	Status  int
	Message string
}{
	ErrEmptyBody:        {Status: http.StatusBadRequest, Message: "Error : Request Body is empty"},
	ErrBadBody:          {Status: http.StatusBadRequest, Message: "Invalid request format"},
	ErrInvalidURL:       {Status: http.StatusBadRequest, Message: "Url format invalid"},
	ErrInvalidOperation: {Status: http.StatusBadRequest, Message: "Invalid operation"},
	ErrNotCanonical:     {Status: http.StatusBadRequest, Message: "URL does not have a canonical format"},
}

// ForeignDomainError is returned by the redirection operation for a URL
// outside the configured domain.
type ForeignDomainError struct {
	Host string
}

func (e *ForeignDomainError) Error() string {
	return "URL is not from " + e.Host + " domain"
}

// HandleURLError writes the {msg} error body for err and reports whether it did.
func HandleURLError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var foreign *ForeignDomainError
	if errors.As(err, &foreign) {
		response.Error(c, http.StatusBadRequest, foreign.Error())
		return true
	}
	for sentinel, cfg := range urlErrorMap {
		if errors.Is(err, sentinel) {
			response.Error(c, cfg.Status, cfg.Message)
			return true
		}
	}

	log.Error().Err(err).Msg("[Handler] unhandled url error")
	response.InternalServerError(c, "Internal server error")
	return true
}
