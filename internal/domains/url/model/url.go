package model

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Operation names accepted by POST /url.
const (
	OpCanonical   = "canonical"
	OpRedirection = "redirection"
	OpAll         = "all"
)

// Operations lists every supported operation.
var Operations = []interface{}{OpCanonical, OpRedirection, OpAll}

// CleanRequest is the body of POST /url.
type CleanRequest struct {
	URL       string `json:"url"`
	Operation string `json:"operation"`
}

// CleanResponse is the success body of POST /url.
type CleanResponse struct {
	ProcessedURL string `json:"processed_url"`
}

// isHTTPURL accepts absolute http and https URLs only.
var isHTTPURL = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
})

// Validate checks the URL before the operation, so a bad URL with a bad
// operation reports the URL.
func (r CleanRequest) Validate() error {
	if err := validation.Validate(r.URL, validation.Required, isHTTPURL); err != nil {
		return ErrInvalidURL
	}
	if err := validation.Validate(r.Operation, validation.Required, validation.In(Operations...)); err != nil {
		return ErrInvalidOperation
	}
	return nil
}
