package service

import (
	"context"
	"regexp"
	"strings"

	"bookit/internal/domains/url/model"

	"github.com/rs/zerolog/log"
)

// ServiceInterface cleans up URLs for POST /url.
type ServiceInterface interface {
	Process(ctx context.Context, req model.CleanRequest) (string, error)
}

// canonicalRx keeps scheme, host and a non-empty path, dropping the query
// and fragment.
var canonicalRx = regexp.MustCompile(`(?i)^https?://[^/?#]+/[^?#]+`)

type URLService struct {
	redirectHost string
	redirectRx   *regexp.Regexp
}

// NewService builds a cleaner whose redirection operation only accepts
// redirectHost and its www subdomain. Other subdomains are rejected.
func NewService(redirectHost string) ServiceInterface {
	host := strings.ToLower(redirectHost)
	return &URLService{
		redirectHost: host,
		redirectRx:   regexp.MustCompile(`(?i)^https?://(?:www\.)?` + regexp.QuoteMeta(host) + `(?:[/?#].*)?$`),
	}
}

// Process validates req and runs the requested operation. "all" runs
// canonical then redirection on the result.
func (s *URLService) Process(ctx context.Context, req model.CleanRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var (
		out string
		err error
	)
	switch req.Operation {
	case model.OpCanonical:
		out, err = Canonical(req.URL)
	case model.OpRedirection:
		out, err = s.Redirection(req.URL)
	default:
		out, err = Canonical(req.URL)
		if err == nil {
			out, err = s.Redirection(out)
		}
	}
	if err != nil {
		log.Debug().Err(err).Str("operation", req.Operation).Msg("[URLService] rejected")
		return "", err
	}
	return out, nil
}

// Canonical strips the query string, fragment and trailing slash. Case is
// preserved. A URL without a path has no canonical form.
func Canonical(link string) (string, error) {
	m := canonicalRx.FindString(link)
	if m == "" {
		return "", model.ErrNotCanonical
	}
	return strings.TrimSuffix(m, "/"), nil
}

// Redirection rewrites a URL of the configured domain to
// https://www.<host>/..., lower-cased.
func (s *URLService) Redirection(link string) (string, error) {
	if !s.redirectRx.MatchString(link) {
		return "", &model.ForeignDomainError{Host: s.redirectHost}
	}

	_, rest, _ := strings.Cut(link, "://")
	rest = strings.ToLower(rest)
	if !strings.HasPrefix(rest, "www.") {
		rest = "www." + rest
	}
	return "https://" + rest, nil
}
