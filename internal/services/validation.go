package services

import (
	"net/url"
	"regexp"
	"strings"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
)

var (
	shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)
	hostnameLabel    = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
)

// reservedCodes are first path segments already taken by routes.
var reservedCodes = map[string]struct{}{
	"api":    {},
	"health": {},
}

// ValidateTargetURL checks that raw is an absolute http(s) URL with a host.
func ValidateTargetURL(raw string) error {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return customerrors.ErrInvalidURL
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return customerrors.ErrInvalidURL
	}
	return nil
}

// ValidateShortCode checks a caller-supplied short code.
func ValidateShortCode(code string) error {
	if !shortCodePattern.MatchString(code) {
		return customerrors.ErrInvalidShortCode
	}
	if _, reserved := reservedCodes[strings.ToLower(code)]; reserved {
		return customerrors.ErrInvalidShortCode
	}
	return nil
}

// ValidateDomain checks that domain is a plain hostname, without scheme or port.
func ValidateDomain(domain string) error {
	if domain == "" || len(domain) > 253 {
		return customerrors.ErrInvalidDomain
	}
	for _, label := range strings.Split(strings.ToLower(domain), ".") {
		if !hostnameLabel.MatchString(label) {
			return customerrors.ErrInvalidDomain
		}
	}
	return nil
}
