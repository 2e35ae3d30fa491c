package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the URL shortener application

// ErrValidation is the parent of every input validation failure.
// Validation errors are raised before the store is touched.
var ErrValidation = errors.New("validation failed")

// ErrInvalidURL is returned when the provided URL is not an absolute http(s) URL
var ErrInvalidURL = fmt.Errorf("%w: invalid URL format", ErrValidation)

// ErrInvalidShortCode is returned when the short code format is invalid
var ErrInvalidShortCode = fmt.Errorf("%w: invalid short code format", ErrValidation)

// ErrInvalidExpiration is returned when expiresIn is outside the allowed range
var ErrInvalidExpiration = fmt.Errorf("%w: expiration out of range", ErrValidation)

// ErrInvalidDomain is returned when a custom domain is not a valid hostname
var ErrInvalidDomain = fmt.Errorf("%w: invalid domain", ErrValidation)

// ErrShortCodeNotFound is returned when a short code doesn't exist or has expired
var ErrShortCodeNotFound = errors.New("short code not found")

// ErrDomainNotFound is returned when no custom domain is registered for a host
var ErrDomainNotFound = errors.New("domain not found")

// ErrShortCodeTaken is returned when a custom code is already in use
var ErrShortCodeTaken = errors.New("short code already exists")

// ErrShortCodeGenerationFailed is returned when we can't generate a unique short code
var ErrShortCodeGenerationFailed = errors.New("failed to generate unique short code")

// ErrUnauthorized is returned when the bearer credential is missing or unknown
var ErrUnauthorized = errors.New("unauthorized")

// ErrRateLimited is returned when a client exceeded its request window
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrMalformedRecord is returned when a stored value cannot be decoded.
// Callers treat it like a missing record.
var ErrMalformedRecord = errors.New("malformed record")

// ErrMetadataFetchFailed is returned when a preview source is unreachable or
// answers with a non-success status. It never leaves the metadata package.
type ErrMetadataFetchFailed struct {
	URL    string
	Reason string
}

func (e ErrMetadataFetchFailed) Error() string {
	return fmt.Sprintf("failed to fetch metadata from %s: %s", e.URL, e.Reason)
}

// ErrConfigLoad is returned when configuration loading fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}

// IsValidation reports whether err is any kind of input validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShortCodeNotFound) || errors.Is(err, ErrDomainNotFound)
}
