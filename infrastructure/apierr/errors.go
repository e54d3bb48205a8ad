// Package apierr maps Google API errors onto sentinel errors.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorized (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")

	// ErrStorageQuotaExceeded indicates the account has run out of storage.
	ErrStorageQuotaExceeded = errors.New("google: storage quota exceeded")
)

// Wrap annotates a Google API error with the matching sentinel.
// The original error stays in the chain so errors.As still finds it.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch {
	case gerr.Code == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case gerr.Code == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case gerr.Code == http.StatusForbidden && hasReason(gerr, "storageQuotaExceeded", "quotaExceeded"):
		sentinel = ErrStorageQuotaExceeded
	case gerr.Code == http.StatusForbidden && hasReason(gerr, "rateLimitExceeded", "userRateLimitExceeded"):
		sentinel = ErrRateLimited
	case gerr.Code == http.StatusForbidden:
		sentinel = ErrForbidden
	case gerr.Code == http.StatusNotFound:
		sentinel = ErrNotFound
	default:
		return err
	}

	return fmt.Errorf("%w: %w", sentinel, err)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// RetryAfter returns the delay requested by a Retry-After header, or zero.
func RetryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func hasReason(gerr *googleapi.Error, reasons ...string) bool {
	for _, item := range gerr.Errors {
		for _, r := range reasons {
			if item.Reason == r {
				return true
			}
		}
	}
	return false
}
