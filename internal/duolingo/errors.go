package duolingo

import (
	"fmt"
	"strings"
)

// The client maps every raw HTTP response onto this closed taxonomy so that
// callers can pattern-match on a finite set of outcomes instead of inspecting
// status codes themselves.

// AuthenticationError means bad credentials or an expired/invalid token.
// Fatal for the run; never retried with the same credential.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// ProfileFetchError means the profile read failed. Fatal for the run.
type ProfileFetchError struct {
	Status int
	Body   string
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("profile fetch failed: status %d", e.Status)
}

// AlreadyOwnedError means the account already holds the maximum number of
// the item. Not a failure: callers treat it as a normal terminal state.
type AlreadyOwnedError struct {
	ItemName string
}

func (e *AlreadyOwnedError) Error() string {
	return fmt.Sprintf("already own %s", e.ItemName)
}

// InsufficientFundsError means the server refused the purchase for lack of
// gems. A normal terminal state mapped to a warning outcome.
type InsufficientFundsError struct {
	ItemName string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("not enough gems to purchase %s", e.ItemName)
}

// RateLimitedError is returned on HTTP 429. Retryable with bounded attempts.
type RateLimitedError struct{}

func (e *RateLimitedError) Error() string { return "rate limited by server" }

// ServiceUnavailableError is returned on 5xx. Retryable with bounded attempts.
type ServiceUnavailableError struct {
	Status int
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("service unavailable: status %d", e.Status)
}

// BlockedError means the server recognized the request as automated. Fatal,
// must not be retried.
type BlockedError struct {
	Body string
}

func (e *BlockedError) Error() string { return "request blocked as automated traffic" }

// UnexpectedResponseError carries the raw status and body for diagnostics
// when the response matches no known shape.
type UnexpectedResponseError struct {
	Status int
	Body   string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: status %d, body: %s", e.Status, e.Body)
}

// shopError is the JSON error shape of the shop-items endpoint.
type shopError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *shopError) text() string {
	if s.Message != "" {
		return s.Message
	}
	return s.Error
}

// classifyShopResponse maps a non-200 shop-items response to the taxonomy.
// This is the single place where raw status + body shape become typed errors.
func classifyShopResponse(status int, body string, se *shopError, itemName string) error {
	switch {
	case status == 400:
		msg := se.text()
		switch {
		case strings.Contains(msg, "ALREADY_HAVE_STORE_ITEM"):
			return &AlreadyOwnedError{ItemName: itemName}
		case strings.Contains(msg, "INSUFFICIENT_FUNDS"):
			return &InsufficientFundsError{ItemName: itemName}
		default:
			return &UnexpectedResponseError{Status: status, Body: body}
		}
	case status == 401 || status == 403:
		if looksBlocked(body) {
			return &BlockedError{Body: body}
		}
		return &AuthenticationError{Reason: fmt.Sprintf("token rejected: status %d", status)}
	case status == 429:
		return &RateLimitedError{}
	case status >= 500:
		return &ServiceUnavailableError{Status: status}
	default:
		return &UnexpectedResponseError{Status: status, Body: body}
	}
}

// looksBlocked detects the automation-block page the service serves instead
// of a normal API error when it flags scripted traffic.
func looksBlocked(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "blocked") ||
		strings.Contains(lower, "automated") ||
		strings.Contains(lower, "captcha")
}

// retryable reports whether the error is worth retrying after a backoff.
func retryable(err error) bool {
	switch err.(type) {
	case *RateLimitedError, *ServiceUnavailableError:
		return true
	default:
		return false
	}
}
