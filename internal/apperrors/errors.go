package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrQuotaExceeded          = errors.New("recipe provider quota exceeded")
	ErrInvalidResponse        = errors.New("invalid response from recipe provider")
	ErrNoResultsFound         = errors.New("no recipes found")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrPersistenceFailure     = errors.New("persistence failure")

	ErrNoMealPeriods    = errors.New("at least one meal period must be selected")
	ErrInvalidDayCount  = errors.New("number of days must be between 1 and 31")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptyItemName    = errors.New("item name cannot be empty")
	ErrInvalidQuantity  = errors.New("quantity must be a positive number")
	ErrItemNotFound     = errors.New("item not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrEmptyClipboard   = errors.New("no meal has been copied")
	ErrMealNotFound     = errors.New("no meal in that slot")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRequest     = errors.New("invalid request")
)

// ProviderError is a non-2xx answer from the recipe provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("recipe provider returned status %d", e.StatusCode)
}

// Is lets 402 and 429 answers match ErrQuotaExceeded.
func (e *ProviderError) Is(target error) bool {
	return target == ErrQuotaExceeded && IsQuotaStatus(e.StatusCode)
}

// IsQuotaStatus reports whether the provider refused for budget reasons.
func IsQuotaStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusPaymentRequired
}

// Persistence wraps a store failure so callers can match ErrPersistenceFailure.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistenceFailure, err)
}

var providerMessages = map[int]string{
	http.StatusUnauthorized:        "The recipe service rejected the API key. Check the key saved in your profile.",
	http.StatusPaymentRequired:     "The recipe service quota for this key is used up. Try again later or add your own API key.",
	http.StatusNotFound:            "The requested recipe could not be found.",
	http.StatusTooManyRequests:     "Too many recipe requests right now. Please wait a minute and try again.",
	http.StatusInternalServerError: "The recipe service is having problems. Please try again later.",
}

var sentinelMessages = []struct {
	err error
	msg string
}{
	{ErrAuthenticationRequired, "Please log in to continue."},
	{ErrNoResultsFound, "Unable to find recipes matching your preferences. Try adjusting your dietary restrictions."},
	{ErrQuotaExceeded, "Too many recipe requests right now. Please wait a minute and try again."},
	{ErrInvalidResponse, "The recipe service sent an unexpected response. Please try again."},
	{ErrPersistenceFailure, "We could not save your changes. Please try again."},
	{ErrNoMealPeriods, "Please select at least one meal time."},
	{ErrInvalidDayCount, "Please choose between 1 and 31 days."},
	{ErrInvalidDate, "Please provide a valid date."},
	{ErrEmptyItemName, "Item name cannot be empty."},
	{ErrInvalidQuantity, "Quantity must be a positive number."},
	{ErrItemNotFound, "That item no longer exists."},
	{ErrTemplateNotFound, "Template not found."},
	{ErrEmptyClipboard, "Copy a meal before pasting."},
	{ErrMealNotFound, "There is no meal in that slot."},
	{ErrInvalidCredentials, "Incorrect email or password."},
	{ErrInvalidToken, "Your session has expired. Please log in again."},
	{ErrEmailTaken, "An account with that email already exists."},
	{ErrInvalidRequest, "Please fill in all required fields correctly."},
}

const genericMessage = "Something went wrong. Please try again."

// UserMessage turns any error into plain language. Provider bodies never leak.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		if msg, ok := providerMessages[perr.StatusCode]; ok {
			return msg
		}
		if perr.StatusCode >= 500 {
			return providerMessages[http.StatusInternalServerError]
		}
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}
	return genericMessage
}

// HTTPStatus picks the status an API response should carry for err.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthenticationRequired), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNoResultsFound), errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrMealNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoMealPeriods), errors.Is(err, ErrInvalidDayCount),
		errors.Is(err, ErrInvalidDate), errors.Is(err, ErrEmptyItemName),
		errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrEmptyClipboard),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidResponse):
		return http.StatusBadGateway
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
