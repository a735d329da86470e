package service

import (
	"errors"
	"fmt"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTooManyAttempts    = errors.New("too many failed attempts, try again later")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrPlanLimit          = errors.New("plan limit reached")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrDuplicateFile      = errors.New("file already uploaded to this event")
	ErrEventClosed        = errors.New("event is not accepting uploads")
	ErrEventNotPublished  = errors.New("event is not published")
	ErrWrongPassword      = errors.New("incorrect event password")
	ErrDatesLocked        = errors.New("event dates are locked")
	ErrRetentionExpired   = errors.New("retention window has passed")
	ErrInvalidTransition  = models.ErrInvalidTransition
	ErrInvalidInput       = errors.New("invalid input")
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
)

// notFound maps gorm's record-not-found to ErrNotFound and wraps the rest.
func notFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

var userErrors = []error{
	ErrNotFound, ErrForbidden, ErrUnauthorized, ErrInvalidCredentials, ErrEmailTaken,
	ErrInvalidToken, ErrTooManyAttempts, ErrCaptchaFailed, ErrPlanLimit, ErrQuotaExceeded,
	ErrUnsupportedMedia, ErrFileTooLarge, ErrDuplicateFile, ErrEventClosed, ErrEventNotPublished,
	ErrWrongPassword, ErrDatesLocked, ErrRetentionExpired, ErrInvalidTransition, ErrInvalidInput,
	ErrPaymentUnavailable,
}

// IsUserError reports whether err is one of the sentinels above, i.e. a
// condition the client caused or can act on.
func IsUserError(err error) bool {
	for _, e := range userErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// PublicMessage is the text safe to show to a client.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsUserError(err) {
		return err.Error()
	}
	return "internal server error"
}
