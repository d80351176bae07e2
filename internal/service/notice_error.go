package service

import (
	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/registry"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

// noticeError attaches the notification a user should see to a typed error.
type noticeError struct {
	err    *appErrors.Error
	notice *dto.Notice
}

func (e *noticeError) Error() string { return e.err.Error() }

func (e *noticeError) Unwrap() error { return e.err }

// Notice returns the user-facing notification for the failure.
func (e *noticeError) Notice() *dto.Notice { return e.notice }

// failWithNotice wraps err with a destructive notice titled title carrying err's message.
func failWithNotice(err *appErrors.Error, title string) error {
	notice := dto.Failure(err.Message)
	if title != "" {
		notice.Title = title
	}
	return &noticeError{err: err, notice: notice}
}

// registryFailure converts a registry error into a typed error whose message is the registry's text,
// or fallback when the registry gave none.
func registryFailure(err error, fallback string) *appErrors.Error {
	appErr := appErrors.FromError(err)
	if _, ok := registry.AsError(err); !ok {
		return appErrors.Clone(appErr, fallback)
	}
	if appErr.Message == "" {
		return appErrors.Clone(appErr, fallback)
	}
	return appErr
}
