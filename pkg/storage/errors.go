package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/aws/smithy-go"
)

// Code is a stable classification for storage failures. Handlers and services
// branch on the code, never on backend-specific error strings.
type Code string

const (
	CodeUnauthorized    Code = "unauthorized"
	CodeQuotaExceeded   Code = "quota-exceeded"
	CodeNotFound        Code = "not-found"
	CodeInvalidArgument Code = "invalid-argument"
	CodeUnknown         Code = "unknown"
)

// Error wraps a backend failure with a stable code and the failing operation.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify converts a backend error into a classified *Error. Already
// classified errors pass through unchanged.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Code: classifyCode(err), Op: op, Err: err}
}

func classifyCode(err error) Code {
	// Filesystem errors from the local backend.
	if errors.Is(err, fs.ErrNotExist) {
		return CodeNotFound
	}
	if errors.Is(err, fs.ErrPermission) {
		return CodeUnauthorized
	}

	// S3 API errors carry a stable error code.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return CodeUnauthorized
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return CodeNotFound
		case "QuotaExceeded", "ServiceQuotaExceeded", "TooManyBuckets":
			return CodeQuotaExceeded
		case "InvalidArgument", "InvalidRequest", "EntityTooLarge":
			return CodeInvalidArgument
		}
	}

	return CodeUnknown
}

// CodeOf extracts the classification code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}
