package service

import (
	"errors"
	"fmt"

	"github.com/gracechapel/backend/pkg/storage"
)

// ErrAssetNotFound indicates the catalog has no record for the given asset id.
var ErrAssetNotFound = errors.New("media asset not found")

// TransportError is a classified blob transport failure. It is raised during
// upload or deletion and always means no catalog record was created for the
// failed write.
type TransportError struct {
	Code storage.Code
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure (%s): %v", e.Code, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message returns a human-readable description suitable for the UI.
func (e *TransportError) Message() string {
	switch e.Code {
	case storage.CodeUnauthorized:
		return "Access to storage was denied. Check storage credentials and permissions."
	case storage.CodeQuotaExceeded:
		return "Storage quota exceeded. Free up space or raise the quota before uploading."
	case storage.CodeNotFound:
		return "The requested file no longer exists in storage."
	case storage.CodeInvalidArgument:
		return "Storage rejected the request. Check the storage configuration."
	default:
		return "Storage operation failed. Please try again."
	}
}

func newTransportError(err error) *TransportError {
	return &TransportError{Code: storage.CodeOf(err), Err: err}
}

// Catalog error codes.
const (
	CatalogPermissionDenied = "permission-denied"
	CatalogUnknown          = "unknown"
)

// CatalogError is a classified catalog failure raised during record
// create/update/delete. A create failure after a successful blob write
// leaves an orphaned blob; the catalog does not reconcile it.
type CatalogError struct {
	Code string
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog failure (%s): %v", e.Code, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

func newCatalogError(err error) *CatalogError {
	return &CatalogError{Code: CatalogUnknown, Err: err}
}

// PartialBulkFailure reports a bulk operation where some items failed while
// others succeeded. Completed items are never rolled back.
type PartialBulkFailure struct {
	Requested int
	Succeeded int
	Failed    int
}

func (e *PartialBulkFailure) Error() string {
	return fmt.Sprintf("bulk operation incomplete: %d of %d items failed", e.Failed, e.Requested)
}
