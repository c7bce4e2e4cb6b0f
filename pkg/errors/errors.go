package errors

import (
	"fmt"
)

// ErrNotFound is returned when a record cannot be resolved, either because
// Shopify does not recognize the id or because a vendor name is absent from
// the enumerated vendor list.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrWritesDisabled is returned before any network call when a mutating
// Shopify operation is attempted for a tenant whose writes flag is off.
type ErrWritesDisabled struct {
	StoreSlug string
}

func (e *ErrWritesDisabled) Error() string {
	return fmt.Sprintf("writes to Shopify are not enabled for store %q", e.StoreSlug)
}

// ErrBatchLimit is returned when a bulk fetch would exceed Shopify's
// documented per-call limits. Checked locally before the call is attempted.
type ErrBatchLimit struct {
	Resource  string
	Limit     int
	Requested int
}

func (e *ErrBatchLimit) Error() string {
	return fmt.Sprintf("can get max %d %s at a time, requested %d", e.Limit, e.Resource, e.Requested)
}

// ErrUpstream wraps any non-success response from the Shopify API. Not
// retried and not classified further; the upstream payload is carried in
// Body for the caller to inspect.
type ErrUpstream struct {
	Status int
	Body   string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("shopify error: status %d, body: %s", e.Status, e.Body)
}

// ErrValidation is returned when mutation input fails local validation
// before any upstream call is made.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
