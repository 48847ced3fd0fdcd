package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// DuplicateResourceError indicates two submitted resources collide on
// (kind, namespace, name).
type DuplicateResourceError struct {
	Kind      Kind
	Namespace string
	Name      string
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("duplicate resource %s %s/%s", e.Kind, e.Namespace, e.Name)
}

// UnresolvedReferenceError indicates a Reference that does not resolve within
// the submitted set. The message names the referenced key at most, never a
// value.
type UnresolvedReferenceError struct {
	Referrer ResourceID
	Ref      Reference
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Ref.Key != "" {
		return fmt.Sprintf("%s references missing key %q in %s %s", e.Referrer, e.Ref.Key, e.Ref.Kind, e.Ref.Name)
	}
	return fmt.Sprintf("%s references missing %s %s", e.Referrer, e.Ref.Kind, e.Ref.Name)
}

// CycleError indicates a reference cycle in the submitted set. The schema
// should make cycles impossible, but ordering rejects them rather than assume
// that.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reference cycle involving %s", strings.Join(e.Members, " -> "))
}

// IsValidation reports whether err is one of the pre-apply validation
// failures that abort a pass before any API call.
func IsValidation(err error) bool {
	var dup *DuplicateResourceError
	var unresolved *UnresolvedReferenceError
	var cycle *CycleError
	return errors.As(err, &dup) || errors.As(err, &unresolved) || errors.As(err, &cycle)
}

// ErrorCategory describes the class of an error encountered while applying.
type ErrorCategory string

const (
	// ErrorCategoryNone indicates no error.
	ErrorCategoryNone ErrorCategory = ""
	// ErrorCategoryRBAC indicates insufficient permissions (Forbidden/Unauthorized).
	ErrorCategoryRBAC ErrorCategory = "rbac"
	// ErrorCategoryTransient indicates a retryable/transient failure.
	ErrorCategoryTransient ErrorCategory = "transient"
	// ErrorCategoryPermanent indicates a non-retryable failure unrelated to RBAC.
	ErrorCategoryPermanent ErrorCategory = "permanent"
)

// ClassifyError inspects an error and returns the appropriate category.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	// Walk the error chain to find a concrete classification.
	for current := err; current != nil; current = errors.Unwrap(current) {
		switch {
		case apierrors.IsForbidden(current) || apierrors.IsUnauthorized(current):
			return ErrorCategoryRBAC
		case apierrors.IsTooManyRequests(current), apierrors.IsTimeout(current), apierrors.IsServerTimeout(current):
			return ErrorCategoryTransient
		case apierrors.IsConflict(current), apierrors.IsServiceUnavailable(current):
			return ErrorCategoryTransient
		}
		// Handle context cancellations and deadlines as transient issues.
		if errors.Is(current, context.DeadlineExceeded) || errors.Is(current, context.Canceled) {
			return ErrorCategoryTransient
		}
		// Net errors can expose retry semantics via the Temporary method.
		if ne, ok := current.(net.Error); ok {
			if ne.Timeout() || ne.Temporary() {
				return ErrorCategoryTransient
			}
		}
	}
	return ErrorCategoryPermanent
}

// IsRetryable reports whether an apply error is worth another attempt.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ErrorCategoryTransient
}
