package core

import (
	"context"
	"fmt"
	"strings"
	"testing"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestClassifyErrorNil(t *testing.T) {
	if got := ClassifyError(nil); got != ErrorCategoryNone {
		t.Fatalf("expected none, got %s", got)
	}
}

func TestClassifyErrorRBAC(t *testing.T) {
	forbidden := apierrors.NewForbidden(schema.GroupResource{Resource: "configmaps"}, "db-config", fmt.Errorf("denied"))
	if got := ClassifyError(forbidden); got != ErrorCategoryRBAC {
		t.Fatalf("expected rbac, got %s", got)
	}

	wrapped := fmt.Errorf("create db-config: %w", forbidden)
	if got := ClassifyError(wrapped); got != ErrorCategoryRBAC {
		t.Fatalf("expected rbac through wrapping, got %s", got)
	}
}

func TestClassifyErrorTransient(t *testing.T) {
	tooMany := apierrors.NewTooManyRequests("slow down", 1)
	if got := ClassifyError(tooMany); got != ErrorCategoryTransient {
		t.Fatalf("expected transient, got %s", got)
	}

	if got := ClassifyError(context.DeadlineExceeded); got != ErrorCategoryTransient {
		t.Fatalf("expected transient for deadline, got %s", got)
	}

	conflict := apierrors.NewConflict(schema.GroupResource{Resource: "deployments"}, "app", fmt.Errorf("stale"))
	if got := ClassifyError(conflict); got != ErrorCategoryTransient {
		t.Fatalf("expected transient for conflict, got %s", got)
	}
}

func TestClassifyErrorPermanent(t *testing.T) {
	if got := ClassifyError(fmt.Errorf("bad image reference")); got != ErrorCategoryPermanent {
		t.Fatalf("expected permanent, got %s", got)
	}
	if IsRetryable(fmt.Errorf("bad image reference")) {
		t.Fatal("permanent errors must not be retryable")
	}
}

func TestIsValidationCoversTaxonomy(t *testing.T) {
	cases := []error{
		&DuplicateResourceError{Kind: KindConfigMap, Namespace: "default", Name: "db-config"},
		&UnresolvedReferenceError{Referrer: ResourceID{Kind: KindDeployment, Name: "app"}, Ref: Reference{Kind: KindSecret, Name: "mysql-secrets", Key: "password"}},
		&CycleError{Members: []string{"a", "b", "a"}},
	}
	for _, err := range cases {
		if !IsValidation(err) {
			t.Fatalf("expected %T to be a validation error", err)
		}
		wrapped := fmt.Errorf("pass aborted: %w", err)
		if !IsValidation(wrapped) {
			t.Fatalf("expected wrapped %T to be a validation error", err)
		}
	}

	if IsValidation(fmt.Errorf("api blew up")) {
		t.Fatal("arbitrary errors are not validation errors")
	}
}

func TestUnresolvedReferenceErrorMessage(t *testing.T) {
	err := &UnresolvedReferenceError{
		Referrer: ResourceID{Kind: KindDeployment, Name: "app"},
		Ref:      Reference{Kind: KindConfigMap, Name: "db-config", Key: "host"},
	}
	msg := err.Error()
	for _, fragment := range []string{"Deployment/app", "host", "db-config"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in %q", fragment, msg)
		}
	}
}
