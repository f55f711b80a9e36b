package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/kev405/toolflow-backend/types"
)

func TestIssueAndExtract_Success(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)
	user := types.User{Username: "johndoe", Name: "John"}

	token, err := svc.Issue(user, []types.Role{types.RoleAdministrator})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	username, err := svc.ExtractUsername(token)
	if err != nil {
		t.Fatalf("ExtractUsername error: %v", err)
	}
	if username != "johndoe" {
		t.Fatalf("username mismatch: got %q want %q", username, "johndoe")
	}
}

func TestExtractUsername_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("secret", -1*time.Second)
	token, err := svc.Issue(types.User{Username: "u1"}, nil)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = svc.ExtractUsername(token)
	if err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractUsername_TamperedSignature(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService("right-secret", time.Hour)
	token, err := issuer.Issue(types.User{Username: "u2"}, nil)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	verifier := NewTokenService("wrong-secret", time.Hour)
	if _, err := verifier.ExtractUsername(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered signature, got %v", err)
	}
}

func TestExtractUsername_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("k", time.Hour)
	if _, err := svc.ExtractUsername("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestIsValid_Idempotent(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("secret", time.Hour)
	token, err := svc.Issue(types.User{Username: "u3"}, []types.Role{types.RoleStudent})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	first := svc.IsValid(token)
	second := svc.IsValid(token)
	if !first || first != second {
		t.Fatalf("IsValid not stable: first=%v second=%v", first, second)
	}

	if svc.IsValid("garbage") {
		t.Fatalf("expected IsValid to be false for garbage input")
	}
}

func TestIdentityHasAnyRole(t *testing.T) {
	t.Parallel()

	identity := Identity{Roles: []types.Role{types.RoleTeacher}}
	if !identity.HasAnyRole(types.RoleAdministrator, types.RoleTeacher) {
		t.Fatalf("expected TEACHER to satisfy OR check")
	}
	if identity.HasAnyRole(types.RoleAdministrator) {
		t.Fatalf("TEACHER must not satisfy ADMINISTRATOR-only check")
	}
}
