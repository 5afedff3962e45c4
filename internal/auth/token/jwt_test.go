package token

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
)

func TestIssueParseRoundTrip(t *testing.T) {
	m := New("test-secret", "media-gate", time.Hour)
	u := domain.User{ID: uuid.New(), Email: "instructor@example.com", Role: domain.RoleInstructor}

	raw, issued, err := m.Issue(context.Background(), u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.JTI == "" {
		t.Fatal("empty jti")
	}

	got, err := m.Parse(context.Background(), raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.UserID != u.ID || got.Email != u.Email || got.Role != u.Role || got.JTI != issued.JTI {
		t.Fatalf("claims mismatch: %+v vs issued %+v", got, issued)
	}
	if !got.ExpiresAt.After(got.IssuedAt) {
		t.Fatalf("exp %v not after iat %v", got.ExpiresAt, got.IssuedAt)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	m1 := New("secret-one", "media-gate", time.Hour)
	m2 := New("secret-two", "media-gate", time.Hour)

	raw, _, err := m1.Issue(context.Background(), domain.User{ID: uuid.New(), Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m2.Parse(context.Background(), raw); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := New("test-secret", "media-gate", -time.Minute)

	raw, _, err := m.Issue(context.Background(), domain.User{ID: uuid.New(), Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(context.Background(), raw); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	m := New("test-secret", "media-gate", time.Hour)

	raw, _, err := m.Issue(context.Background(), domain.User{ID: uuid.New(), Role: domain.Role("superuser")})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(context.Background(), raw); err == nil {
		t.Fatal("token with unknown role accepted")
	}
}
