package gate

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/auth"
	"github.com/senyabanana/creator-marketplace/internal/models"
)

func staticResolver(roles map[string]models.Role) RoleResolverFunc {
	return func(ctx context.Context, userID string) (models.Role, error) {
		role, ok := roles[userID]
		if !ok {
			return "", errors.New("profile not found")
		}
		return role, nil
	}
}

func newTestGate(resolver RoleResolver) *Gate {
	return NewGate(resolver, log.New(io.Discard, "", 0))
}

func TestGate_Decide(t *testing.T) {
	g := newTestGate(staticResolver(map[string]models.Role{
		"client-user":  models.ClientRole,
		"creator-user": models.CreatorRole,
	}))

	tests := []struct {
		name     string
		userID   string
		required models.Role
		want     Decision
	}{
		{"anonymous", "", models.CreatorRole, Redirect},
		{"matching role", "creator-user", models.CreatorRole, Allow},
		{"other role", "client-user", models.CreatorRole, Redirect},
		{"client view", "client-user", models.ClientRole, Allow},
		{"profile lookup fails", "ghost", models.CreatorRole, Redirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Decide(context.Background(), tt.userID, tt.required); got != tt.want {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGate_RequireRole(t *testing.T) {
	g := newTestGate(staticResolver(map[string]models.Role{
		"client-user":  models.ClientRole,
		"creator-user": models.CreatorRole,
	}))

	tests := []struct {
		name       string
		userID     string
		wantStatus int
		wantCalled bool
	}{
		{"anonymous is redirected", "", http.StatusSeeOther, false},
		{"client is redirected", "client-user", http.StatusSeeOther, false},
		{"creator passes", "creator-user", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			handler := g.RequireRole(models.CreatorRole, "/api/dashboard")(next)

			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			if tt.userID != "" {
				req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: tt.userID}))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusSeeOther && rec.Header().Get("Location") != "/api/dashboard" {
				t.Errorf("unexpected location %q", rec.Header().Get("Location"))
			}
		})
	}
}

func TestCachedResolver(t *testing.T) {
	calls := 0
	inner := RoleResolverFunc(func(ctx context.Context, userID string) (models.Role, error) {
		calls++
		return models.ClientRole, nil
	})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewCachedResolver(inner, time.Minute)
	r.Now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if role, err := r.ResolveRole(context.Background(), "u1"); err != nil || role != models.ClientRole {
			t.Fatalf("resolve: %s, %v", role, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one lookup, got %d", calls)
	}

	now = now.Add(2 * time.Minute)
	_, _ = r.ResolveRole(context.Background(), "u1")
	if calls != 2 {
		t.Errorf("expected lookup after expiry, got %d", calls)
	}

	r.Invalidate("u1")
	_, _ = r.ResolveRole(context.Background(), "u1")
	if calls != 3 {
		t.Errorf("expected lookup after invalidation, got %d", calls)
	}
}

func TestCachedResolver_DoesNotCacheErrors(t *testing.T) {
	calls := 0
	inner := RoleResolverFunc(func(ctx context.Context, userID string) (models.Role, error) {
		calls++
		if calls == 1 {
			return "", errors.New("connection refused")
		}
		return models.CreatorRole, nil
	})
	r := NewCachedResolver(inner, time.Minute)

	if _, err := r.ResolveRole(context.Background(), "u1"); err == nil {
		t.Fatal("expected first lookup to fail")
	}
	role, err := r.ResolveRole(context.Background(), "u1")
	if err != nil || role != models.CreatorRole {
		t.Fatalf("expected creator role on retry, got %s, %v", role, err)
	}
}

func TestIsOwner(t *testing.T) {
	job := models.Job{ClientID: "p1"}
	if !IsOwner("p1", job) {
		t.Error("expected owner")
	}
	if IsOwner("p2", job) {
		t.Error("expected non-owner")
	}
	if IsOwner("", models.Job{}) {
		t.Error("empty profile must never own a resource")
	}
}
