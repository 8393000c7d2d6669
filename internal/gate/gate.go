package gate

import (
	"context"
	"log"
	"net/http"

	"github.com/senyabanana/creator-marketplace/internal/auth"
	"github.com/senyabanana/creator-marketplace/internal/models"
)

// Decision - итог проверки доступа к представлению.
type Decision int

const (
	Redirect Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect"
}

// Gate пускает в представление только пользователей с нужной ролью.
// Любая неопределенность, включая ошибку чтения профиля, ведет к перенаправлению.
type Gate struct {
	Resolver RoleResolver
	Logger   *log.Logger
}

// NewGate создает новый экземпляр Gate.
func NewGate(resolver RoleResolver, logger *log.Logger) *Gate {
	return &Gate{Resolver: resolver, Logger: logger}
}

// Decide решает, может ли пользователь userID открыть представление для роли required.
func (g *Gate) Decide(ctx context.Context, userID string, required models.Role) Decision {
	if userID == "" {
		return Redirect
	}
	role, err := g.Resolver.ResolveRole(ctx, userID)
	if err != nil {
		g.Logger.Printf("gate: failed to resolve role for user %s: %v", userID, err)
		return Redirect
	}
	if role != required {
		return Redirect
	}
	return Allow
}

// RequireRole возвращает middleware, которое перенаправляет на redirectTo (303)
// всех, кроме пользователей с ролью role. Обработчик при этом не вызывается.
func (g *Gate) RequireRole(role models.Role, redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := auth.PrincipalFromContext(r.Context())
			if g.Decide(r.Context(), principal.UserID, role) != Allow {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Ownable - ресурс, принадлежащий профилю.
type Ownable interface {
	GetOwnerID() string
}

// IsOwner проверяет, что ресурс принадлежит профилю profileID.
func IsOwner(profileID string, resource Ownable) bool {
	return profileID != "" && resource.GetOwnerID() == profileID
}
