package auth

import (
	"context"
	"net/http"

	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

// AgentChecker reports whether an agent account may still act.
type AgentChecker interface {
	IsAgentActive(ctx context.Context, id uint) (bool, error)
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// FromContext returns the principal set by Require.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(*Principal)
	return p, ok && p != nil
}

// Require rejects requests without a valid session of the given role.
// Agent sessions are additionally checked against checker so a suspended
// agent loses access before the token expires.
func (s *Sessions) Require(role Role, checker AgentChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			raw := tokenFrom(r, role)
			if raw == "" {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			p, err := s.Verify(raw)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if p.Role != role {
				utils.WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}
			if role == RoleAgent && checker != nil {
				active, err := checker.IsAgentActive(r.Context(), p.ID)
				if err != nil {
					logrus.WithError(err).WithField("agent_id", p.ID).Error("agent status lookup failed")
					utils.WriteError(w, http.StatusInternalServerError, "Failed to verify session")
					return
				}
				if !active {
					utils.WriteError(w, http.StatusForbidden, "Agent account is not active")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
