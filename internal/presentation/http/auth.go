package httppresentation

import (
	"context"
	"net/http"
	"strings"

	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/logctx"
)

type sessionKey struct{}

// requireSession resolves the bearer token into a Session and binds the
// username onto the request logger.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.writeDomainError(w, r, domacct.ErrNoSession)
			return
		}
		session, err := h.tokens.Parse(r.Context(), token)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		ctx, _ = logctx.Enrich(ctx, h.log, observability.F("username", session.Username))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) domacct.Session {
	s, _ := ctx.Value(sessionKey{}).(domacct.Session)
	return s
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "bearer "
	v := r.Header.Get("Authorization")
	if len(v) <= len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(v[len(prefix):])
	return token, token != ""
}
