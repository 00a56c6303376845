package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/token"
)

// CreatedByRef mirrors the structured creator reference carried in the claims
type CreatedByRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Actor is the authenticated identity attached to the request context
type Actor struct {
	ID           uuid.UUID    `json:"-"`
	Name         string       `json:"name,omitempty"`
	Role         string       `json:"role,omitempty"`
	Email        string       `json:"email,omitempty"`
	PrivilegedID string       `json:"privilegedId,omitempty"`
	CreatedBy    CreatedByRef `json:"createdBy,omitempty"`
}

func (a Actor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("actor", a.ID.String()),
		slog.String("role", a.Role),
	)
}

// contextKey is a value for use with context.WithValue. It's used as a
// pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "openshelf context value " + k.name
}

var actorKey = &contextKey{"Actor"}

// NewJWTAuth creates the jwtauth verifier for the session secret
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// TokenFromSessionCookie extracts the credential from the session cookie
func TokenFromSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(token.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Verifier checks the session credential from the cookie or the
// Authorization header
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, TokenFromSessionCookie, jwtauth.TokenFromHeader)
}

// Authenticator rejects requests whose credential is missing or invalid
func Authenticator(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Authenticator(ja)
}

func loadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// ActorMiddleware decodes the verified claims into an Actor and attaches it
// to the request context
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, "missing or invalid session credential", http.StatusUnauthorized)
			return
		}

		extraRaw, ok := claims["extra_claims"].(map[string]interface{})
		if !ok {
			http.Error(w, "malformed session claims", http.StatusUnauthorized)
			return
		}

		actor := new(Actor)
		if err := loadFromMap(extraRaw, actor); err != nil {
			slog.Error("Failed to parse session claims", "err", err)
			http.Error(w, "malformed session claims", http.StatusUnauthorized)
			return
		}

		idStr, _ := extraRaw["id"].(string)
		actorID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "malformed session claims", http.StatusUnauthorized)
			return
		}
		actor.ID = actorID

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext retrieves the actor attached by ActorMiddleware
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*Actor)
	return actor, ok
}
