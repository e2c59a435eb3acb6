package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type ownerKey struct{}

// OwnerResolver resolves an owner ID from a bearer token.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, token string) (string, error)
}

// OwnerFromContext returns the owner ID from context, if present.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			ownerID, err := resolver.ResolveOwner(r.Context(), token)
			if err != nil || ownerID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey{}, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the owner of a valid bearer token and lets every
// other request through anonymously.
func OptionalAuth(resolver OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if ownerID, err := resolver.ResolveOwner(r.Context(), token); err == nil && ownerID != "" {
					r = r.WithContext(context.WithValue(r.Context(), ownerKey{}, ownerID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// KeyResolver resolves tokens against a fixed set of sha256 token hashes.
type KeyResolver struct {
	owners map[string]string
}

// NewKeyResolver creates a resolver from hex sha256 token hashes to owner IDs.
func NewKeyResolver(hashToOwner map[string]string) *KeyResolver {
	owners := make(map[string]string, len(hashToOwner))
	for hash, owner := range hashToOwner {
		owners[strings.ToLower(hash)] = owner
	}
	return &KeyResolver{owners: owners}
}

func (r *KeyResolver) ResolveOwner(_ context.Context, token string) (string, error) {
	owner, ok := r.owners[HashToken(token)]
	if !ok || owner == "" {
		return "", ErrUnauthorized
	}
	return owner, nil
}

// HashToken returns the hex sha256 of a token, the form keys are configured in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
