package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToOwner map[string]string
	err          error
}

func (r *testResolver) ResolveOwner(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	owner, ok := r.tokenToOwner[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return owner, nil
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToOwner: map[string]string{"token": "owner1"}}

	handler := AuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := OwnerFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "owner1", ownerID)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	resolver := &testResolver{err: errors.New("invalid")}

	handler := AuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := AuthMiddleware(&testResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	resolver := &testResolver{tokenToOwner: map[string]string{"token": "owner1"}}

	var seen string
	var found bool
	handler := OptionalAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, found = OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		owner  string
		found  bool
	}{
		{name: "valid", header: "Bearer token", owner: "owner1", found: true},
		{name: "invalid", header: "Bearer nope"},
		{name: "anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen, found = "", false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tc.found, found)
			require.Equal(t, tc.owner, seen)
		})
	}
}

func TestKeyResolver(t *testing.T) {
	resolver := NewKeyResolver(map[string]string{HashToken("secret"): "owner1"})

	owner, err := resolver.ResolveOwner(context.Background(), "secret")
	require.NoError(t, err)
	require.Equal(t, "owner1", owner)

	_, err = resolver.ResolveOwner(context.Background(), "other")
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Len(t, HashToken("secret"), 64)
}
