package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ssth/ssth-inventory/internal/auth"
	"github.com/ssth/ssth-inventory/internal/shared"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims auth.Claims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) auth.Claims {
	return auth.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   sub,
			Audience:  jwtlib.ClaimStrings{"authenticated"},
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "buyer@ssth.local",
		Role:  "authenticated",
	}
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	id := uuid.New()
	v := auth.NewVerifier(secret, "", "authenticated")

	actor, err := v.Verify(sign(t, secret, validClaims(id.String())))
	require.NoError(t, err)
	require.Equal(t, id, actor.UserID)
	require.Equal(t, "buyer@ssth.local", actor.Email)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := auth.NewVerifier(secret, "", "authenticated")
	id := uuid.New().String()

	expired := validClaims(id)
	expired.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := validClaims(id)
	wrongAudience.Audience = jwtlib.ClaimStrings{"anon"}

	cases := map[string]string{
		"wrong secret":   sign(t, "other", validClaims(id)),
		"expired":        sign(t, secret, expired),
		"wrong audience": sign(t, secret, wrongAudience),
		"non uuid sub":   sign(t, secret, validClaims("admin")),
		"garbage":        "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, err := auth.BearerToken("Bearer abc.def")
	require.NoError(t, err)
	require.Equal(t, "abc.def", token)

	token, err = auth.BearerToken("bearer   xyz")
	require.NoError(t, err)
	require.Equal(t, "xyz", token)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		_, err := auth.BearerToken(header)
		require.ErrorIs(t, err, auth.ErrMissingToken, header)
	}
}

func TestMiddlewareRequireUser(t *testing.T) {
	id := uuid.New()
	mw := auth.Middleware{Verifier: auth.NewVerifier(secret, "", "authenticated")}

	var seen shared.Actor
	handler := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/import-items-excel", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/import-items-excel", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, secret, validClaims(id.String())))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, id, seen.UserID)
}
