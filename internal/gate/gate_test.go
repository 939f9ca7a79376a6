package gate_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardgate/wardgate/internal/gate"
	"github.com/wardgate/wardgate/internal/shared"
	"github.com/wardgate/wardgate/internal/token"
	_ "github.com/wardgate/wardgate/testing"
)

const cookieName = "wardgate_session"

func newGate(t *testing.T) (*gate.Gate, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)
	g := gate.New(codec, cookieName,
		[]string{"/auth/login", "/auth/register"},
		[]string{"/healthz"},
		nil)
	return g, codec
}

func passThrough() (http.Handler, *bool) {
	reached := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}), &reached
}

func validToken(t *testing.T, codec *token.Codec) string {
	t.Helper()
	raw, err := codec.Encode(shared.Identity{
		ID:    5,
		Email: "john.doe@hospital.dev",
		Roles: []string{"nurse"},
	})
	require.NoError(t, err)
	return raw
}

func serve(g *gate.Gate, next http.Handler, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: tok})
	}
	res := httptest.NewRecorder()
	g.Middleware(next).ServeHTTP(res, req)
	return res
}

func TestAnonymousOnProtectedPathRedirectsToLogin(t *testing.T) {
	g, _ := newGate(t)
	next, reached := passThrough()

	res := serve(g, next, "/dashboard", "")

	assert.False(t, *reached)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, gate.LoginPath, res.Header().Get("Location"))
}

func TestAuthenticatedOnPublicPathRedirectsHome(t *testing.T) {
	g, codec := newGate(t)
	next, reached := passThrough()

	res := serve(g, next, "/auth/login", validToken(t, codec))

	assert.False(t, *reached)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, gate.HomePath, res.Header().Get("Location"))
}

func TestAnonymousOnPublicPathPassesThrough(t *testing.T) {
	g, _ := newGate(t)
	next, reached := passThrough()

	res := serve(g, next, "/auth/login", "")

	assert.True(t, *reached)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestAuthenticatedOnProtectedPathPassesThroughWithIdentity(t *testing.T) {
	g, codec := newGate(t)

	var got *shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	res := serve(g, next, "/dashboard", validToken(t, codec))

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, []string{"nurse"}, got.Roles)
}

func TestInvalidTokenIsTreatedAsAnonymous(t *testing.T) {
	g, _ := newGate(t)
	next, reached := passThrough()

	res := serve(g, next, "/dashboard", "garbage.token.value")

	assert.False(t, *reached)
	assert.Equal(t, gate.LoginPath, res.Header().Get("Location"))
}

func TestExpiredTokenIsTreatedAsAnonymous(t *testing.T) {
	codec, err := token.NewCodec("test-secret", time.Hour,
		token.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	require.NoError(t, err)
	raw, err := codec.Encode(shared.Identity{ID: 5})
	require.NoError(t, err)

	g, _ := newGate(t)
	next, reached := passThrough()
	res := serve(g, next, "/dashboard", raw)

	assert.False(t, *reached)
	assert.Equal(t, gate.LoginPath, res.Header().Get("Location"))
}

func TestSkippedPathsBypassTheGate(t *testing.T) {
	g, _ := newGate(t)
	next, reached := passThrough()

	res := serve(g, next, "/healthz", "")

	assert.True(t, *reached)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestPublicMatchIsPrefixBased(t *testing.T) {
	g, _ := newGate(t)
	next, reached := passThrough()

	// A sub-path of a public prefix stays public.
	res := serve(g, next, "/auth/login/help", "")
	assert.True(t, *reached)
	assert.Equal(t, http.StatusOK, res.Code)

	// Similar-looking but distinct path stays protected.
	*reached = false
	res = serve(g, next, "/auth/loginx", "")
	assert.False(t, *reached)
	assert.Equal(t, gate.LoginPath, res.Header().Get("Location"))
}
