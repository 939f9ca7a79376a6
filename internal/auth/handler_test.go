package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardgate/wardgate/internal/auth"
	"github.com/wardgate/wardgate/internal/rbac"
	"github.com/wardgate/wardgate/internal/token"
	_ "github.com/wardgate/wardgate/testing"
)

const testCookie = "wardgate_session"

func newTestHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)
	svc := auth.NewService(repo, stubResolver{grants: rbac.Grants{Roles: []string{"doctor"}}}, codec)
	return auth.NewHandler(discardLogger(), svc, testCookie, false), codec
}

func postLogin(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestLoginSuccessSetsTokenCookie(t *testing.T) {
	handler, codec := newTestHandler(t, newStubRepo(activeUser(t)))
	router := newRouter(handler)

	res := postLogin(t, router, `{"email":"susan.bones@hospital.dev","password":"DoctorPass123!"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.True(t, body.Success)

	cookie := findCookie(t, res, testCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	identity, err := codec.Decode(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.ID)
	assert.Equal(t, []string{"doctor"}, identity.Roles)
}

func TestLoginRejectsMalformedFields(t *testing.T) {
	handler, _ := newTestHandler(t, newStubRepo(activeUser(t)))
	router := newRouter(handler)

	res := postLogin(t, router, `{"email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "password")
	assert.Nil(t, findCookie(t, res, testCookie))
}

func TestLoginWrongPasswordIsGenericDenial(t *testing.T) {
	handler, _ := newTestHandler(t, newStubRepo(activeUser(t)))
	router := newRouter(handler)

	wrong := postLogin(t, router, `{"email":"susan.bones@hospital.dev","password":"WrongPass123!"}`)
	unknown := postLogin(t, router, `{"email":"nobody@hospital.dev","password":"DoctorPass123!"}`)

	// Same status and same body shape for both denial causes.
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	repo := newStubRepo(activeUser(t))
	handler, codec := newTestHandler(t, repo)
	router := newRouter(handler)

	login := postLogin(t, router, `{"email":"susan.bones@hospital.dev","password":"DoctorPass123!"}`)
	require.Equal(t, http.StatusOK, login.Code)
	session := findCookie(t, login, testCookie)
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(session)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	cleared := findCookie(t, res, testCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	jti, err := codec.TokenID(session.Value)
	require.NoError(t, err)
	assert.NotContains(t, repo.sessions, jti)
}

func findCookie(t *testing.T, res *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}
