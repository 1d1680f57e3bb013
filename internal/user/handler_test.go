package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pingliu/service-rental-go/internal/auth"
	"github.com/pingliu/service-rental-go/internal/upload"
	"github.com/pingliu/service-rental-go/internal/user/entity"
)

func newTestServer(t *testing.T, repo *fakeRepo) http.Handler {
	t.Helper()
	svc := NewService(repo, BcryptHasher{Cost: 4})
	tokens := auth.NewTokenService(auth.Config{Secret: []byte("test-secret"), TTL: time.Hour})
	uploads := upload.NewStorage(upload.Config{Dir: t.TempDir(), MaxBytes: 5 << 20})
	h := NewHandler(svc, tokens, uploads, zap.NewNop().Sugar())
	gate := auth.Middleware(tokens, svc, zap.NewNop().Sugar())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("POST /api/auth/logout", gate(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /api/user/info", gate(http.HandlerFunc(h.Info)))
	mux.Handle("PUT /api/user/info", gate(http.HandlerFunc(h.UpdateInfo)))
	mux.Handle("POST /api/user/avatar", gate(http.HandlerFunc(h.UploadAvatar)))
	return mux
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var e envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, rec.Code, e.Code, "envelope code mirrors HTTP status")
	return rec, e
}

func registerAlice(t *testing.T, h http.Handler) {
	t.Helper()
	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        "alice99",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"phone":           "13800000001",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func loginAlice(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, e := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account":  "13800000001",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var res LoginResult
	require.NoError(t, json.Unmarshal(e.Result, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestRegisterLoginInfoFlow(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeRepo())

	rec, e := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        "alice99",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"phone":           "13800000001",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	var created entity.Profile
	require.NoError(t, json.Unmarshal(e.Result, &created))
	assert.Equal(t, "alice99", created.Username)
	assert.Equal(t, entity.RoleUser, created.Role)
	assert.Equal(t, entity.StatusNormal, created.Status)
	assert.Equal(t, 600, created.SesameCredit)

	token := loginAlice(t, h)

	rec, e = doJSON(t, h, http.MethodGet, "/api/user/info", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	var profile entity.Profile
	require.NoError(t, json.Unmarshal(e.Result, &profile))
	assert.Equal(t, created.UserID, profile.UserID)
	assert.Equal(t, "alice99", profile.Username)
}

func TestRegister_DuplicateResponses(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeRepo())
	registerAlice(t, h)

	rec, e := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        "alice99",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"phone":           "13800000002",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, e.Message, "username")
	assert.NotContains(t, e.Message, "phone")

	rec, e = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":        "bob1234",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"phone":           "13800000001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, e.Message, "phone")
}

func TestLogin_FailureModes(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	h := newTestServer(t, repo)
	registerAlice(t, h)

	// unknown account: generic message, does not leak which field was tried
	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account":  "nobody1",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// wrong password
	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account":  "alice99",
		"password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// disabled account with the correct password is distinct: 403
	for _, u := range repo.users {
		u.Status = entity.StatusDisabled
	}
	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account":  "alice99",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateInfo_WrongOldPasswordLeavesProfileUntouched(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeRepo())
	registerAlice(t, h)
	token := loginAlice(t, h)

	rec, e := doJSON(t, h, http.MethodPut, "/api/user/info", token, map[string]string{
		"password":    "newpass1",
		"oldPassword": "wrong",
		"realName":    "Mallory",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, e.Message, "original password")

	rec, e = doJSON(t, h, http.MethodGet, "/api/user/info", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile entity.Profile
	require.NoError(t, json.Unmarshal(e.Result, &profile))
	assert.Equal(t, "alice99", profile.Username)
	assert.Empty(t, profile.RealName)

	// the original password still works
	loginAlice(t, h)
}

func TestUpdateInfo_PartialAndPasswordChange(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeRepo())
	registerAlice(t, h)
	token := loginAlice(t, h)

	rec, e := doJSON(t, h, http.MethodPut, "/api/user/info", token, map[string]string{
		"realName": "Alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var profile entity.Profile
	require.NoError(t, json.Unmarshal(e.Result, &profile))
	assert.Equal(t, "Alice", profile.RealName)
	assert.Equal(t, "alice99", profile.Username)

	rec, _ = doJSON(t, h, http.MethodPut, "/api/user/info", token, map[string]string{
		"password":        "newpass1",
		"oldPassword":     "secret1",
		"confirmPassword": "newpass1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account":  "alice99",
		"password": "newpass1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account":  "alice99",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeRepo())
	registerAlice(t, h)
	token := loginAlice(t, h)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// stateless: the token keeps working until expiry
	rec, _ = doJSON(t, h, http.MethodGet, "/api/user/info", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutes_RejectWithoutToken(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeRepo())
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/user/info"},
		{http.MethodPut, "/api/user/info"},
		{http.MethodPost, "/api/user/avatar"},
		{http.MethodPost, "/api/auth/logout"},
	} {
		rec, _ := doJSON(t, h, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}
