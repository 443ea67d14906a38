package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/memory"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type gateFixture struct {
	engine *gin.Engine
	jwt    *helpers.JWTManager
	store  *memory.Store
	alice  *entity.User
	now    time.Time
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	ctx := context.Background()
	f := &gateFixture{store: memory.NewStore(), now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, f.store.Roles().EnsureDefaults(ctx))
	role, err := f.store.Roles().GetByName(ctx, entity.RoleUser)
	require.NoError(t, err)
	f.alice = &entity.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Roles: []entity.Role{*role}}
	require.NoError(t, f.store.Users().Create(ctx, f.alice))

	f.jwt, err = helpers.NewJWTManager("test-secret", time.Hour, helpers.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)

	policy := Policy{
		{Method: http.MethodGet, Path: "/api/private"}: {entity.RoleUser, entity.RoleAdmin},
		{Method: http.MethodGet, Path: "/api/admin"}:   {entity.RoleAdmin},
	}
	f.engine = gin.New()
	api := f.engine.Group("/api")
	api.Use(RequestID(), Gate(f.jwt, f.store.Users(), helpers.NopLogger()), Authorize(policy))
	whoami := func(c *gin.Context) {
		p := PrincipalFrom(c)
		fromCtx := entity.PrincipalFrom(c.Request.Context())
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": p.Username, "ctx_user": fromCtx.Username})
	}
	api.GET("/private", whoami)
	api.GET("/admin", whoami)
	api.GET("/public", whoami)
	return f
}

func (f *gateFixture) do(t *testing.T, path, authz string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func (f *gateFixture) token(t *testing.T) string {
	t.Helper()
	tok, _, err := f.jwt.Mint(f.alice.Principal())
	require.NoError(t, err)
	return tok
}

func TestGate_ValidTokenAttachesPrincipal(t *testing.T) {
	f := newGateFixture(t)
	w, body := f.do(t, "/api/private", "Bearer "+f.token(t))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body["user"])
	assert.Equal(t, "alice", body["ctx_user"])
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestGate_PublicRouteStaysAnonymousOnBadToken(t *testing.T) {
	f := newGateFixture(t)
	for _, authz := range []string{"", "Bearer", "Basic abc", "Bearer not.a.jwt"} {
		w, body := f.do(t, "/api/public", authz)
		assert.Equal(t, http.StatusOK, w.Code, authz)
		assert.Equal(t, true, body["anonymous"], authz)
	}
}

func TestAuthorize_RejectsWithoutValidToken(t *testing.T) {
	f := newGateFixture(t)
	tok := f.token(t)

	w, body := f.do(t, "/api/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])

	tampered := tok[:len(tok)-2] + "xx"
	w, _ = f.do(t, "/api/private", "Bearer "+tampered)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.now = f.now.Add(time.Hour)
	w, _ = f.do(t, "/api/private", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorize_RequiresListedRole(t *testing.T) {
	f := newGateFixture(t)
	tok := f.token(t)

	w, _ := f.do(t, "/api/admin", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin, err := f.store.Roles().GetByName(context.Background(), entity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, f.store.Users().AddRole(context.Background(), f.alice.ID, *admin))

	// roles are re-read per request, the old token now passes
	w, _ = f.do(t, "/api/admin", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	f := newGateFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/public", nil)
	req.Header.Set(HeaderRequestID, "9b2f5a34-3f9a-4c1b-9d1e-2a7c4e0f1b11")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, "9b2f5a34-3f9a-4c1b-9d1e-2a7c4e0f1b11", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/api/public", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
}

func TestRealIP_Priority(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIPKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())

	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.2", w.Body.String())
}

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	cases := map[string]bool{"127.0.0.1": true, "10.1.2.3": true, "192.168.0.9": true, "8.8.8.8": false, "garbage": false}
	for ip, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(CtxRealIPKey, ip)
		assert.Equal(t, want, allow(c), ip)
	}
}
