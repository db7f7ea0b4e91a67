package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/utils"
)

const secret = "test-secret"

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
	id := uuid.New()
	tok, err := utils.NewAccessToken(secret, id, "ana", "Cliente", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c, rec := newContext(http.MethodGet, "/auth/me")
	c.Request().Header.Set(echo.HeaderAuthorization, "bearer "+tok.Token)
	if err := JWTAuth(secret)(ok)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got, found := UserID(c)
	if !found || got != id || Role(c) != "Cliente" || c.Get(CtxUsername) != "ana" {
		t.Fatalf("identity not stored: %v %v %q", got, found, Role(c))
	}

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-jwt",
	} {
		c, rec := newContext(http.MethodGet, "/auth/me")
		if header != "" {
			c.Request().Header.Set(echo.HeaderAuthorization, header)
		}
		_ = JWTAuth(secret)(ok)(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole("Administrador")

	c, rec := newContext(http.MethodPost, "/habitaciones")
	c.Set(CtxRole, "Cliente")
	_ = guard(ok)(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("client should be forbidden, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodPost, "/habitaciones")
	c.Set(CtxRole, "Administrador")
	_ = guard(ok)(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin should pass, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodPost, "/habitaciones")
	_ = guard(ok)(c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous should be forbidden, got %d", rec.Code)
	}
}

func TestCacheKeyDependsOnGroupQueryUserAndParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query_user"}
	key := func(target, user, param string) string {
		c, _ := newContext(http.MethodGet, target)
		c.SetPath("/habitaciones/:id")
		c.SetParamNames("id")
		c.SetParamValues(param)
		if user != "" {
			c.Set(CtxUserID, user)
		}
		return cacheKeyFrom(cfg, "habitaciones", c)
	}
	base := key("/habitaciones/1?skip=0", "u1", "1")
	if !strings.HasPrefix(base, "cache:habitaciones:") {
		t.Fatalf("unexpected key %q", base)
	}
	if base != key("/habitaciones/1?skip=0", "u1", "1") {
		t.Fatal("key must be stable")
	}
	for name, other := range map[string]string{
		"query": key("/habitaciones/1?skip=5", "u1", "1"),
		"user":  key("/habitaciones/1?skip=0", "u2", "1"),
		"param": key("/habitaciones/2?skip=0", "u1", "2"),
	} {
		if other == base {
			t.Fatalf("%s should change the key", name)
		}
	}
	if groupPattern("cache", "habitaciones") != "cache:habitaciones:*" {
		t.Fatal("pattern must match keys of the group")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, body, valid := decodePayload(bs)
	if !valid || status != 200 || gotHdr.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
		t.Fatalf("decode mismatch: %v %d %v %q", valid, status, gotHdr, body)
	}
	if _, _, _, valid := decodePayload([]byte{0, 0, 0}); valid {
		t.Fatal("short payload must be rejected")
	}
	if _, _, _, valid := decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0}); valid {
		t.Fatal("header length past the end must be rejected")
	}
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: 200, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	if cw.buf.String() != "abcd" || cw.size != 6 || rec.Body.String() != "abcdef" {
		t.Fatalf("buf=%q size=%d client=%q", cw.buf.String(), cw.size, rec.Body.String())
	}
}

func TestRedisMiddlewaresPassThroughWithoutClient(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cacheCfg := config.CacheConfig{Enabled: true, Invalidate: true, Methods: map[string]bool{"GET": true}}
	rlCfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second}

	for name, mw := range map[string]echo.MiddlewareFunc{
		"cache":      NewRedisCache(cacheCfg, nil, "habitaciones"),
		"invalidate": InvalidateOnWrite(cacheCfg, nil, log, "habitaciones"),
		"ratelimit":  NewTokenBucket(rlCfg, nil, log),
	} {
		c, rec := newContext(http.MethodGet, "/habitaciones")
		if err := mw(ok)(c); err != nil || rec.Code != http.StatusOK {
			t.Fatalf("%s: code=%d err=%v", name, rec.Code, err)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/reservas")
	c.SetPath("/reservas")
	c.Request().RemoteAddr = "10.0.0.1:1234"
	cfg := config.RateLimitConfig{Prefix: "rl"}
	if got := buildRateKey(cfg, c); got != "rl:ip:10.0.0.1:user:anon:route:GET /reservas" {
		t.Fatalf("unexpected key %q", got)
	}
	c.Set(CtxUserID, "u1")
	cfg.KeyStrategy = "user"
	if got := buildRateKey(cfg, c); got != "rl:user:u1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRequestLogRecordsStatus(t *testing.T) {
	var sb strings.Builder
	log := slog.New(slog.NewJSONHandler(&sb, nil))
	c, _ := newContext(http.MethodGet, "/nada")
	fail := func(echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") }
	if err := RequestLog(log)(fail)(c); err != nil {
		t.Fatalf("middleware must swallow handled errors: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, `"status":404`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}
