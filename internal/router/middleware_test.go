package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{"wildcard", "https://merchant.example.com", []string{"*"}, false, "*"},
		{"wildcard with credentials echoes origin", "https://merchant.example.com", []string{"*"}, true, "https://merchant.example.com"},
		{"allow list match", "https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false, "https://a.example.com"},
		{"allow list miss", "https://evil.example.com", []string{"https://a.example.com"}, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestRequestIDMiddlewarePropagatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-abc")
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "req-abc" {
		t.Fatalf("header request id want req-abc got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-abc" {
		t.Fatalf("context request id want req-abc got %s", resp["request_id"])
	}
}

func TestRequestIDMiddlewareGeneratesWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("request id should be generated when header is absent")
	}
}

func TestJWTAuthMiddlewareUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 未配置密钥或仓储时一律拒绝，不放行管理接口
	for _, secret := range []string{"", "some-secret"} {
		r := gin.New()
		r.Use(JWTAuthMiddleware(secret, nil))
		r.GET("/admin/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("envelope should stay HTTP 200, got %d", w.Code)
		}
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		if resp.StatusCode != 401 {
			t.Fatalf("status_code want 401 got %d", resp.StatusCode)
		}
	}
}
