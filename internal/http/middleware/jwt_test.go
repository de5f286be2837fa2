package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rtr_earnings/internal/service"

	"github.com/gin-gonic/gin"
)

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", JWT(), func(c *gin.Context) {
		uid, _ := c.Get("user_id")
		c.JSON(200, gin.H{"user_id": uid})
	})
	r.GET("/admin", JWT(), AdminOnly(), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	service.InitJWTWithSecret("test-secret")
	r := authTestRouter()

	if w := doGet(t, r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	service.InitJWTWithSecret("test-secret")
	r := authTestRouter()

	token, err := service.GenerateJWT(7, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if w := doGet(t, r, "/me", token); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}

func TestJWTMiddleware_GarbageToken(t *testing.T) {
	service.InitJWTWithSecret("test-secret")
	r := authTestRouter()

	if w := doGet(t, r, "/me", "not-a-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	service.InitJWTWithSecret("test-secret")
	r := authTestRouter()

	userToken, err := service.GenerateJWT(7, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	adminToken, err := service.GenerateJWT(1, true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if w := doGet(t, r, "/admin", userToken); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	if w := doGet(t, r, "/admin", adminToken); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}
