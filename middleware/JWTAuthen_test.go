package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AccessTokenMiddleware(), func(c *gin.Context) {
		c.JSON(200, gin.H{
			"userId": c.MustGet("userId"),
			"orgId":  c.MustGet("orgId"),
			"role":   c.MustGet("role"),
		})
	})
	return router
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAccessTokenMiddlewareValid(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "unit-test-secret")
	router := protectedRouter()

	token := signToken(t, "unit-test-secret", jwt.MapClaims{
		"userId": 7,
		"orgId":  "org-1",
		"role":   "employee",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAccessTokenMiddlewareMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "unit-test-secret")
	router := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestAccessTokenMiddlewareWrongKey(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "unit-test-secret")
	router := protectedRouter()

	token := signToken(t, "other-secret", jwt.MapClaims{
		"userId": 7,
		"orgId":  "org-1",
		"role":   "employee",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d", rec.Code)
	}
}

func TestAccessTokenMiddlewareExpired(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "unit-test-secret")
	router := protectedRouter()

	token := signToken(t, "unit-test-secret", jwt.MapClaims{
		"userId": 7,
		"orgId":  "org-1",
		"role":   "employee",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d", rec.Code)
	}
}

func TestAccessTokenMiddlewareMissingOrg(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "unit-test-secret")
	router := protectedRouter()

	token := signToken(t, "unit-test-secret", jwt.MapClaims{
		"userId": 7,
		"role":   "employee",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}
