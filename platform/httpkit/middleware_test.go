package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cadence_sync_backend/platform/apperr"
	"cadence_sync_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtCfg struct{ secret string }

func (c jwtCfg) GetJWTAccessSecret() string { return c.secret }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthEngine(cfg jwtCfg) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthRequired(cfg))
	r.GET("/whoami", func(c *gin.Context) {
		id, companyID, ok := MustGetCompany(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": id.UserID().String(), "company": companyID.String()})
	})
	return r
}

func TestAuthRequiredSetsCompany(t *testing.T) {
	cfg := jwtCfg{secret: "s3cret"}
	userID := uuid.New()
	companyID := uuid.New()
	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":       userID.String(),
		"type":      "access",
		"tenant_id": companyID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newAuthEngine(cfg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["company"] != companyID.String() || body["user"] != userID.String() {
		t.Fatalf("unexpected identity %v", body)
	}
}

func TestAuthRequiredRejectsMissingTenant(t *testing.T) {
	cfg := jwtCfg{secret: "s3cret"}
	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newAuthEngine(cfg).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsBadSignature(t *testing.T) {
	token := signToken(t, "other", jwt.MapClaims{"sub": uuid.NewString(), "type": "access"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newAuthEngine(jwtCfg{secret: "s3cret"}).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSyncRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewSyncRateLimiter(0.001, 2, logger.Nop()).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestSyncRateLimiterKeysByCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewSyncRateLimiter(0.001, 1, logger.Nop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-Company"); raw != "" {
			c.Set(ContextTenantIDKey, uuid.MustParse(raw))
		}
		c.Next()
	})
	r.Use(limiter.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(company string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Test-Company", company)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	a, b := uuid.NewString(), uuid.NewString()
	if call(a) != http.StatusNoContent || call(b) != http.StatusNoContent {
		t.Fatalf("first request of each company should pass")
	}
	if call(a) != http.StatusTooManyRequests {
		t.Fatalf("second request of company a should be limited")
	}
}

func TestHandleErrorHidesUntypedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/typed", func(c *gin.Context) { HandleError(c, apperr.Noop("already same status")) })
	r.GET("/raw", func(c *gin.Context) { HandleError(c, http.ErrHandlerTimeout) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/typed", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for noop, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))
	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusInternalServerError || body.Error != "internal error" {
		t.Fatalf("expected masked 500, got %d %q", rec.Code, body.Error)
	}
}
