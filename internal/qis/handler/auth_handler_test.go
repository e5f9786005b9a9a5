package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/fair-qms/internal/config"
	"github.com/bitfantasy/fair-qms/internal/qis/entity"
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/bitfantasy/fair-qms/internal/qis/testutil"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.Issuer = "fair-qms"
	cfg.JWT.AccessTokenExpire = time.Hour
	cfg.JWT.RefreshTokenExpire = 24 * time.Hour

	redisAddr := config.GetEnvOrDefault("REDIS_HOST", "127.0.0.1") + ":" + config.GetEnvOrDefault("REDIS_PORT", "6379")
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})

	repos := repository.NewRepositories(db)
	authSvc := service.NewAuthService(repos.User, rdb, cfg)
	authHandler := NewAuthHandler(authSvc)

	router := testutil.SetupRouter()
	router.POST("/api/users/login", authHandler.Login)
	router.POST("/api/users/refresh", authHandler.Refresh)

	// Authenticated probe route to verify issued tokens
	api := testutil.AuthGroup(router, "/api")
	api.GET("/whoami", func(c *gin.Context) {
		c.JSON(200, gin.H{"name": GetUserName(c), "role": string(GetUserRole(c))})
	})

	return router, db
}

func TestLoginSuccess(t *testing.T) {
	router, db := setupAuthTest(t)
	testutil.SeedTestUser(t, db, "u-op-001", "operator1", "Ramesh Kumar", inspection.RoleOperator, "pass123")

	w := testutil.DoRequest(router, "POST", "/api/users/login?username=operator1&password=pass123", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["name"] != "Ramesh Kumar" {
		t.Errorf("Expected name 'Ramesh Kumar', got %v", resp["name"])
	}
	if resp["role"] != "operator" {
		t.Errorf("Expected role 'operator', got %v", resp["role"])
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("Expected non-empty access token")
	}
	if refresh, _ := resp["refresh_token"].(string); refresh == "" {
		t.Error("Expected non-empty refresh token")
	}

	// The issued token must pass JWT auth and carry identity claims
	w = testutil.DoRequest(router, "GET", "/api/whoami", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected issued token to authenticate, got %d: %s", w.Code, w.Body.String())
	}
	who := testutil.ParseResponse(w)
	if who["name"] != "Ramesh Kumar" || who["role"] != "operator" {
		t.Errorf("Expected identity claims in token, got %v", who)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, db := setupAuthTest(t)
	testutil.SeedTestUser(t, db, "u-op-002", "operator2", "Op Two", inspection.RoleOperator, "correct")

	w := testutil.DoRequest(router, "POST", "/api/users/login?username=operator2&password=wrong", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginUnknownUser(t *testing.T) {
	router, _ := setupAuthTest(t)

	w := testutil.DoRequest(router, "POST", "/api/users/login?username=nobody&password=pass", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for unknown user, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginDisabledUser(t *testing.T) {
	router, db := setupAuthTest(t)
	u := testutil.SeedTestUser(t, db, "u-op-003", "operator3", "Op Three", inspection.RoleOperator, "pass123")
	db.Model(u).Update("status", entity.UserStatusDisabled)

	w := testutil.DoRequest(router, "POST", "/api/users/login?username=operator3&password=pass123", nil, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for disabled user, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginMissingParams(t *testing.T) {
	router, _ := setupAuthTest(t)

	w := testutil.DoRequest(router, "POST", "/api/users/login?username=onlyuser", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	router, _ := setupAuthTest(t)

	w := testutil.DoRequest(router, "POST", "/api/users/refresh", RefreshRequest{RefreshToken: "not-a-jwt"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for invalid refresh token, got %d: %s", w.Code, w.Body.String())
	}
}
