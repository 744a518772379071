package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stridehq/challenge-api/internal/config"
	"github.com/stridehq/challenge-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*AuthHandler, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{})

	cfg := &config.Config{JWTSecret: "test-secret"}
	return NewAuthHandler(cfg, db), db
}

func createTestUser(t *testing.T, db *gorm.DB, discordID string) models.User {
	t.Helper()
	user := models.User{DiscordID: discordID, Username: "testuser"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestHandleMe(t *testing.T) {
	h, db := setupAuth(t)

	user := models.User{DiscordID: "12345", Username: "testuser", Email: "test@example.com", IsAdmin: true}
	db.Create(&user)

	token, err := h.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := &MeRequest{}
	req.Cookie = "auth_token=" + token
	res, err := h.HandleMe(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleMe failed: %v", err)
	}
	if res.Body.ID != user.ID || res.Body.Username != "testuser" || !res.Body.IsAdmin {
		t.Errorf("unexpected response body: %+v", res.Body)
	}
}

func TestHandleMeRejectsMissingToken(t *testing.T) {
	h, _ := setupAuth(t)

	req := &MeRequest{}
	req.Cookie = "other_cookie=value"
	if _, err := h.HandleMe(context.Background(), req); err == nil {
		t.Fatal("expected error for missing auth_token cookie")
	}
}

func TestAuthorizeParsesCookieHeader(t *testing.T) {
	h, db := setupAuth(t)

	user := models.User{DiscordID: "67890"}
	db.Create(&user)
	token, err := h.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// auth_token mixed in with other cookies
	userID, err := h.Authorize(context.Background(), "session=abc; auth_token="+token+"; theme=dark")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected user id %d, got %d", user.ID, userID)
	}
}

func TestAuthorizeRejectsInvalidToken(t *testing.T) {
	h, _ := setupAuth(t)

	if _, err := h.Authorize(context.Background(), "auth_token=not-a-jwt"); err == nil {
		t.Fatal("expected error for invalid token")
	}

	// Token signed with a different secret
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uint(1),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forged, _ := other.SignedString([]byte("wrong-secret"))
	if _, err := h.Authorize(context.Background(), "auth_token="+forged); err == nil {
		t.Fatal("expected error for forged token")
	}
}

func TestAuthorizeRejectsExpiredToken(t *testing.T) {
	h, _ := setupAuth(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uint(1),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, _ := expired.SignedString([]byte("test-secret"))
	if _, err := h.Authorize(context.Background(), "auth_token="+tokenString); err == nil {
		t.Fatal("expected error for expired token")
	}
}
