package routes

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/models"
)

func TestRegisterLoginMeFlow(t *testing.T) {
	server := newTestServer(t)

	resp := server.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"full_name": "Aicha Mint Mohamed",
		"email":     "Aicha@Example.com",
		"password":  "secret-password",
		"role":      "provider",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", resp.Code, resp.Body.String())
	}
	body := decode(t, resp)
	tokens, ok := body["tokens"].(map[string]interface{})
	if !ok || tokens["access_token"] == "" {
		t.Fatalf("register response misses tokens: %v", body)
	}

	// Email is stored lowercase.
	var user models.User
	if err := server.db.Where("email = ?", "aicha@example.com").First(&user).Error; err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.Role != models.RoleProvider {
		t.Fatalf("role not applied: %s", user.Role)
	}

	// Duplicate email conflicts.
	resp = server.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"full_name": "Someone Else",
		"email":     "AICHA@example.com",
		"password":  "another-password",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", resp.Code)
	}

	resp = server.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "aicha@example.com",
		"password": "secret-password",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}
	tokens = decode(t, resp)["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)

	resp = server.do(t, http.MethodGet, "/api/v1/auth/me", access, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("me: %d %s", resp.Code, resp.Body.String())
	}
	me := decode(t, resp)["user"].(map[string]interface{})
	if me["email"] != "aicha@example.com" {
		t.Fatalf("me returned wrong user: %v", me)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t)
	user, _ := server.createUserWithToken(t, models.RoleClient)

	resp := server.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    user.Email,
		"password": "wrong-password",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", resp.Code)
	}

	server.db.Model(user).Update("is_active", false)
	resp = server.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    user.Email,
		"password": "secret-password",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated login: %d", resp.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	server := newTestServer(t)

	if resp := server.do(t, http.MethodGet, "/api/v1/auth/me", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", resp.Code)
	}
	if resp := server.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", resp.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	server := newTestServer(t)
	user, _ := server.createUserWithToken(t, models.RoleClient)

	resp := server.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    user.Email,
		"password": "secret-password",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d", resp.Code)
	}
	tokens := decode(t, resp)["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)
	refresh := tokens["refresh_token"].(string)

	resp = server.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": refresh})
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", resp.Code, resp.Body.String())
	}

	resp = server.do(t, http.MethodPost, "/api/v1/auth/logout", access, gin.H{"refresh_token": refresh})
	if resp.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", resp.Code, resp.Body.String())
	}

	// The revoked token no longer refreshes.
	resp = server.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": refresh})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: %d", resp.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUserWithToken(t, models.RoleClient)

	resp := server.do(t, http.MethodPut, "/api/v1/auth/profile", token, gin.H{
		"full_name": "New Name",
		"phone":     "+22240000000",
		"city":      "Nouadhibou",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("update profile: %d %s", resp.Code, resp.Body.String())
	}

	var updated models.User
	server.db.First(&updated, user.ID)
	if updated.FullName != "New Name" || updated.City != "Nouadhibou" {
		t.Fatalf("profile not updated: %+v", updated)
	}
}
