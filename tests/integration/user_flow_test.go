package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func TestUserLifecycle(t *testing.T) {
	baseURL := os.Getenv("INTEGRATION_BASE_URL")
	if baseURL == "" {
		t.Skip("INTEGRATION_BASE_URL not set; skipping integration test")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	username := fmt.Sprintf("it_%d", time.Now().UnixNano()%1e12)
	email := fmt.Sprintf("it_%d@example.com", time.Now().UnixNano())
	password := "Passw0rd1"

	// 1. Register
	registerReq := map[string]string{
		"email":    email,
		"password": password,
		"username": username,
	}
	registerResp, err := postJSON(client, baseURL+"/users/register", registerReq, "", http.StatusCreated)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, _ := registerResp["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}

	// 2. Login
	loginReq := map[string]string{"email": email, "password": password}
	loginResp, err := postJSON(client, baseURL+"/users/login", loginReq, "", http.StatusOK)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	token, _ = loginResp["token"].(string)
	user, _ := loginResp["user"].(map[string]any)
	userID, _ := user["id"].(string)
	if token == "" || userID == "" {
		t.Fatalf("login response incomplete: %v", loginResp)
	}

	// 3. Get own profile with the issued token
	profile, err := doJSON(client, http.MethodGet, baseURL+"/users/"+userID, nil, token, http.StatusOK)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if got, _ := profile["user"].(map[string]any); got["email"] != email {
		t.Fatalf("profile email mismatch: %v", got["email"])
	}

	// 4. Update profile
	updateReq := map[string]string{"gender": "prefer not to say"}
	if _, err := doJSON(client, http.MethodPut, baseURL+"/users/"+userID, updateReq, token, http.StatusOK); err != nil {
		t.Fatalf("update profile failed: %v", err)
	}

	// 5. Wrong password is a generic 401
	badLogin := map[string]string{"email": email, "password": "Wrong0000"}
	if _, err := postJSON(client, baseURL+"/users/login", badLogin, "", http.StatusUnauthorized); err != nil {
		t.Fatalf("wrong-password login: %v", err)
	}
}

func postJSON(client *http.Client, url string, body any, token string, expectedStatus int) (map[string]any, error) {
	return doJSON(client, http.MethodPost, url, body, token, expectedStatus)
}

func doJSON(client *http.Client, method, url string, body any, token string, expectedStatus int) (map[string]any, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != expectedStatus {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}
