package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const baseURL = "http://localhost:8080"

// These scenarios run against a live server started with config/local.yaml
// and an applied schema.

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type CreateOrderResponse struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"orderId"`
}

type UpdateStatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// signupAndLogin registers the account (ignoring "already registered") and
// returns a fresh token.
func signupAndLogin(t *testing.T, name, email, password string) string {
	signupBody := []byte(`{"name": "` + name + `", "email": "` + email + `", "password": "` + password + `"}`)
	resp, err := http.Post(baseURL+"/api/auth/signup", "application/json", bytes.NewBuffer(signupBody))
	assert.NoError(t, err, "Signup request should not error")
	resp.Body.Close()

	loginBody := []byte(`{"email": "` + email + `", "password": "` + password + `"}`)
	resp, err = http.Post(baseURL+"/api/auth/login", "application/json", bytes.NewBuffer(loginBody))
	assert.NoError(t, err, "Login request should not error")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid login")

	var loginResp LoginResponse
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err, "Decoding login response should succeed")
	assert.NotEmpty(t, loginResp.Token, "Token should not be empty")
	return loginResp.Token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	assert.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	return resp
}

func placeOrder(t *testing.T, token string) int64 {
	order := map[string]any{
		"user_id": 1,
		"items": []map[string]any{
			{"product_id": 1, "name": "wool runner", "price": 10.0, "quantity": 2},
		},
		"total": 20.0,
		"shipping": map[string]any{
			"name": "Test Buyer", "address": "1 Main St", "city": "Pune",
			"pincode": "411001", "phone": "5550001",
		},
		"payment": "COD",
	}
	resp := doJSON(t, "POST", baseURL+"/api/orders", token, order)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for a valid checkout")

	var created CreateOrderResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Success)
	assert.NotZero(t, created.OrderID)
	return created.OrderID
}

func TestLogin(t *testing.T) {
	token := signupAndLogin(t, "Test User", "testuser@example.com", "testpass123")
	assert.NotEmpty(t, token, "token should be obtained")
}

func TestLoginInvalidPassword(t *testing.T) {
	_ = signupAndLogin(t, "Test User", "testuser@example.com", "testpass123")

	loginBody := []byte(`{"email": "testuser@example.com", "password": "wrongpass"}`)
	resp, err := http.Post(baseURL+"/api/auth/login", "application/json", bytes.NewBuffer(loginBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 for a wrong password")
}

func TestListOrdersUnauthorized(t *testing.T) {
	resp, err := http.Get(baseURL + "/api/orders")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 without a token")
}

func TestCheckoutAndFetch(t *testing.T) {
	token := signupAndLogin(t, "Buyer", "buyer@example.com", "testpass123")
	orderID := placeOrder(t, token)

	resp := doJSON(t, "GET", baseURL+"/api/orders", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))

	found := false
	for _, o := range orders {
		if o.ID == orderID {
			found = true
			assert.Equal(t, "Pending", o.Status, "a fresh order starts Pending")
		}
	}
	assert.True(t, found, "the placed order should be listed")
}

func TestCheckoutTotalMismatch(t *testing.T) {
	token := signupAndLogin(t, "Buyer", "buyer@example.com", "testpass123")

	order := map[string]any{
		"user_id": 1,
		"items": []map[string]any{
			{"product_id": 1, "name": "wool runner", "price": 10.0, "quantity": 2},
		},
		"total": 999.0,
		"shipping": map[string]any{
			"name": "Test Buyer", "address": "1 Main St", "city": "Pune",
			"pincode": "411001", "phone": "5550001",
		},
		"payment": "COD",
	}
	resp := doJSON(t, "POST", baseURL+"/api/orders", token, order)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 when the total disagrees with the items")
}

func TestOrderLifecycle(t *testing.T) {
	token := signupAndLogin(t, "Buyer", "buyer@example.com", "testpass123")
	orderID := placeOrder(t, token)
	url := baseURL + "/api/orders/" + strconv.FormatInt(orderID, 10) + "/status"

	for _, target := range []string{"Processing", "Shipped"} {
		resp := doJSON(t, "PUT", url, token, map[string]string{"status": target})
		var statusResp UpdateStatusResponse
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&statusResp))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for %s", target)
		assert.Equal(t, target, statusResp.Status)
	}

	// A second fulfill is refused without touching the order.
	resp := doJSON(t, "PUT", url, token, map[string]string{"status": "Shipped"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "expected 409 for a repeated fulfill")

	// Shipped -> Pending is not a lifecycle edge.
	resp = doJSON(t, "PUT", url, token, map[string]string{"status": "Pending"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "expected 409 for a backwards transition")

	resp = doJSON(t, "PUT", url, token, map[string]string{"status": "Delivered"})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for delivery confirmation")

	// Delivered is terminal, even cancellation is refused.
	resp = doJSON(t, "PUT", url, token, map[string]string{"status": "Cancelled"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "expected 409 when cancelling a delivered order")
}

func TestStatusUnknownOrder(t *testing.T) {
	token := signupAndLogin(t, "Buyer", "buyer@example.com", "testpass123")

	resp := doJSON(t, "PUT", baseURL+"/api/orders/999999/status", token, map[string]string{"status": "Processing"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for an unknown order")
}

func TestReservationRoundTrip(t *testing.T) {
	token := signupAndLogin(t, "Buyer", "buyer@example.com", "testpass123")
	orderID := placeOrder(t, token)
	url := baseURL + "/api/orders/" + strconv.FormatInt(orderID, 10) + "/reservation"

	reserve := map[string]any{
		"items": []map[string]any{
			{"product_id": 1, "name": "wool runner", "price": 10.0, "quantity": 1},
		},
		"until": time.Now().Add(2 * time.Hour).Format(time.RFC3339),
	}
	resp := doJSON(t, "PUT", url, token, reserve)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for a valid reservation")

	resp = doJSON(t, "GET", url, token, nil)
	var res struct {
		OrderID    int64     `json:"order_id"`
		ExpiryTime time.Time `json:"expiry_time"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, orderID, res.OrderID)
	assert.True(t, res.ExpiryTime.After(time.Now().Add(23*time.Hour)), "expiry should be pinned ~24h out")

	resp = doJSON(t, "DELETE", url, token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, "GET", url, token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 after clearing the hold")
}

func TestUsersForbiddenForPlainUser(t *testing.T) {
	token := signupAndLogin(t, "Plain User", "plainuser@example.com", "testpass123")

	resp := doJSON(t, "GET", baseURL+"/api/users", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "expected 403 for a non-admin on the users endpoint")
}
