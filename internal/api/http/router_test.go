package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httpapi "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-secret"
)

// newTestApp wires the full HTTP stack over the in-memory store, with the
// bootstrap admin already seeded. No Postgres, Redis or mailer involved.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()
	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
		MinPasswordLength:     6,
	}

	authService := service.NewAuthService(authCfg, store.Users())
	userService := service.NewUserService(authCfg, store.Users(), dispatcher)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets(),
		UserRepo:   store.Users(),
		Dispatcher: dispatcher,
	})
	if err := userService.EnsureAdmin(context.Background(), config.AdminConfig{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	app := fiber.New()
	httpapi.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		// List endpoints return arrays; wrap so callers can still index.
		if raw[0] == '[' {
			var items []any
			if err := json.Unmarshal(raw, &items); err != nil {
				t.Fatalf("%s %s: decode array: %v (%s)", method, path, err, raw)
			}
			decoded = map[string]any{"items": items}
		} else if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: decode: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode, decoded
}

func login(t *testing.T, app *fiber.App, path, email, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, path, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s as %s: status %d (%v)", path, email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", path, body)
	}
	return token
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	adminToken := login(t, app, "/admin/login", testAdminEmail, testAdminPassword)

	status, body := doJSON(t, app, http.MethodPost, "/admin/register", adminToken, map[string]string{
		"email":    "user@example.com",
		"password": "secret1",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status %d (%v)", status, body)
	}

	userToken := login(t, app, "/login", "user@example.com", "secret1")

	status, body = doJSON(t, app, http.MethodPost, "/tickets", userToken, map[string]string{
		"title":       "Screen flickers",
		"description": "Display flickers after a few minutes.",
		"product":     "Laptop X1",
		"email":       "user@example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("create ticket: status %d (%v)", status, body)
	}
	ticket, _ := body["ticket"].(map[string]any)
	ticketID, _ := ticket["id"].(string)
	if len(ticketID) != 8 {
		t.Fatalf("ticket id = %q, want 8 digits", ticketID)
	}
	if ticket["status"] != "Open" {
		t.Fatalf("new ticket status = %v, want Open", ticket["status"])
	}

	status, body = doJSON(t, app, http.MethodPut, "/admin/tickets/"+ticketID, adminToken, map[string]any{
		"status":      "In Progress",
		"actionTaken": "Diagnosing the display cable",
	})
	if status != http.StatusOK {
		t.Fatalf("update status: status %d (%v)", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/admin/tickets/"+ticketID+"/message", adminToken, map[string]string{
		"message": "We have started the diagnosis.",
	})
	if status != http.StatusOK {
		t.Fatalf("add message: status %d (%v)", status, body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/ticket/"+ticketID, userToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get ticket: status %d (%v)", status, body)
	}
	if body["status"] != "In Progress" {
		t.Fatalf("ticket status = %v, want In Progress", body["status"])
	}
	if body["actionTaken"] != "Diagnosing the display cable" {
		t.Fatalf("actionTaken = %v", body["actionTaken"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	status, body = doJSON(t, app, http.MethodGet, "/tickets/user@example.com/product/Laptop%20X1", userToken, nil)
	if status != http.StatusOK {
		t.Fatalf("product history: status %d (%v)", status, body)
	}
	if items, _ := body["items"].([]any); len(items) != 1 {
		t.Fatalf("product history returned %d tickets, want 1", len(items))
	}

	status, body = doJSON(t, app, http.MethodDelete, "/admin/users/user@example.com", adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("deregister: status %d (%v)", status, body)
	}
	status, _ = doJSON(t, app, http.MethodGet, "/ticket/"+ticketID, adminToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("cascaded ticket still reachable: status %d", status)
	}
}

func TestAuthRejections(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "/admin/login", testAdminEmail, testAdminPassword)

	for _, email := range []string{"alice@example.com", "bob@example.com"} {
		status, body := doJSON(t, app, http.MethodPost, "/admin/register", adminToken, map[string]string{
			"email":    email,
			"password": "secret1",
		})
		if status != http.StatusCreated {
			t.Fatalf("register %s: status %d (%v)", email, status, body)
		}
	}
	aliceToken := login(t, app, "/login", "alice@example.com", "secret1")
	bobToken := login(t, app, "/login", "bob@example.com", "secret1")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"no token", http.MethodPost, "/tickets", "", map[string]string{"title": "t"}, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/tickets/alice@example.com", "garbage", nil, http.StatusUnauthorized},
		{"wrong password", http.MethodPost, "/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"}, http.StatusUnauthorized},
		{"user on admin login", http.MethodPost, "/admin/login", "", map[string]string{"email": "alice@example.com", "password": "secret1"}, http.StatusUnauthorized},
		{"user lists other user", http.MethodGet, "/tickets/alice@example.com", bobToken, nil, http.StatusForbidden},
		{"user creates for other user", http.MethodPost, "/tickets", bobToken, map[string]string{
			"title": "t", "description": "d", "product": "p", "email": "alice@example.com",
		}, http.StatusForbidden},
		{"user hits admin route", http.MethodGet, "/admin/tickets", aliceToken, nil, http.StatusForbidden},
		{"user changes other password", http.MethodPut, "/user/update-password", bobToken, map[string]string{
			"email": "alice@example.com", "currentPassword": "secret1", "newPassword": "newsecret",
		}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, app, tc.method, tc.path, tc.token, tc.body)
			if status != tc.status {
				t.Fatalf("status %d, want %d (%v)", status, tc.status, body)
			}
			if success, ok := body["success"].(bool); ok && success {
				t.Fatalf("rejected request reported success: %v", body)
			}
		})
	}

	// Admins may act on any user's resources.
	status, body := doJSON(t, app, http.MethodGet, "/tickets/alice@example.com", adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("admin listing user tickets: status %d (%v)", status, body)
	}
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	if status != http.StatusOK {
		t.Fatalf("liveness: status %d", status)
	}
	if body["status"] != "alive" {
		t.Fatalf("liveness body: %v", body)
	}
}
