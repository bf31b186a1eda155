package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
		MinPasswordLength:     6,
	}
}

// mockMailer records every send. failWith, when set, is returned from Send.
type mockMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failWith error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockMailer) sentTo(addr string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.To == addr {
			out = append(out, s)
		}
	}
	return out
}

// env bundles everything a service test needs: shared in-memory store,
// wired services and a recording mailer.
type env struct {
	store   *repository.MemoryStore
	mail    *mockMailer
	tickets *service.TicketService
	users   *service.UserService
	auth    *service.AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithAdmin(t, "")
}

func newEnvWithAdmin(t *testing.T, adminEmail string) *env {
	t.Helper()
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	mail := &mockMailer{}
	cfg := testAuthConfig()

	notifications := service.NewNotificationService(dispatcher, mail, zap.NewNop(),
		config.MailConfig{SendTimeoutSeconds: 2},
		config.AdminConfig{Email: adminEmail})
	notifications.RegisterHandlers()

	return &env{
		store: store,
		mail:  mail,
		tickets: service.NewTicketService(service.TicketDependencies{
			TicketRepo: store.Tickets(),
			UserRepo:   store.Users(),
			Dispatcher: dispatcher,
		}),
		users: service.NewUserService(cfg, store.Users(), dispatcher),
		auth:  service.NewAuthService(cfg, store.Users()),
	}
}

func (e *env) register(t *testing.T, email, password string) {
	t.Helper()
	if _, err := e.users.Register(context.Background(), email, password); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

func (e *env) createTicket(t *testing.T, createdBy, product string) *domain.Ticket {
	t.Helper()
	ticket, err := e.tickets.CreateTicket(context.Background(), service.TicketCreateInput{
		Title:       "Screen flickers",
		Description: "Display flickers after a few minutes of use.",
		Product:     product,
		CreatedBy:   createdBy,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func wantDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var derr *apperrors.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if derr.Code != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, derr.Code, err)
	}
}
