package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService owns the ticket lifecycle: creation, status transitions,
// message appends, and the per-product history views.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	cache      *repository.TicketCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Cache      *repository.TicketCache
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
	Product     string
	CreatedBy   string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket validates input, assigns a fresh id, persists the ticket and
// publishes the creation event. The full ticket, id included, is returned
// synchronously.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	product := strings.TrimSpace(input.Product)
	createdBy := strings.TrimSpace(input.CreatedBy)
	if title == "" || description == "" || product == "" || createdBy == "" {
		return nil, apperrors.NewValidationError("title, description, product and email are required")
	}

	creator, err := s.users.GetByEmail(ctx, createdBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	if creator.Role != domain.RoleUser {
		return nil, apperrors.NewNotFound("user")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "General"
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Product:     product,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   createdBy,
		Messages:    []domain.TicketMessage{},
	}

	// Ids are random 8-digit strings; regenerate on the rare collision.
	const maxAttempts = 5
	for attempt := 0; ; attempt++ {
		ticket.ID = newTicketID()
		err := s.tickets.Create(ctx, ticket)
		if err == nil {
			break
		}
		if isDuplicateKey(err) && attempt < maxAttempts-1 {
			continue
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CreatedBy: ticket.CreatedBy,
			Title:     ticket.Title,
			Product:   ticket.Product,
			Priority:  ticket.Priority,
		},
	})
	return ticket, nil
}

// UpdateStatus overwrites the ticket status with any member of the known
// status set; ordering between states is deliberately not enforced. A nil
// actionTaken leaves the stored value unchanged.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, actionTaken *string) (*domain.Ticket, error) {
	if !domain.KnownStatus(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}

	ticket, err := s.tickets.UpdateStatus(ctx, id, status, actionTaken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, id)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			CreatedBy:   ticket.CreatedBy,
			NewStatus:   ticket.Status,
			ActionTaken: ticket.ActionTaken,
		},
	})
	return ticket, nil
}

// AppendMessage adds one admin communication to the ticket thread. Prior
// messages are never rewritten; the repository append is atomic.
func (s *TicketService) AppendMessage(ctx context.Context, id, text string) (*domain.TicketMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text is required")
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}

	msg := domain.TicketMessage{Text: text, Timestamp: time.Now().UTC()}
	if err := s.tickets.AppendMessage(ctx, id, msg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, id)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: id,
		Payload: events.TicketMessageAddedPayload{
			CreatedBy: ticket.CreatedBy,
			Text:      msg.Text,
		},
	})
	return &msg, nil
}

// GetTicketByID fetches one ticket, serving from the cache when possible.
func (s *TicketService) GetTicketByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	s.cache.Set(ctx, ticket)
	return ticket, nil
}

// ListUserTickets returns every ticket created by the given email, newest
// first, with no pagination truncation.
func (s *TicketService) ListUserTickets(ctx context.Context, email string) ([]domain.Ticket, error) {
	return s.tickets.ListByCreator(ctx, email)
}

// ListAllTickets returns every ticket, newest first.
func (s *TicketService) ListAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.ListAll(ctx)
}

// ProductHistory returns tickets for a product, matched case-insensitively.
// A nil forUser gives the admin view across all users; otherwise only that
// user's tickets are returned.
func (s *TicketService) ProductHistory(ctx context.Context, product string, forUser *string) ([]domain.Ticket, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, apperrors.NewValidationError("product is required")
	}
	return s.tickets.ListByProduct(ctx, product, forUser)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func newTicketID() string {
	return fmt.Sprintf("%d", 10000000+rand.Intn(90000000))
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var domainErr *apperrors.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "CONFLICT"
}
