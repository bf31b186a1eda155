package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// MemoryStore is an in-memory implementation of the repository interfaces.
// It mirrors the Postgres error contract (pgx.ErrNoRows on missing rows,
// conflict on duplicate keys) so services behave identically against it.
// Used by tests and local development without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	tickets map[string]domain.Ticket
	seq     map[string]int64
	nextSeq int64
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		tickets: make(map[string]domain.Ticket),
		seq:     make(map[string]int64),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository {
	return &memoryUserRepo{store: s}
}

// Tickets returns the ticket repository view of the store.
func (s *MemoryStore) Tickets() TicketRepository {
	return &memoryTicketRepo{store: s}
}

type memoryUserRepo struct {
	store *MemoryStore
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return apperrors.NewConflict("user already exists")
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.Email] = *user
	return nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	s.users[email] = user
	return nil
}

func (r *memoryUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.User
	for _, user := range s.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryUserRepo) DeleteWithTickets(_ context.Context, email string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.users, email)
	for id, ticket := range s.tickets {
		if ticket.CreatedBy == email {
			delete(s.tickets, id)
			delete(s.seq, id)
		}
	}
	return nil
}

type memoryTicketRepo struct {
	store *MemoryStore
}

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[ticket.ID]; exists {
		return apperrors.NewConflict("duplicate ticket id")
	}
	ticket.CreatedAt = time.Now().UTC()
	s.nextSeq++
	s.seq[ticket.ID] = s.nextSeq
	s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := cloneTicket(ticket)
	return &copied, nil
}

func (r *memoryTicketRepo) ListByCreator(_ context.Context, email string) ([]domain.Ticket, error) {
	return r.list(func(t *domain.Ticket) bool { return t.CreatedBy == email })
}

func (r *memoryTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	return r.list(func(*domain.Ticket) bool { return true })
}

func (r *memoryTicketRepo) ListByProduct(_ context.Context, product string, createdBy *string) ([]domain.Ticket, error) {
	return r.list(func(t *domain.Ticket) bool {
		if !strings.EqualFold(t.Product, product) {
			return false
		}
		return createdBy == nil || t.CreatedBy == *createdBy
	})
}

func (r *memoryTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, actionTaken *string) (*domain.Ticket, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.Status = status
	if actionTaken != nil {
		ticket.ActionTaken = actionTaken
	}
	s.tickets[id] = ticket
	copied := cloneTicket(ticket)
	return &copied, nil
}

func (r *memoryTicketRepo) AppendMessage(_ context.Context, id string, msg domain.TicketMessage) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Messages = append(ticket.Messages, msg)
	s.tickets[id] = ticket
	return nil
}

// list returns matching tickets newest first, seq as tiebreak for equal
// timestamps.
func (r *memoryTicketRepo) list(match func(*domain.Ticket) bool) ([]domain.Ticket, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Ticket
	for id := range s.tickets {
		ticket := s.tickets[id]
		if match(&ticket) {
			result = append(result, cloneTicket(ticket))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return s.seq[result[i].ID] > s.seq[result[j].ID]
	})
	return result, nil
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.Messages != nil {
		t.Messages = append([]domain.TicketMessage(nil), t.Messages...)
	}
	if t.ActionTaken != nil {
		v := *t.ActionTaken
		t.ActionTaken = &v
	}
	return t
}
