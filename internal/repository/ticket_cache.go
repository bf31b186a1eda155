package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketCache is a read-through cache for ticket-by-id lookups. Every method
// degrades to a no-op when Redis is unavailable; the store stays the source
// of truth.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketCache builds a cache around an existing client.
func NewTicketCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TicketCache {
	return &TicketCache{client: client, ttl: ttl, logger: logger}
}

func ticketKey(id string) string {
	return "ticket:" + id
}

// Get returns the cached ticket, or false on miss or cache error.
func (c *TicketCache) Get(ctx context.Context, id string) (*domain.Ticket, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, ticketKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("ticket cache get failed", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return nil, false
	}
	return &ticket, true
}

// Set stores the ticket under its id with the configured TTL.
func (c *TicketCache) Set(ctx context.Context, ticket *domain.Ticket) {
	if c == nil || c.client == nil || ticket == nil {
		return
	}
	raw, err := json.Marshal(ticket)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, ticketKey(ticket.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("ticket cache set failed", zap.String("id", ticket.ID), zap.Error(err))
	}
}

// Invalidate drops cached entries after a mutation.
func (c *TicketCache) Invalidate(ctx context.Context, ids ...string) {
	if c == nil || c.client == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ticketKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("ticket cache invalidate failed", zap.Error(err))
	}
}
