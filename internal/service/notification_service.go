package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
)

// NotificationService turns domain events into transactional email. Sends are
// best-effort: the store write has already committed by the time an event is
// published, and a delivery failure is logged, never surfaced to the caller.
type NotificationService struct {
	dispatcher  events.Dispatcher
	mail        mailer.Mailer
	logger      *zap.Logger
	adminEmail  string
	sendTimeout time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mail mailer.Mailer, logger *zap.Logger, mailCfg config.MailConfig, adminCfg config.AdminConfig) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		mail:        mail,
		logger:      logger,
		adminEmail:  adminCfg.Email,
		sendTimeout: mailCfg.SendTimeout(),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketMessageAdded)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.send(ctx, payload.CreatedBy,
		fmt.Sprintf("Ticket Created (Ref #%s)", event.TicketID),
		fmt.Sprintf("Your support ticket has been successfully created. Ref #: %s. We will review it shortly.", event.TicketID))
	if n.adminEmail != "" {
		n.send(ctx, n.adminEmail,
			fmt.Sprintf("New Ticket Submitted (Ref #%s)", event.TicketID),
			fmt.Sprintf("A new %s priority ticket for %q was submitted by %s:\n\n%s",
				payload.Priority, payload.Product, payload.CreatedBy, payload.Title))
	}
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	action := "None"
	if payload.ActionTaken != nil && *payload.ActionTaken != "" {
		action = *payload.ActionTaken
	}
	n.send(ctx, payload.CreatedBy,
		fmt.Sprintf("Ticket Updated (Ref #%s)", event.TicketID),
		fmt.Sprintf("Your ticket has been updated.\nNew Status: %s\nAction Taken: %s", payload.NewStatus, action))
	return nil
}

func (n *NotificationService) handleTicketMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok {
		return nil
	}
	n.send(ctx, payload.CreatedBy,
		fmt.Sprintf("New Message on Ticket (Ref #%s)", event.TicketID),
		fmt.Sprintf("A new message has been added to your ticket:\n\n%s", payload.Text))
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	n.send(ctx, payload.Email,
		"Welcome to the Support Portal",
		fmt.Sprintf("Your account has been created. Your temporary password is: %s. Please login and change it.", payload.Password))
	return nil
}

// send delivers one message under a bounded timeout. The context is detached
// from the request so a response already written does not cancel delivery.
func (n *NotificationService) send(ctx context.Context, to, subject, body string) {
	if n.mail == nil || to == "" {
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.sendTimeout)
	defer cancel()

	if err := n.mail.Send(sendCtx, to, subject, body); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
	}
}
