package services

import (
	"context"
	"fmt"
	"time"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/validation"

	"github.com/google/uuid"
)

// ConversationService handles conversations and their messages
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	uploads       *UploadService
}

// NewConversationService creates a new conversation service
func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	uploads *UploadService,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		uploads:       uploads,
	}
}

// StartConversationRequest names the other participants of a new conversation
type StartConversationRequest struct {
	Participants []string `json:"participants" validate:"required,min=1,dive,required"`
}

// SendMessageRequest represents a new message
type SendMessageRequest struct {
	Content     string             `json:"content"`
	Attachments models.Attachments `json:"attachments"`
}

// Start opens a conversation between the caller and the named users.
// Conversations opened by admins are approved immediately.
func (s *ConversationService) Start(ctx context.Context, caller Caller, req StartConversationRequest) (*models.Conversation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	// caller first, duplicates dropped
	participants := []string{caller.ID}
	seen := map[string]bool{caller.ID: true}
	for _, id := range req.Participants {
		if !seen[id] {
			seen[id] = true
			participants = append(participants, id)
		}
	}
	if len(participants) < 2 {
		return nil, validation.Fail("participants", "min")
	}
	for _, id := range participants {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return nil, reference("participant "+id, err)
		}
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:            uuid.New().String(),
		Participants:  participants,
		IsApproved:    caller.IsAdmin(),
		LastMessageAt: now,
		CreatedAt:     now,
	}
	if err := validation.Struct(conv); err != nil {
		return nil, err
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// List retrieves the caller's conversations, most recently active first
func (s *ConversationService) List(ctx context.Context, caller Caller, limit, offset int) ([]*models.Conversation, error) {
	limit, offset = normalizePaging(limit, offset)
	convs, err := s.conversations.ListByParticipant(ctx, caller.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if convs == nil {
		convs = []*models.Conversation{}
	}
	return convs, nil
}

// Approve allows messages to be sent in a conversation
func (s *ConversationService) Approve(ctx context.Context, id string) (*models.Conversation, error) {
	if err := s.conversations.SetApproved(ctx, id, true); err != nil {
		return nil, lookup("conversation", err)
	}
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, lookup("conversation", err)
	}
	return conv, nil
}

// Send appends a message from the caller to an approved conversation
func (s *ConversationService) Send(ctx context.Context, caller Caller, conversationID string, req SendMessageRequest) (*models.Message, error) {
	conv, err := s.member(ctx, caller, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsApproved {
		return nil, fail(ErrConflict, "Conversation is not approved")
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       caller.ID,
		Content:        req.Content,
		Attachments:    normalizeAttachments(req.Attachments),
		Status:         models.DeliveryStatus{Sent: now},
		SentAt:         now,
		UpdatedAt:      now,
	}
	if err := validation.Struct(msg); err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := s.conversations.TouchLastMessage(ctx, conv.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return msg, nil
}

// History retrieves messages of a conversation, oldest first
func (s *ConversationService) History(ctx context.Context, caller Caller, conversationID string, limit, offset int) ([]*models.Message, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, lookup("conversation", err)
	}
	if !conv.HasParticipant(caller.ID) && !caller.IsAdmin() {
		return nil, fail(ErrForbidden, "Not a participant of this conversation")
	}

	limit, offset = normalizePaging(limit, offset)
	msgs, err := s.messages.ListByConversation(ctx, conv.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return msgs, nil
}

// MarkDelivered records delivery of a message to the caller
func (s *ConversationService) MarkDelivered(ctx context.Context, caller Caller, messageID string) (*models.Message, error) {
	return s.mark(ctx, caller, messageID, false)
}

// MarkRead records that the caller read a message; reading implies delivery
func (s *ConversationService) MarkRead(ctx context.Context, caller Caller, messageID string) (*models.Message, error) {
	return s.mark(ctx, caller, messageID, true)
}

// mark only sets missing timestamps, so repeated calls never move them
func (s *ConversationService) mark(ctx context.Context, caller Caller, messageID string, read bool) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, lookup("message", err)
	}
	if _, err := s.member(ctx, caller, msg.ConversationID); err != nil {
		return nil, err
	}
	if msg.SenderID == caller.ID {
		return nil, fail(ErrForbidden, "Senders cannot acknowledge their own message")
	}

	now := time.Now().UTC()
	status := msg.Status
	changed := false
	if status.Delivered == nil {
		status.Delivered = &now
		changed = true
	}
	if read && status.Read == nil {
		status.Read = &now
		changed = true
	}
	if !changed {
		return msg, nil
	}

	if err := s.messages.UpdateStatus(ctx, msg.ID, status, now); err != nil {
		return nil, lookup("message", err)
	}
	msg.Status = status
	msg.UpdatedAt = now
	return msg, nil
}

// PresignAttachment issues an upload URL for a file to attach to a message
func (s *ConversationService) PresignAttachment(ctx context.Context, caller Caller, conversationID string, req UploadRequest) (*Upload, error) {
	conv, err := s.member(ctx, caller, conversationID)
	if err != nil {
		return nil, err
	}
	return s.uploads.PresignAttachment(ctx, conv.ID, req)
}

// member loads a conversation the caller takes part in
func (s *ConversationService) member(ctx context.Context, caller Caller, conversationID string) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, lookup("conversation", err)
	}
	if !conv.HasParticipant(caller.ID) {
		return nil, fail(ErrForbidden, "Not a participant of this conversation")
	}
	return conv, nil
}

func normalizeAttachments(a models.Attachments) models.Attachments {
	if a.URLs == nil {
		a.URLs = []string{}
	}
	if a.Photos == nil {
		a.Photos = []string{}
	}
	if a.Documents == nil {
		a.Documents = []string{}
	}
	return a
}
