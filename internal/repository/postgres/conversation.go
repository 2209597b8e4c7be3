package postgres

import (
	"context"
	"fmt"
	"time"

	"pet-adoption-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository handles database operations for conversations
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create creates a new conversation
func (r *ConversationRepository) Create(ctx context.Context, c *models.Conversation) error {
	query := `
		INSERT INTO conversations (id, participants, is_approved, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.Participants, c.IsApproved, c.LastMessageAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, participants, is_approved, last_message_at, created_at
		FROM conversations
		WHERE id = $1
	`
	c, err := scanConversation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

// ListByParticipant retrieves conversations a user takes part in
func (r *ConversationRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*models.Conversation, error) {
	query := `
		SELECT id, participants, is_approved, last_message_at, created_at
		FROM conversations
		WHERE $1 = ANY(participants)
		ORDER BY last_message_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return convs, nil
}

// SetApproved sets the moderation flag of a conversation
func (r *ConversationRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := `UPDATE conversations SET is_approved = $2 WHERE id = $1`
	if err := expectOne(r.db.Exec(ctx, query, id, approved)); err != nil {
		return fmt.Errorf("failed to approve conversation: %w", err)
	}
	return nil
}

// TouchLastMessage moves last_message_at forward, never backwards
func (r *ConversationRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE conversations SET last_message_at = GREATEST(last_message_at, $2) WHERE id = $1`
	if err := expectOne(r.db.Exec(ctx, query, id, at)); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.Participants, &c.IsApproved, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

const messageColumns = `id, conversation_id, sender_id, content, attachments,
	status_sent, status_delivered, status_read, sent_at, updated_at`

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.Attachments,
		m.Status.Sent, m.Status.Delivered, m.Status.Read, m.SentAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	m, err := scanMessage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

// ListByConversation retrieves messages of a conversation oldest first
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return msgs, nil
}

// UpdateStatus stores the delivery timestamps of a message
func (r *MessageRepository) UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus, updatedAt time.Time) error {
	query := `
		UPDATE messages
		SET status_delivered = $2, status_read = $3, updated_at = $4
		WHERE id = $1
	`
	if err := expectOne(r.db.Exec(ctx, query, id, status.Delivered, status.Read, updatedAt)); err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	return nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Attachments,
		&m.Status.Sent, &m.Status.Delivered, &m.Status.Read, &m.SentAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}
