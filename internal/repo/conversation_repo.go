package repo

import (
	"context"
	"database/sql"

	"github.com/fundscope/fundscope/internal/model"
	appErr "github.com/fundscope/fundscope/internal/pkg/errors"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	const query = `
		INSERT INTO conversations (conversation_id, fund_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, query, conv.ConversationID, conv.FundID)
	return row.Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
}

func (r *ConversationRepo) GetByConversationID(ctx context.Context, conversationID string) (*model.Conversation, error) {
	const query = `
		SELECT id, conversation_id, fund_id, created_at, updated_at
		FROM conversations WHERE conversation_id = $1
	`
	var conv model.Conversation
	err := r.db.QueryRowContext(ctx, query, conversationID).
		Scan(&conv.ID, &conv.ConversationID, &conv.FundID, &conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, msg *model.ConversationMessage) error {
	const query = `
		INSERT INTO conversation_messages (conversation_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	row := r.db.QueryRowContext(ctx, query, msg.ConversationID, msg.Role, msg.Content)
	return row.Scan(&msg.ID, &msg.Timestamp)
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID int64) ([]model.ConversationMessage, error) {
	const query = `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []model.ConversationMessage
	for rows.Next() {
		var msg model.ConversationMessage
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
