package model

import "time"

type Conversation struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	FundID         int64     `json:"fund_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ConversationMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}
