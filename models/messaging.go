package models

import "time"

// Conversation is the message thread between a client and a vendor,
// created automatically when a ProposalRequest is sent (1:1).
type Conversation struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	RequestID uint            `json:"request_id" gorm:"not null;uniqueIndex"`
	Request   ProposalRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"index"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message belongs to a conversation. Ordering is creation-time ascending.
type Message struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	ConversationID uint         `json:"conversation_id" gorm:"not null;index"`
	Conversation   Conversation `json:"conversation,omitempty" gorm:"foreignKey:ConversationID"`
	SenderID       uint         `json:"sender_id" gorm:"not null;index"`
	Sender         User         `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Content        string       `json:"content" gorm:"type:text;not null"`

	AttachmentURL  *string `json:"attachment_url" gorm:"size:500"`
	AttachmentSize int64   `json:"attachment_size" gorm:"default:0"` // bytes

	IsRead    bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
