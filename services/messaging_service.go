package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
	"event-marketplace-server/storage"
	"event-marketplace-server/utils"
)

// MessagingService owns conversations and messages. Conversations are
// created by NegotiationService when a request is sent; here they only
// get read and written to.
type MessagingService struct {
	db    *gorm.DB
	quota *QuotaService
	store storage.Storage
}

func NewMessagingService(db *gorm.DB, quota *QuotaService, store storage.Storage) *MessagingService {
	return &MessagingService{db: db, quota: quota, store: store}
}

// AttachmentUpload is an optional file posted with a message.
type AttachmentUpload struct {
	Filename string
	Size     int64
	Head     []byte
	Content  io.Reader
}

// ConversationSummary is a conversation plus its unread count for the
// listing user.
type ConversationSummary struct {
	Conversation models.Conversation `json:"conversation"`
	UnreadCount  int64               `json:"unread_count"`
	LastMessage  *models.Message     `json:"last_message,omitempty"`
}

// PostMessage appends a message to a conversation. Only the two parties
// of the underlying request may post. Attachment validation and the
// quota check both run before anything is stored.
func (s *MessagingService) PostMessage(ctx context.Context, sender *models.User, conversationID uint, content string, att *AttachmentUpload) (*models.Message, []Event, error) {
	conversation, err := s.conversationForUser(sender, conversationID)
	if err != nil {
		return nil, nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" && att == nil {
		return nil, nil, fmt.Errorf("%w: message needs content or an attachment", ErrValidation)
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       sender.ID,
		Content:        content,
	}

	var stored *storage.Handle
	if att != nil {
		if err := utils.ValidateAttachmentFile(att.Filename, att.Size, att.Head); err != nil {
			return nil, nil, err
		}
		if err := s.quota.CheckQuota(sender.ID, att.Size); err != nil {
			return nil, nil, err
		}
		handle, err := s.store.Store(ctx, att.Content, "attachments", att.Filename, att.Size)
		if err != nil {
			return nil, nil, fmt.Errorf("storing message attachment: %w", err)
		}
		stored = &handle
		message.AttachmentURL = &handle.URL
		message.AttachmentSize = handle.Size
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		// Bump the conversation so listings sort by recent activity.
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		if stored != nil {
			// Do not leave the attachment orphaned in object storage.
			if derr := s.store.Delete(ctx, stored.PublicID); derr != nil {
				log.Printf("⚠️ Could not remove orphaned message attachment %s: %v", stored.PublicID, derr)
			}
		}
		return nil, nil, err
	}

	if err := s.db.Preload("Sender").First(&message, message.ID).Error; err != nil {
		return nil, nil, err
	}
	return &message, []Event{MessagePosted{Message: message, Conversation: *conversation}}, nil
}

// ListMessages returns the conversation's messages oldest first, for a
// participant only.
func (s *MessagingService) ListMessages(user *models.User, conversationID uint) ([]models.Message, error) {
	conversation, err := s.conversationForUser(user, conversationID)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	err = s.db.Preload("Sender").
		Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead marks every unread message from the other party
// as read. Idempotent: already-read messages keep their original ReadAt.
func (s *MessagingService) MarkConversationRead(user *models.User, conversationID uint) (int64, error) {
	conversation, err := s.conversationForUser(user, conversationID)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	result := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, user.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected, result.Error
}

// UnreadCount counts unread messages addressed to the user across all
// their conversations.
func (s *MessagingService) UnreadCount(user *models.User) (int64, error) {
	var count int64
	err := s.participantMessages(user).
		Where("messages.sender_id <> ? AND messages.is_read = ?", user.ID, false).
		Count(&count).Error
	return count, err
}

// ListConversations returns the user's conversations newest activity
// first, each with its unread count and last message.
func (s *MessagingService) ListConversations(user *models.User) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	err := s.db.Preload("Request.Project.Client").Preload("Request.Vendor.User").
		Joins("JOIN proposal_requests ON proposal_requests.id = conversations.request_id").
		Joins("JOIN projects ON projects.id = proposal_requests.project_id").
		Joins("JOIN vendor_profiles ON vendor_profiles.id = proposal_requests.vendor_id").
		Where("projects.client_id = ? OR vendor_profiles.user_id = ?", user.ID, user.ID).
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		var unread int64
		err := s.db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, user.ID, false).
			Count(&unread).Error
		if err != nil {
			return nil, err
		}

		var last models.Message
		summary := ConversationSummary{Conversation: conversation, UnreadCount: unread}
		err = s.db.Preload("Sender").
			Where("conversation_id = ?", conversation.ID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// conversationForUser loads a conversation and verifies the user is one
// of the two parties. Non-parties get ErrNotFound.
func (s *MessagingService) conversationForUser(user *models.User, conversationID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Preload("Request.Project.Client").Preload("Request.Vendor.User").
		First(&conversation, conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: conversation %d", ErrNotFound, conversationID)
		}
		return nil, err
	}
	isClient := conversation.Request.Project.ClientID == user.ID
	isVendor := conversation.Request.Vendor.UserID == user.ID
	if !isClient && !isVendor {
		return nil, fmt.Errorf("%w: conversation %d", ErrNotFound, conversationID)
	}
	return &conversation, nil
}

// participantMessages scopes messages to conversations the user takes part in.
func (s *MessagingService) participantMessages(user *models.User) *gorm.DB {
	return s.db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Joins("JOIN proposal_requests ON proposal_requests.id = conversations.request_id").
		Joins("JOIN projects ON projects.id = proposal_requests.project_id").
		Joins("JOIN vendor_profiles ON vendor_profiles.id = proposal_requests.vendor_id").
		Where("projects.client_id = ? OR vendor_profiles.user_id = ?", user.ID, user.ID)
}
