package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/mailer"
	"event-marketplace-server/models"
	"event-marketplace-server/websocket"
)

// NotificationDispatcher turns domain events into side effects: an
// in-app Notification row, a websocket push, and a best-effort email.
// The notification row is written first; it is the durable record, the
// push and the mail only mirror it.
type NotificationDispatcher struct {
	db       *gorm.DB
	hub      *websocket.Hub
	mailer   mailer.Mailer
	siteURL  string
	siteName string
}

func NewNotificationDispatcher(db *gorm.DB, hub *websocket.Hub, m mailer.Mailer, siteURL, siteName string) *NotificationDispatcher {
	return &NotificationDispatcher{db: db, hub: hub, mailer: m, siteURL: siteURL, siteName: siteName}
}

func (d *NotificationDispatcher) Dispatch(events ...Event) {
	for _, event := range events {
		switch e := event.(type) {
		case RequestSent:
			d.onRequestSent(e)
		case ProposalCreated:
			d.onProposalCreated(e)
		case ProposalDecided:
			d.onProposalDecided(e)
		case MessagePosted:
			d.onMessagePosted(e)
		case RecommendationSent:
			d.onRecommendationSent(e)
		case SubscriptionExpiring:
			d.onSubscriptionExpiring(e)
		default:
			log.Printf("⚠️ Unhandled event type: %s", event.Name())
		}
	}
}

func (d *NotificationDispatcher) onRequestSent(e RequestSent) {
	vendorUser := e.Request.Vendor.User
	d.notify(vendorUser,
		models.NotificationTypeRequest,
		"New quote request",
		fmt.Sprintf("%s requested a quote for %q", e.Request.Project.Client.FullName, e.Request.Project.Title),
		fmt.Sprintf("/requests/%d", e.Request.ID),
	)
}

func (d *NotificationDispatcher) onProposalCreated(e ProposalCreated) {
	client := e.Proposal.Project.Client
	d.notify(client,
		models.NotificationTypeProposal,
		"New proposal received",
		fmt.Sprintf("%s sent a proposal for %q", e.Proposal.Vendor.BusinessName, e.Proposal.Project.Title),
		fmt.Sprintf("/proposals/%d", e.Proposal.ID),
	)
}

func (d *NotificationDispatcher) onProposalDecided(e ProposalDecided) {
	vendorUser := e.Proposal.Vendor.User
	verb := "accepted"
	if e.Proposal.Status == models.ProposalStatusRejected {
		verb = "rejected"
	}
	d.notify(vendorUser,
		models.NotificationTypeProposal,
		fmt.Sprintf("Proposal %s", verb),
		fmt.Sprintf("Your proposal for %q was %s", e.Proposal.Project.Title, verb),
		fmt.Sprintf("/proposals/%d", e.Proposal.ID),
	)
}

func (d *NotificationDispatcher) onMessagePosted(e MessagePosted) {
	// Recipient is the conversation party that did not write the message.
	var recipient models.User
	project := e.Conversation.Request.Project
	vendor := e.Conversation.Request.Vendor
	if e.Message.SenderID == project.ClientID {
		recipient = vendor.User
	} else {
		recipient = project.Client
	}
	d.notify(recipient,
		models.NotificationTypeMessage,
		"New message",
		fmt.Sprintf("New message in the conversation about %q", project.Title),
		fmt.Sprintf("/conversations/%d", e.Conversation.ID),
	)
}

func (d *NotificationDispatcher) onRecommendationSent(e RecommendationSent) {
	client := e.Recommendation.Project.Client
	d.notify(client,
		models.NotificationTypeRecommendation,
		"Vendor recommendation",
		fmt.Sprintf("We recommend %s for %q", e.Recommendation.Vendor.BusinessName, e.Recommendation.Project.Title),
		fmt.Sprintf("/recommendations/%d", e.Recommendation.ID),
	)
}

func (d *NotificationDispatcher) onSubscriptionExpiring(e SubscriptionExpiring) {
	d.notify(e.Vendor.User,
		models.NotificationTypeSystem,
		"Subscription expiring soon",
		fmt.Sprintf("Your subscription expires in %d day(s). Renew to keep your listing priority.", e.DaysLeft),
		"/vendor/subscription",
	)
}

// notify records the notification, pushes it over the hub and mails the
// user. Mail goes out on a goroutine; failures are logged, never returned.
func (d *NotificationDispatcher) notify(user models.User, ntype models.NotificationType, title, message, link string) {
	notification := models.Notification{
		UserID:  user.ID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := d.db.Create(&notification).Error; err != nil {
		log.Printf("❌ Error creating notification for user %d: %v", user.ID, err)
		return
	}

	if d.hub != nil {
		d.hub.SendToUser(user.ID, &websocket.Event{
			Type:      "notification",
			Timestamp: time.Now(),
			Data:      notification,
		})
	}

	if d.mailer != nil && user.Email != "" {
		go func() {
			subject := fmt.Sprintf("[%s] %s", d.siteName, title)
			text := fmt.Sprintf("%s\n\n%s%s", message, d.siteURL, link)
			html := fmt.Sprintf("<p>%s</p><p><a href=%q>View on %s</a></p>", message, d.siteURL+link, d.siteName)
			if err := d.mailer.Send(user.Email, subject, html, text); err != nil {
				log.Printf("❌ Error sending notification email to %s: %v", user.Email, err)
			}
		}()
	}
}
