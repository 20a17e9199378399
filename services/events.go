package services

import "event-marketplace-server/models"

// Event is a domain event emitted by a state transition. Services
// return events instead of firing side effects themselves; a Dispatcher
// consumes them after the transaction commits.
type Event interface {
	Name() string
}

// Dispatcher consumes domain events (notifications, email, websocket push).
type Dispatcher interface {
	Dispatch(events ...Event)
}

// RequestSent fires when a client sends a quote request to a vendor.
// Request is preloaded with Project.Client and Vendor.User.
type RequestSent struct {
	Request models.ProposalRequest
}

func (RequestSent) Name() string { return "request.sent" }

// ProposalCreated fires when a vendor responds to a request with a
// proposal. Proposal is preloaded with Project.Client and Vendor.
type ProposalCreated struct {
	Proposal models.Proposal
}

func (ProposalCreated) Name() string { return "proposal.created" }

// ProposalDecided fires when the client accepts or rejects a proposal.
type ProposalDecided struct {
	Proposal models.Proposal
}

func (ProposalDecided) Name() string { return "proposal.decided" }

// MessagePosted fires when a message is added to a conversation.
// Conversation is preloaded with Request.Project and Request.Vendor.
type MessagePosted struct {
	Message      models.Message
	Conversation models.Conversation
}

func (MessagePosted) Name() string { return "message.posted" }

// RecommendationSent fires when an admin recommendation transitions to
// sent. Recommendation is preloaded with Project.Client and Vendor.
type RecommendationSent struct {
	Recommendation models.AdminRecommendation
}

func (RecommendationSent) Name() string { return "recommendation.sent" }

// SubscriptionExpiring fires from the expiry sweep for vendors whose
// subscription ends within the warning window.
type SubscriptionExpiring struct {
	Vendor   models.VendorProfile
	DaysLeft int
}

func (SubscriptionExpiring) Name() string { return "subscription.expiring" }
