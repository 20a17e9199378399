package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

func newNegotiationFixture(t *testing.T) (*NegotiationService, *models.User, *models.User, *models.VendorProfile, *models.Project) {
	t.Helper()
	db := newTestDB(t)
	store := &fakeStorage{}
	svc := NewNegotiationService(db, NewQuotaService(db), store)

	client := createUser(t, db, models.RoleClient)
	provider := createUser(t, db, models.RoleProvider)
	vendor := createVendor(t, db, provider, nil)
	project := createProject(t, db, client, models.ProjectStatusPublished)
	return svc, client, provider, vendor, project
}

func TestSendRequestCreatesConversationAndSeedMessage(t *testing.T) {
	svc, client, _, vendor, project := newNegotiationFixture(t)

	request, events, err := svc.SendRequest(client, vendor.ID, &models.SendRequestPayload{
		ProjectID: project.ID,
		Message:   "Please quote our wedding reception",
	})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if request.Status != models.RequestStatusPending {
		t.Fatalf("expected pending, got %s", request.Status)
	}
	if len(events) != 1 || events[0].Name() != "request.sent" {
		t.Fatalf("expected a request.sent event, got %v", events)
	}

	var conversation models.Conversation
	if err := svc.db.Where("request_id = ?", request.ID).First(&conversation).Error; err != nil {
		t.Fatalf("conversation not created: %v", err)
	}
	var seed models.Message
	if err := svc.db.Where("conversation_id = ?", conversation.ID).First(&seed).Error; err != nil {
		t.Fatalf("seed message not created: %v", err)
	}
	if seed.SenderID != client.ID || seed.Content != "Please quote our wedding reception" {
		t.Fatalf("seed message wrong: %+v", seed)
	}
}

func TestSendRequestDuplicatePairConflicts(t *testing.T) {
	svc, client, _, vendor, project := newNegotiationFixture(t)
	sendTestRequest(t, svc, client, vendor.ID, project.ID)

	_, _, err := svc.SendRequest(client, vendor.ID, &models.SendRequestPayload{
		ProjectID: project.ID,
		Message:   "Asking again for the same vendor",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var count int64
	svc.db.Model(&models.ProposalRequest{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one request, got %d", count)
	}
}

func TestSendRequestOnlyClients(t *testing.T) {
	svc, _, provider, vendor, project := newNegotiationFixture(t)

	_, _, err := svc.SendRequest(provider, vendor.ID, &models.SendRequestPayload{
		ProjectID: project.ID,
		Message:   "Providers cannot ask for quotes",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSendRequestDraftProjectRejected(t *testing.T) {
	svc, client, _, vendor, _ := newNegotiationFixture(t)
	draft := createProject(t, svc.db, client, models.ProjectStatusDraft)

	_, _, err := svc.SendRequest(client, vendor.ID, &models.SendRequestPayload{
		ProjectID: draft.ID,
		Message:   "This project is still a draft",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateProposalMovesRequestToResponded(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	proposal, events, err := svc.CreateProposal(context.Background(), provider, request.ID, &models.ProposalPayload{
		Title:   "Full catering package",
		Message: "Includes staff and equipment",
		Price:   75000,
	}, nil)
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	if proposal.Status != models.ProposalStatusSent {
		t.Fatalf("expected sent, got %s", proposal.Status)
	}
	if proposal.ValidityDays != 30 {
		t.Fatalf("expected default validity 30, got %d", proposal.ValidityDays)
	}
	if len(events) != 1 || events[0].Name() != "proposal.created" {
		t.Fatalf("expected proposal.created event, got %v", events)
	}

	var reloaded models.ProposalRequest
	svc.db.First(&reloaded, request.ID)
	if reloaded.Status != models.RequestStatusResponded {
		t.Fatalf("expected responded, got %s", reloaded.Status)
	}
}

func TestCreateProposalSecondOneConflicts(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	payload := &models.ProposalPayload{Title: "Offer", Message: "Details", Price: 1000}
	if _, _, err := svc.CreateProposal(context.Background(), provider, request.ID, payload, nil); err != nil {
		t.Fatalf("first proposal: %v", err)
	}
	_, _, err := svc.CreateProposal(context.Background(), provider, request.ID, payload, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateProposalWrongVendorGets404(t *testing.T) {
	svc, client, _, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	otherProvider := createUser(t, svc.db, models.RoleProvider)
	createVendor(t, svc.db, otherProvider, nil)

	_, _, err := svc.CreateProposal(context.Background(), otherProvider, request.ID, &models.ProposalPayload{
		Title: "Hijack", Message: "Should not work", Price: 1,
	}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-addressed vendor, got %v", err)
	}
}

func TestCreateProposalDepositCannotExceedPrice(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	deposit := 2000.0
	_, _, err := svc.CreateProposal(context.Background(), provider, request.ID, &models.ProposalPayload{
		Title: "Offer", Message: "Details", Price: 1000, DepositRequired: &deposit,
	}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAcceptProposalIsTerminal(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)
	proposal, _, err := svc.CreateProposal(context.Background(), provider, request.ID, &models.ProposalPayload{
		Title: "Offer", Message: "Details", Price: 1000,
	}, nil)
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}

	accepted, events, err := svc.AcceptProposal(client, proposal.ID)
	if err != nil {
		t.Fatalf("AcceptProposal: %v", err)
	}
	if accepted.Status != models.ProposalStatusAccepted || accepted.RespondedAt == nil {
		t.Fatalf("expected accepted with responded_at, got %+v", accepted)
	}
	if len(events) != 1 || events[0].Name() != "proposal.decided" {
		t.Fatalf("expected proposal.decided event, got %v", events)
	}

	// Terminal: neither a reject nor a second accept may change it.
	if _, _, err := svc.RejectProposal(client, proposal.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on reject-after-accept, got %v", err)
	}
	if _, _, err := svc.AcceptProposal(client, proposal.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double accept, got %v", err)
	}
}

func TestDecideProposalOnlyOwner(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)
	proposal, _, _ := svc.CreateProposal(context.Background(), provider, request.ID, &models.ProposalPayload{
		Title: "Offer", Message: "Details", Price: 1000,
	}, nil)

	stranger := createUser(t, svc.db, models.RoleClient)
	if _, _, err := svc.AcceptProposal(stranger, proposal.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stranger, got %v", err)
	}
}

func TestGetRequestMarksViewedOnceForVendor(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	// The client opening their own request does not consume the pending state.
	seen, err := svc.GetRequestForUser(client, request.ID)
	if err != nil {
		t.Fatalf("GetRequestForUser(client): %v", err)
	}
	if seen.Status != models.RequestStatusPending {
		t.Fatalf("client view must not mark viewed, got %s", seen.Status)
	}

	seen, err = svc.GetRequestForUser(provider, request.ID)
	if err != nil {
		t.Fatalf("GetRequestForUser(vendor): %v", err)
	}
	if seen.Status != models.RequestStatusViewed || seen.ViewedAt == nil {
		t.Fatalf("vendor view must mark viewed, got %+v", seen)
	}
	firstViewedAt := *seen.ViewedAt

	again, err := svc.GetRequestForUser(provider, request.ID)
	if err != nil {
		t.Fatalf("second GetRequestForUser: %v", err)
	}
	if !again.ViewedAt.Equal(firstViewedAt) {
		t.Fatalf("viewed_at must not move on repeat views")
	}
}

func TestGetRequestStrangerGets404(t *testing.T) {
	svc, client, _, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	stranger := createUser(t, svc.db, models.RoleClient)
	if _, err := svc.GetRequestForUser(stranger, request.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetProposalMarksViewedForClient(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)
	proposal, _, _ := svc.CreateProposal(context.Background(), provider, request.ID, &models.ProposalPayload{
		Title: "Offer", Message: "Details", Price: 1000,
	}, nil)

	// Vendor re-reading their own proposal leaves it sent.
	seen, err := svc.GetProposalForUser(provider, proposal.ID)
	if err != nil {
		t.Fatalf("GetProposalForUser(vendor): %v", err)
	}
	if seen.Status != models.ProposalStatusSent {
		t.Fatalf("vendor view must not mark viewed, got %s", seen.Status)
	}

	seen, err = svc.GetProposalForUser(client, proposal.ID)
	if err != nil {
		t.Fatalf("GetProposalForUser(client): %v", err)
	}
	if seen.Status != models.ProposalStatusViewed || seen.ViewedAt == nil {
		t.Fatalf("client view must mark viewed, got %+v", seen)
	}
}

func TestDeclineRequest(t *testing.T) {
	svc, client, provider, vendor, project := newNegotiationFixture(t)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	declined, err := svc.DeclineRequest(provider, request.ID)
	if err != nil {
		t.Fatalf("DeclineRequest: %v", err)
	}
	if declined.Status != models.RequestStatusDeclined {
		t.Fatalf("expected declined, got %s", declined.Status)
	}

	// A declined request cannot receive a proposal.
	_, _, err = svc.CreateProposal(context.Background(), provider, request.ID, &models.ProposalPayload{
		Title: "Late offer", Message: "Too late", Price: 100,
	}, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on declined request, got %v", err)
	}
}

func TestProposalAttachmentRemovedWhenWriteFails(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStorage{}
	svc := NewNegotiationService(db, NewQuotaService(db), store)

	client := createUser(t, db, models.RoleClient)
	provider := createUser(t, db, models.RoleProvider)
	vendor := createVendor(t, db, provider, nil)
	project := createProject(t, db, client, models.ProjectStatusPublished)
	request := sendTestRequest(t, svc, client, vendor.ID, project.ID)

	// Fail the proposal insert once, after the attachment is stored.
	failInsert := true
	err := db.Callback().Create().Before("gorm:create").Register("fail_proposal_insert", func(tx *gorm.DB) {
		if failInsert && tx.Statement.Table == "proposals" {
			tx.AddError(errors.New("write failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	payload := &models.ProposalPayload{
		Title:   "Full package",
		Message: "Covers venue and catering",
		Price:   45000,
	}
	attachment := func() *ProposalAttachment {
		return &ProposalAttachment{
			Filename: "quote.pdf",
			Size:     int64(len(testPDFHead)),
			Head:     testPDFHead,
			Content:  bytes.NewReader(testPDFHead),
		}
	}

	_, _, err = svc.CreateProposal(context.Background(), provider, request.ID, payload, attachment())
	if err == nil {
		t.Fatalf("expected the insert failure to surface")
	}
	if len(store.stored) != 1 {
		t.Fatalf("attachment should have been stored before the transaction, got %d", len(store.stored))
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.stored[0].PublicID {
		t.Fatalf("orphaned attachment not removed, deleted: %v", store.deleted)
	}
	var count int64
	db.Model(&models.Proposal{}).Count(&count)
	if count != 0 {
		t.Fatalf("proposal persisted despite the failed transaction")
	}

	// The retry goes through cleanly.
	failInsert = false
	proposal, _, err := svc.CreateProposal(context.Background(), provider, request.ID, payload, attachment())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if proposal.AttachmentURL == nil {
		t.Fatalf("attachment missing after retry")
	}
}
