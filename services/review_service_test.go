package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

type reviewFixture struct {
	db       *gorm.DB
	svc      *ReviewService
	client   *models.User
	provider *models.User
	vendor   *models.VendorProfile
	admin    *models.User
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := newTestDB(t)
	provider := createUser(t, db, models.RoleProvider)
	return &reviewFixture{
		db:       db,
		svc:      NewReviewService(db),
		client:   createUser(t, db, models.RoleClient),
		provider: provider,
		vendor:   createVendor(t, db, provider, nil),
		admin:    createUser(t, db, models.RoleAdmin),
	}
}

func (f *reviewFixture) createReview(t *testing.T, rating int) *models.Review {
	t.Helper()
	review, err := f.svc.Create(f.client, &models.ReviewPayload{
		VendorID: f.vendor.ID,
		Rating:   rating,
		Comment:  "Great service overall",
	})
	if err != nil {
		t.Fatalf("Create review: %v", err)
	}
	return review
}

func TestReviewStartsPending(t *testing.T) {
	f := newReviewFixture(t)
	review := f.createReview(t, 5)
	if review.Status != models.ReviewStatusPending {
		t.Fatalf("new review must be pending, got %s", review.Status)
	}

	approved, err := f.svc.ListForVendor(f.vendor.ID)
	if err != nil {
		t.Fatalf("ListForVendor: %v", err)
	}
	if len(approved) != 0 {
		t.Fatalf("pending review must not be public")
	}
}

func TestReviewProviderCannotWrite(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.svc.Create(f.provider, &models.ReviewPayload{VendorID: f.vendor.ID, Rating: 5})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestReviewNoSelfReview(t *testing.T) {
	f := newReviewFixture(t)
	// The vendor's owner with a client account would still be the same
	// user behind the profile.
	owner := f.provider
	owner.Role = models.RoleClient
	f.db.Save(owner)

	_, err := f.svc.Create(owner, &models.ReviewPayload{VendorID: f.vendor.ID, Rating: 5})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self-review, got %v", err)
	}
}

func TestReviewOnePerProjectVendorPair(t *testing.T) {
	f := newReviewFixture(t)
	project := createProject(t, f.db, f.client, models.ProjectStatusCompleted)

	_, err := f.svc.Create(f.client, &models.ReviewPayload{
		VendorID: f.vendor.ID, ProjectID: &project.ID, Rating: 4, Comment: "Good",
	})
	if err != nil {
		t.Fatalf("first project review: %v", err)
	}
	_, err = f.svc.Create(f.client, &models.ReviewPayload{
		VendorID: f.vendor.ID, ProjectID: &project.ID, Rating: 2, Comment: "Changed my mind",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate pair, got %v", err)
	}
}

func TestReviewProjectOwnershipRequired(t *testing.T) {
	f := newReviewFixture(t)
	other := createUser(t, f.db, models.RoleClient)
	project := createProject(t, f.db, other, models.ProjectStatusCompleted)

	_, err := f.svc.Create(f.client, &models.ReviewPayload{
		VendorID: f.vendor.ID, ProjectID: &project.ID, Rating: 4,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestModerationRecomputesAggregates(t *testing.T) {
	f := newReviewFixture(t)
	first := f.createReview(t, 5)

	other := createUser(t, f.db, models.RoleClient)
	second, err := f.svc.Create(other, &models.ReviewPayload{VendorID: f.vendor.ID, Rating: 4, Comment: "Solid"})
	if err != nil {
		t.Fatalf("second review: %v", err)
	}

	if _, err := f.svc.Approve(f.admin, first.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.svc.Approve(f.admin, second.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	var vendor models.VendorProfile
	f.db.First(&vendor, f.vendor.ID)
	if vendor.ReviewCount != 2 || vendor.Rating != 4.5 {
		t.Fatalf("aggregates after approvals: count=%d rating=%v", vendor.ReviewCount, vendor.Rating)
	}

	// Re-moderating an approved review pulls it out of the aggregates.
	if _, err := f.svc.Reject(f.admin, second.ID, "spam"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	f.db.First(&vendor, f.vendor.ID)
	if vendor.ReviewCount != 1 || vendor.Rating != 5 {
		t.Fatalf("aggregates after rejection: count=%d rating=%v", vendor.ReviewCount, vendor.Rating)
	}

	if err := f.svc.Delete(first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	f.db.First(&vendor, f.vendor.ID)
	if vendor.ReviewCount != 0 || vendor.Rating != 0 {
		t.Fatalf("aggregates after delete: count=%d rating=%v", vendor.ReviewCount, vendor.Rating)
	}
}

func TestModerationStampsAuditFields(t *testing.T) {
	f := newReviewFixture(t)
	review := f.createReview(t, 3)

	moderated, err := f.svc.Reject(f.admin, review.ID, "off topic")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if moderated.Status != models.ReviewStatusRejected {
		t.Fatalf("status not rejected: %s", moderated.Status)
	}

	var reloaded models.Review
	f.db.First(&reloaded, review.ID)
	if reloaded.ModeratedByID == nil || *reloaded.ModeratedByID != f.admin.ID {
		t.Fatalf("moderator not recorded")
	}
	if reloaded.ModeratedAt == nil {
		t.Fatalf("moderation time not recorded")
	}
	if reloaded.ModerationNote != "off topic" {
		t.Fatalf("moderation note not recorded: %q", reloaded.ModerationNote)
	}
}

func TestVendorRespondOnceOnApproved(t *testing.T) {
	f := newReviewFixture(t)
	review := f.createReview(t, 4)

	if _, err := f.svc.VendorRespond(f.provider, review.ID, "Thanks!"); !errors.Is(err, ErrValidation) {
		t.Fatalf("responding to a pending review must fail, got %v", err)
	}

	if _, err := f.svc.Approve(f.admin, review.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	stranger := createUser(t, f.db, models.RoleProvider)
	createVendor(t, f.db, stranger, nil)
	if _, err := f.svc.VendorRespond(stranger, review.ID, "Not mine"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("another vendor must not respond, got %v", err)
	}

	if _, err := f.svc.VendorRespond(f.provider, review.ID, "Thank you for the kind words"); err != nil {
		t.Fatalf("VendorRespond: %v", err)
	}
	if _, err := f.svc.VendorRespond(f.provider, review.ID, "One more thing"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second response must conflict, got %v", err)
	}
}

func TestListPendingOldestFirst(t *testing.T) {
	f := newReviewFixture(t)
	first := f.createReview(t, 5)
	other := createUser(t, f.db, models.RoleClient)
	second, err := f.svc.Create(other, &models.ReviewPayload{VendorID: f.vendor.ID, Rating: 1, Comment: "Bad"})
	if err != nil {
		t.Fatalf("second review: %v", err)
	}

	pending, err := f.svc.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("pending queue out of order: %+v", pending)
	}
}
