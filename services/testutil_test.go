package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"event-marketplace-server/database"
	"event-marketplace-server/models"
	"event-marketplace-server/storage"
)

var (
	testPNGHead  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	testPDFHead  = []byte("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	testTextHead = []byte("#!/bin/sh\necho pwned\n")
)

// newTestDB opens a fresh in-memory database migrated to the current
// schema. Each test gets its own named memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{
		FullName:     fmt.Sprintf("%s user", role),
		Email:        fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createTier(t *testing.T, db *gorm.DB, name string, priority, maxImages int, visible bool) *models.SubscriptionTier {
	t.Helper()
	tier := models.SubscriptionTier{
		Name:            name,
		Slug:            name,
		DisplayPriority: priority,
		IsVisibleInList: visible,
		MaxImages:       maxImages,
	}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}
	return &tier
}

func createVendor(t *testing.T, db *gorm.DB, owner *models.User, tier *models.SubscriptionTier) *models.VendorProfile {
	t.Helper()
	vendor := models.VendorProfile{
		UserID:       owner.ID,
		BusinessName: fmt.Sprintf("Business of %s", owner.FullName),
		Description:  "Full service event vendor",
		IsActive:     true,
	}
	if tier != nil {
		vendor.SubscriptionTierID = &tier.ID
	}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return &vendor
}

func createProject(t *testing.T, db *gorm.DB, client *models.User, status models.ProjectStatus) *models.Project {
	t.Helper()
	project := models.Project{
		ClientID:    client.ID,
		Title:       "Wedding reception",
		Description: "A summer wedding for 120 guests",
		EventDate:   time.Now().AddDate(0, 2, 0),
		City:        "Nouakchott",
		BudgetMin:   50000,
		Status:      status,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return &project
}

// sendTestRequest drives the full client-side request creation.
func sendTestRequest(t *testing.T, svc *NegotiationService, client *models.User, vendorID, projectID uint) *models.ProposalRequest {
	t.Helper()
	request, _, err := svc.SendRequest(client, vendorID, &models.SendRequestPayload{
		ProjectID: projectID,
		Message:   "We would love a quote for our event",
	})
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	return request
}

// fakeStorage records stores and deletes without touching a network.
type fakeStorage struct {
	stored  []storage.Handle
	deleted []string
	failAll bool
}

func (f *fakeStorage) Store(ctx context.Context, r io.Reader, folder, filename string, size int64) (storage.Handle, error) {
	if f.failAll {
		return storage.Handle{}, fmt.Errorf("storage unavailable")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return storage.Handle{}, err
	}
	handle := storage.Handle{
		URL:      "https://cdn.test/" + folder + "/" + filename,
		PublicID: folder + "/" + filename,
		Size:     size,
	}
	f.stored = append(f.stored, handle)
	return handle, nil
}

func (f *fakeStorage) Delete(ctx context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func uploadOf(name string, size int64, head []byte) *AttachmentUpload {
	return &AttachmentUpload{
		Filename: name,
		Size:     size,
		Head:     head,
		Content:  bytes.NewReader(head),
	}
}
