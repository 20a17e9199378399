package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"event-marketplace-server/cache"
	"event-marketplace-server/config"
	"event-marketplace-server/database"
	"event-marketplace-server/models"
	"event-marketplace-server/services"
	"event-marketplace-server/storage"
	"event-marketplace-server/utils"
	"event-marketplace-server/websocket"
)

// nextTestIP hands each test its own client address so the shared rate
// limiter never couples tests.
var nextTestIP uint64

// nullStorage satisfies storage.Storage without a real backend.
type nullStorage struct{}

func (nullStorage) Store(ctx context.Context, r io.Reader, folder, filename string, size int64) (storage.Handle, error) {
	return storage.Handle{
		URL:      fmt.Sprintf("https://cdn.test/%s/%s", folder, filename),
		PublicID: fmt.Sprintf("%s/%s", folder, filename),
		Size:     size,
	}, nil
}

func (nullStorage) Delete(ctx context.Context, publicID string) error { return nil }

// nullDispatcher drops events. Dispatch side effects are covered by the
// service tests.
type nullDispatcher struct{}

func (nullDispatcher) Dispatch(events ...services.Event) {}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	ip     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()

	dsn := fmt.Sprintf("file:routes-%s?mode=memory&cache=shared", t.Name())
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
	// Auth and admin handlers read the package-level handle.
	database.DB = db

	quota := services.NewQuotaService(db)
	store := nullStorage{}

	router := gin.New()
	RegisterRoutes(router, Deps{
		Hub:             websocket.NewHub(),
		Dispatcher:      nullDispatcher{},
		JWT:             services.NewJWTService(db, 24),
		Vendors:         services.NewVendorService(db, quota, store),
		Projects:        services.NewProjectService(db),
		Negotiation:     services.NewNegotiationService(db, quota, store),
		Messaging:       services.NewMessagingService(db, quota, store),
		Notifications:   services.NewNotificationService(db),
		Reviews:         services.NewReviewService(db),
		Recommendations: services.NewRecommendationService(db),
		Reference:       services.NewReferenceService(db, cache.NewMemoryCache()),
		Contact:         services.NewContactService(db),
		Subscriptions:   services.NewSubscriptionService(db),
		Quota:           quota,
	})

	ip := fmt.Sprintf("10.1.%d.%d", atomic.AddUint64(&nextTestIP, 1)%250+1, 1)
	return &testServer{router: router, db: db, ip: ip}
}

// do performs a JSON request and returns the recorder.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = s.ip + ":52000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

// doForm performs a form-encoded request, used by the endpoints that
// accept multipart uploads and read their fields via PostForm.
func (s *testServer) doForm(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.RemoteAddr = s.ip + ":52000"
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// decode unmarshals a response body into a map for spot checks.
func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

// createUserWithToken seeds a user directly and mints an access token,
// bypassing the register endpoint and its rate limit.
func (s *testServer) createUserWithToken(t *testing.T, role models.UserRole) (*models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		FullName:     fmt.Sprintf("%s user", role),
		Email:        fmt.Sprintf("%s-%d@example.com", role, atomic.AddUint64(&nextTestIP, 1)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return &user, token
}
