package routes

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"event-marketplace-server/models"
)

func TestPublicVendorBrowsing(t *testing.T) {
	server := newTestServer(t)
	provider, _ := server.createUserWithToken(t, models.RoleProvider)

	active := models.VendorProfile{UserID: provider.ID, BusinessName: "Salle Al Khaima", Description: "Venue", IsActive: true}
	server.db.Create(&active)

	resp := server.do(t, http.MethodGet, "/api/v1/vendors", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list vendors: %d %s", resp.Code, resp.Body.String())
	}
	body := decode(t, resp)
	if body["total"].(float64) != 1 {
		t.Fatalf("expected 1 vendor, got %v", body["total"])
	}

	resp = server.do(t, http.MethodGet, "/api/v1/vendors/"+itoa(active.ID), "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("vendor detail: %d", resp.Code)
	}

	if resp := server.do(t, http.MethodGet, "/api/v1/vendors/99999", "", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("unknown vendor: %d", resp.Code)
	}

	// Inactive vendors 404 for anonymous viewers.
	server.db.Model(&active).Update("is_active", false)
	if resp := server.do(t, http.MethodGet, "/api/v1/vendors/"+itoa(active.ID), "", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("inactive vendor leaked: %d", resp.Code)
	}
}

func TestVendorProfileManagementRequiresProvider(t *testing.T) {
	server := newTestServer(t)
	_, clientToken := server.createUserWithToken(t, models.RoleClient)
	_, providerToken := server.createUserWithToken(t, models.RoleProvider)

	serviceType := models.ServiceType{Name: "Venues"}
	server.db.Create(&serviceType)

	payload := gin.H{
		"business_name":    "Salle Al Khaima",
		"description":      "Receptions up to 400 guests",
		"service_type_ids": []uint{serviceType.ID},
	}

	if resp := server.do(t, http.MethodPut, "/api/v1/vendor/profile", clientToken, payload); resp.Code != http.StatusForbidden {
		t.Fatalf("client saved a vendor profile: %d", resp.Code)
	}
	resp := server.do(t, http.MethodPut, "/api/v1/vendor/profile", providerToken, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("save profile: %d %s", resp.Code, resp.Body.String())
	}

	resp = server.do(t, http.MethodGet, "/api/v1/vendor/storage", providerToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("storage info: %d %s", resp.Code, resp.Body.String())
	}
	if _, ok := decode(t, resp)["storage"]; !ok {
		t.Fatalf("storage info misses payload: %s", resp.Body.String())
	}
}

func TestProjectEndpointsStatusMapping(t *testing.T) {
	server := newTestServer(t)
	_, clientToken := server.createUserWithToken(t, models.RoleClient)
	_, strangerToken := server.createUserWithToken(t, models.RoleClient)

	serviceType := models.ServiceType{Name: "Catering"}
	server.db.Create(&serviceType)

	payload := gin.H{
		"title":            "Wedding reception",
		"description":      "A summer wedding for 120 guests",
		"event_date":       time.Now().AddDate(0, 2, 0).Format("2006-01-02"),
		"city":             "Nouakchott",
		"budget_min":       50000,
		"service_type_ids": []uint{serviceType.ID},
	}
	resp := server.do(t, http.MethodPost, "/api/v1/projects", clientToken, payload)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create project: %d %s", resp.Code, resp.Body.String())
	}
	project := decode(t, resp)["project"].(map[string]interface{})
	id := itoa(uint(project["id"].(float64)))

	// Past date maps to 400.
	bad := gin.H{}
	for k, v := range payload {
		bad[k] = v
	}
	bad["event_date"] = "2020-01-01"
	if resp := server.do(t, http.MethodPost, "/api/v1/projects", clientToken, bad); resp.Code != http.StatusBadRequest {
		t.Fatalf("past date: %d", resp.Code)
	}

	// Drafts are invisible to strangers.
	if resp := server.do(t, http.MethodGet, "/api/v1/projects/"+id, strangerToken, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("draft leaked: %d", resp.Code)
	}
	// Strangers cannot drive the lifecycle.
	if resp := server.do(t, http.MethodPost, "/api/v1/projects/"+id+"/publish", strangerToken, nil); resp.Code != http.StatusForbidden {
		t.Fatalf("stranger publish: %d", resp.Code)
	}

	if resp := server.do(t, http.MethodPost, "/api/v1/projects/"+id+"/publish", clientToken, nil); resp.Code != http.StatusOK {
		t.Fatalf("publish: %d %s", resp.Code, resp.Body.String())
	}
	// Illegal transition maps to 409.
	if resp := server.do(t, http.MethodPost, "/api/v1/projects/"+id+"/complete", clientToken, nil); resp.Code != http.StatusConflict {
		t.Fatalf("published to completed: %d", resp.Code)
	}
}

func TestNegotiationEndToEnd(t *testing.T) {
	server := newTestServer(t)
	client, clientToken := server.createUserWithToken(t, models.RoleClient)
	provider, providerToken := server.createUserWithToken(t, models.RoleProvider)

	vendor := models.VendorProfile{UserID: provider.ID, BusinessName: "Traiteur Atar", Description: "Catering", IsActive: true}
	server.db.Create(&vendor)
	project := models.Project{ClientID: client.ID, Title: "Graduation party", Description: "Buffet for 80",
		EventDate: time.Now().AddDate(0, 1, 0), City: "Nouakchott", BudgetMin: 20000,
		Status: models.ProjectStatusPublished}
	server.db.Create(&project)

	resp := server.do(t, http.MethodPost, "/api/v1/requests", clientToken, gin.H{
		"vendor_id":  vendor.ID,
		"project_id": project.ID,
		"message":    "Please quote a buffet for eighty guests",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("send request: %d %s", resp.Code, resp.Body.String())
	}
	request := decode(t, resp)["request"].(map[string]interface{})
	requestID := itoa(uint(request["id"].(float64)))

	// The same pair again conflicts.
	resp = server.do(t, http.MethodPost, "/api/v1/requests", clientToken, gin.H{
		"vendor_id":  vendor.ID,
		"project_id": project.ID,
		"message":    "Please quote a buffet for eighty guests",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate request: %d", resp.Code)
	}

	// The vendor answers with a proposal.
	resp = server.do(t, http.MethodPost, "/api/v1/requests/"+requestID+"/proposal", providerToken, gin.H{
		"title":   "Buffet package",
		"message": "Full buffet with service staff",
		"price":   35000,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create proposal: %d %s", resp.Code, resp.Body.String())
	}
	proposal := decode(t, resp)["proposal"].(map[string]interface{})
	proposalID := itoa(uint(proposal["id"].(float64)))

	// Only the client decides; the vendor touching it gets 404.
	if resp := server.do(t, http.MethodPost, "/api/v1/proposals/"+proposalID+"/accept", providerToken, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("vendor decided own proposal: %d", resp.Code)
	}
	if resp := server.do(t, http.MethodPost, "/api/v1/proposals/"+proposalID+"/accept", clientToken, nil); resp.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", resp.Code, resp.Body.String())
	}
	// Deciding twice conflicts.
	if resp := server.do(t, http.MethodPost, "/api/v1/proposals/"+proposalID+"/reject", clientToken, nil); resp.Code != http.StatusConflict {
		t.Fatalf("re-decide: %d", resp.Code)
	}

	// The conversation created by the request carries the seed message.
	resp = server.do(t, http.MethodGet, "/api/v1/conversations", clientToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list conversations: %d %s", resp.Code, resp.Body.String())
	}
	conversations := decode(t, resp)["conversations"].([]interface{})
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
}

func TestMessagingEndpoints(t *testing.T) {
	server := newTestServer(t)
	client, clientToken := server.createUserWithToken(t, models.RoleClient)
	provider, providerToken := server.createUserWithToken(t, models.RoleProvider)
	_, strangerToken := server.createUserWithToken(t, models.RoleClient)

	vendor := models.VendorProfile{UserID: provider.ID, BusinessName: "Orchestre Sahel", Description: "Live music", IsActive: true}
	server.db.Create(&vendor)
	project := models.Project{ClientID: client.ID, Title: "Engagement party", Description: "Evening event",
		EventDate: time.Now().AddDate(0, 1, 0), City: "Nouakchott", BudgetMin: 15000,
		Status: models.ProjectStatusPublished}
	server.db.Create(&project)

	resp := server.do(t, http.MethodPost, "/api/v1/requests", clientToken, gin.H{
		"vendor_id":  vendor.ID,
		"project_id": project.ID,
		"message":    "Can you play from nine to midnight?",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("send request: %d %s", resp.Code, resp.Body.String())
	}

	var conversation models.Conversation
	if err := server.db.First(&conversation).Error; err != nil {
		t.Fatalf("conversation not created: %v", err)
	}
	convID := itoa(conversation.ID)

	resp = server.doForm(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", providerToken, url.Values{
		"content": {"Yes, our usual set runs three hours"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("post message: %d %s", resp.Code, resp.Body.String())
	}

	// Outsiders get 404, not 403.
	if resp := server.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"/messages", strangerToken, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("stranger read conversation: %d", resp.Code)
	}

	resp = server.do(t, http.MethodGet, "/api/v1/messages/unread-count", clientToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("unread count: %d %s", resp.Code, resp.Body.String())
	}
	if decode(t, resp)["unread_count"].(float64) != 1 {
		t.Fatalf("expected 1 unread, got %s", resp.Body.String())
	}

	if resp := server.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/read", clientToken, nil); resp.Code != http.StatusOK {
		t.Fatalf("mark read: %d", resp.Code)
	}
	resp = server.do(t, http.MethodGet, "/api/v1/messages/unread-count", clientToken, nil)
	if decode(t, resp)["unread_count"].(float64) != 0 {
		t.Fatalf("unread after mark-read: %s", resp.Body.String())
	}
}

func TestReferenceAndContactEndpoints(t *testing.T) {
	server := newTestServer(t)

	server.db.Create(&models.ServiceType{Name: "Catering"})
	server.db.Create(&models.EventType{Name: "Wedding"})

	resp := server.do(t, http.MethodGet, "/api/v1/reference/service-types", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("service types: %d %s", resp.Code, resp.Body.String())
	}
	types := decode(t, resp)["service_types"].([]interface{})
	if len(types) != 1 {
		t.Fatalf("expected 1 service type, got %d", len(types))
	}

	resp = server.do(t, http.MethodPost, "/api/v1/contact", "", gin.H{
		"name":    "Cheikh",
		"email":   "cheikh@example.com",
		"message": "Do you cover Rosso?",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("contact submit: %d %s", resp.Code, resp.Body.String())
	}

	// Bad subject fails binding.
	resp = server.do(t, http.MethodPost, "/api/v1/contact", "", gin.H{
		"name":    "Cheikh",
		"email":   "cheikh@example.com",
		"subject": "spam",
		"message": "Do you cover Rosso?",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad subject: %d", resp.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUserWithToken(t, models.RoleClient)

	server.db.Create(&models.Notification{
		UserID: user.ID, Type: models.NotificationTypeSystem,
		Title: "Welcome", Message: "Thanks for joining",
	})

	resp := server.do(t, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("unread count: %d %s", resp.Code, resp.Body.String())
	}
	if decode(t, resp)["unread_count"].(float64) != 1 {
		t.Fatalf("expected 1 unread: %s", resp.Body.String())
	}

	if resp := server.do(t, http.MethodPost, "/api/v1/notifications/read-all", token, nil); resp.Code != http.StatusOK {
		t.Fatalf("read all: %d", resp.Code)
	}
	resp = server.do(t, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	if decode(t, resp)["unread_count"].(float64) != 0 {
		t.Fatalf("unread after read-all: %s", resp.Body.String())
	}
}
