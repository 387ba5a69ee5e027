package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authhdl "talking_menu/internal/api/auth/handler"
	authmodels "talking_menu/internal/api/auth/models"
	authsvc "talking_menu/internal/api/auth/service"
	"talking_menu/internal/api/authz"
	basehdl "talking_menu/internal/api/base/handler"
	chathdl "talking_menu/internal/api/chat/handler"
	chatsvc "talking_menu/internal/api/chat/service"
	dashboardhdl "talking_menu/internal/api/dashboard/handler"
	dashboardsvc "talking_menu/internal/api/dashboard/service"
	employeehdl "talking_menu/internal/api/employee/handler"
	employeesvc "talking_menu/internal/api/employee/service"
	"talking_menu/internal/api/middleware"
	restauranthdl "talking_menu/internal/api/restaurant/handler"
	restaurantsvc "talking_menu/internal/api/restaurant/service"
	subscriptionhdl "talking_menu/internal/api/subscription/handler"
	submodels "talking_menu/internal/api/subscription/models"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/llm"
	"talking_menu/internal/metrics"
	"talking_menu/internal/store/memstore"
	"talking_menu/internal/utility"
)

const testSecret = "router-test-secret"

type cannedStreamer struct {
	chunks []string
}

func (s *cannedStreamer) StreamChat(ctx context.Context, _ llm.StreamRequest, onDelta func(string) error) (*llm.StreamResult, error) {
	text := ""
	for _, c := range s.chunks {
		if err := onDelta(c); err != nil {
			return nil, err
		}
		text += c
	}
	return &llm.StreamResult{Text: text, Model: "gpt-test", Usage: &llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, nil
}

type testEnv struct {
	app      *fiber.App
	db       *memstore.DB
	verifier *utility.LocalJWTVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memstore.New()
	stores := db.Stores()
	verifier := utility.NewLocalJWTVerifier(testSecret)

	catalog := subsvc.NewCatalogService(stores.Packages)
	_, err := catalog.Seed(context.Background(), submodels.DefaultPackages())
	require.NoError(t, err)
	billing := subsvc.NewBillingService(stores)
	accounting := subsvc.NewAccountingService(stores)
	dashboards := dashboardsvc.NewLifecycleService(stores, catalog, billing)
	restaurants := restaurantsvc.NewLifecycleService(stores, dashboards)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	relay := chatsvc.NewRelayService(stores, accounting, &cannedStreamer{chunks: []string{"Try ", "the pho."}}, chatsvc.NoopLocker{}, m, 10)
	authorizer := authz.NewAuthorizer(stores.Dashboards, stores.Restaurants)

	app := fiber.New()
	SetupRoutes(app, &Handlers{
		Auth:         middleware.NewAuthenticator(verifier, stores.Users),
		Authorizer:   authorizer,
		System:       basehdl.NewSystemHandler(nil),
		User:         authhdl.NewAuthHandler(authsvc.NewAuthService(stores.Users)),
		Dashboard:    dashboardhdl.NewDashboardHandler(dashboards),
		Restaurant:   restauranthdl.NewRestaurantHandler(restaurants, restaurantsvc.NewAnalyticsReader(stores)),
		Config:       restauranthdl.NewConfigHandler(restaurantsvc.NewConfigService(stores)),
		Employee:     employeehdl.NewEmployeeHandler(employeesvc.NewAccessService(stores, nil, "http://localhost:3000"), authorizer),
		Subscription: subscriptionhdl.NewSubscriptionHandler(catalog, billing, accounting),
		Chat:         chathdl.NewChatHandler(relay, chatsvc.NewQueryService(stores)),
	})
	return &testEnv{app: app, db: db, verifier: verifier}
}

func (e *testEnv) token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := e.verifier.IssueToken(uid, uid+"@example.com", uid, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func decode(t *testing.T, raw []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

// setupRestaurant tạo owner với dashboard và một nhà hàng, trả về id nhà hàng
func (e *testEnv) setupRestaurant(t *testing.T, ownerUID string) string {
	t.Helper()
	_, restaurantID := e.setupDashboard(t, ownerUID)
	return restaurantID
}

// setupDashboard giống setupRestaurant nhưng trả cả id dashboard
func (e *testEnv) setupDashboard(t *testing.T, ownerUID string) (string, string) {
	t.Helper()
	e.db.PutUser(authmodels.User{FirebaseUID: ownerUID, Email: ownerUID + "@example.com", Roles: []string{authmodels.RoleRestaurantMainAdmin}})
	tok := e.token(t, ownerUID)

	resp, raw := e.do(t, http.MethodPost, "/api/dashboards", tok, map[string]string{})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var dashboard struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &dashboard))

	resp, raw = e.do(t, http.MethodPost, "/api/dashboards/"+dashboard.ID+"/restaurants", tok, map[string]string{"name": "Pho 24"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var restaurant struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &restaurant))
	require.NotEmpty(t, restaurant.ID)
	return dashboard.ID, restaurant.ID
}

func TestRoutes_Health(t *testing.T) {
	e := newTestEnv(t)
	resp, raw := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode(t, raw).Success)
}

func TestRoutes_RequireAuth(t *testing.T) {
	e := newTestEnv(t)

	resp, raw := e.do(t, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, decode(t, raw).Success)

	resp, _ = e.do(t, http.MethodGet, "/api/user", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// user chưa có trong DB được tạo với role diner
	resp, raw = e.do(t, http.MethodGet, "/api/user", e.token(t, "new-diner"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var user authmodels.User
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &user))
	assert.Equal(t, "new-diner", user.FirebaseUID)
	assert.Contains(t, user.Roles, authmodels.RoleDiner)
}

func TestRoutes_DashboardRequiresMainAdmin(t *testing.T) {
	e := newTestEnv(t)
	resp, raw := e.do(t, http.MethodPost, "/api/dashboards", e.token(t, "diner"), map[string]string{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))
}

func TestRoutes_RestaurantAuthorization(t *testing.T) {
	e := newTestEnv(t)
	restaurantID := e.setupRestaurant(t, "owner")

	resp, raw := e.do(t, http.MethodGet, "/api/restaurant/"+restaurantID, e.token(t, "owner"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	e.db.PutUser(authmodels.User{FirebaseUID: "stranger", Email: "stranger@example.com", Roles: []string{authmodels.RoleRestaurantMainAdmin}})
	resp, _ = e.do(t, http.MethodGet, "/api/restaurant/"+restaurantID, e.token(t, "stranger"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/restaurant/"+primitive.NewObjectID().Hex(), e.token(t, "owner"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/restaurant/"+restaurantID, e.token(t, "stranger"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoutes_PlatformAdminOnly(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodGet, "/api/restaurants", e.token(t, "diner"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	e.db.PutUser(authmodels.User{FirebaseUID: "root", Email: "root@example.com", Roles: []string{authmodels.RoleTalkingMenuAdmin}})
	resp, raw := e.do(t, http.MethodGet, "/api/restaurants", e.token(t, "root"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = e.do(t, http.MethodPut, "/api/user/diner/role", e.token(t, "root"), map[string]string{"role": authmodels.RoleRestaurantMainAdmin})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	resp, raw = e.do(t, http.MethodPost, "/api/dashboards", e.token(t, "diner"), map[string]string{})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
}

func TestRoutes_PublicMenuRead(t *testing.T) {
	e := newTestEnv(t)
	restaurantID := e.setupRestaurant(t, "owner")

	resp, raw := e.do(t, http.MethodGet, "/api/restaurants/"+restaurantID+"/menu", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, _ = e.do(t, http.MethodPost, "/api/restaurants/"+restaurantID+"/menu", "", map[string]interface{}{
		"menuItems": []map[string]interface{}{{"name": "Pho bo", "price": 5.5}},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw = e.do(t, http.MethodPost, "/api/restaurants/"+restaurantID+"/menu", e.token(t, "owner"), map[string]interface{}{
		"menuItems": []map[string]interface{}{{"name": "Pho bo", "price": 5.5}},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
}

func TestRoutes_AnonymousChatStreamsAndReadsBack(t *testing.T) {
	e := newTestEnv(t)
	restaurantID := e.setupRestaurant(t, "owner")

	resp, raw := e.do(t, http.MethodPost, "/api/chat/send-message", "", map[string]string{
		"restaurantId": restaurantID,
		"message":      "What should I eat?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "Try the pho.", string(raw))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	chatID := resp.Header.Get(chathdl.HeaderChatID)
	sessionToken := resp.Header.Get(chathdl.HeaderSessionToken)
	require.NotEmpty(t, chatID)
	require.NotEmpty(t, sessionToken)

	resp, _ = e.do(t, http.MethodGet, "/api/chat/"+chatID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/chat/"+chatID+"?sessionToken="+sessionToken, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var chat struct {
		Messages []struct {
			Sender  string `json:"sender"`
			Message string `json:"message"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &chat))
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "Try the pho.", chat.Messages[1].Message)
}

func TestRoutes_SendMessageValidation(t *testing.T) {
	e := newTestEnv(t)

	resp, raw := e.do(t, http.MethodPost, "/api/chat/send-message", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, decode(t, raw).Success)

	resp, _ = e.do(t, http.MethodPost, "/api/chat/send-message", "", map[string]string{
		"restaurantId": primitive.NewObjectID().Hex(),
		"message":      "hi",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoutes_EmployeeAccessRequiresDashboardOwner(t *testing.T) {
	e := newTestEnv(t)
	dashboardID, restaurantID := e.setupDashboard(t, "owner")
	strangerDashboard, _ := e.setupDashboard(t, "stranger")
	e.db.PutUser(authmodels.User{FirebaseUID: "waiter", Email: "waiter@example.com", Roles: []string{authmodels.RoleDiner}})

	grant := map[string]string{"email": "waiter@example.com", "restaurantId": restaurantID, "dashboardId": dashboardID}
	revoke := map[string]string{"userId": "waiter", "restaurantId": restaurantID, "dashboardId": dashboardID}

	// main admin của dashboard khác
	resp, raw := e.do(t, http.MethodPost, "/api/employee-access", e.token(t, "stranger"), grant)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))
	resp, raw = e.do(t, http.MethodDelete, "/api/employee-access/revoke", e.token(t, "stranger"), revoke)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))

	// dùng dashboard của mình với nhà hàng của người khác
	resp, raw = e.do(t, http.MethodPost, "/api/employee-access", e.token(t, "stranger"), map[string]string{
		"email": "waiter@example.com", "restaurantId": restaurantID, "dashboardId": strangerDashboard,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))

	// không có role main admin
	resp, _ = e.do(t, http.MethodPost, "/api/employee-access", e.token(t, "waiter"), grant)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// dashboard không tồn tại
	unknown := primitive.NewObjectID().Hex()
	resp, raw = e.do(t, http.MethodPost, "/api/employee-access", e.token(t, "owner"), map[string]string{
		"email": "waiter@example.com", "restaurantId": restaurantID, "dashboardId": unknown,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(raw))
	resp, raw = e.do(t, http.MethodDelete, "/api/employee-access/revoke", e.token(t, "owner"), map[string]string{
		"userId": "waiter", "restaurantId": restaurantID, "dashboardId": unknown,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(raw))

	waiter, err := e.db.Stores().Users.FindByUID(context.Background(), "waiter")
	require.NoError(t, err)
	assert.Empty(t, waiter.AccessibleRestaurants)

	// owner cấp rồi thu hồi
	resp, raw = e.do(t, http.MethodPost, "/api/employee-access", e.token(t, "owner"), grant)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	waiter, err = e.db.Stores().Users.FindByUID(context.Background(), "waiter")
	require.NoError(t, err)
	assert.Len(t, waiter.AccessibleRestaurants, 1)

	resp, raw = e.do(t, http.MethodDelete, "/api/employee-access/revoke", e.token(t, "owner"), revoke)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	waiter, err = e.db.Stores().Users.FindByUID(context.Background(), "waiter")
	require.NoError(t, err)
	assert.Empty(t, waiter.AccessibleRestaurants)
}
