package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscan/medscan-golang/internal/auth"
	"github.com/medscan/medscan-golang/internal/handlers"
	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/routes"
	"github.com/medscan/medscan-golang/internal/scan"
	"github.com/medscan/medscan-golang/internal/service"
	"github.com/medscan/medscan-golang/internal/store"
)

type testApp struct {
	router   *gin.Engine
	store    *store.Store
	tokens   *auth.TokenManager
	handlers *handlers.Handlers
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	notifications := service.NewNotificationService(st)

	h := &handlers.Handlers{
		Tokens:        tokens,
		Users:         st.Users,
		Catalog:       service.NewCatalogService(st),
		Cart:          service.NewCartService(st),
		Orders:        service.NewOrderService(st, notifications, nil),
		Notifications: notifications,
	}
	return &testApp{router: routes.SetupRouter(h, tokens), store: st, tokens: tokens, handlers: h}
}

func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// seedAdmin creates an admin directly in the store; registration never
// grants the role.
func (a *testApp) seedAdmin(t *testing.T) string {
	t.Helper()
	var password models.Password
	require.NoError(t, password.Set("admin-password"))
	admin := &models.User{
		Role:         models.RoleAdmin,
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: password.Hash,
	}
	require.NoError(t, a.store.Users.Create(context.Background(), admin))
	token, err := a.tokens.Generate(admin.ID)
	require.NoError(t, err)
	return token
}

func (a *testApp) registerUser(t *testing.T, email string) string {
	t.Helper()
	w := a.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Asha Verma",
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func (a *testApp) seedMedicine(t *testing.T, name, price string, rx bool) int64 {
	t.Helper()
	m := &models.Medicine{
		Name: name, Slug: name, Letter: name[:1],
		Manufacturer: "Acme", Composition: "x",
		Price: price, PrescriptionRequired: rx,
	}
	require.NoError(t, a.store.Medicines.Create(context.Background(), m))
	return m.ID
}

func shippingAddressJSON() gin.H {
	return gin.H{
		"name": "Asha Verma", "phone": "9876543210",
		"address": "12 MG Road", "city": "Pune",
		"state": "Maharashtra", "zipCode": "411001",
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	app := newTestApp(t)

	token := app.registerUser(t, "asha@example.com")

	// Duplicate email conflicts.
	w := app.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Other", "email": "asha@example.com", "password": "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "asha@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "asha@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.request(t, http.MethodGet, "/api/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "cart@example.com")
	medID := app.seedMedicine(t, "Paracetamol", "₹45.00", false)

	w := app.request(t, http.MethodPost, "/api/cart/add", token, gin.H{
		"medicineId": medID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode(t, w)["cart"].(map[string]any)
	assert.Equal(t, 90.0, cart["totalAmount"])

	// Unknown medicine is a 404.
	w = app.request(t, http.MethodPost, "/api/cart/add", token, gin.H{
		"medicineId": 9999, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Quantity zero removes the line.
	w = app.request(t, http.MethodPut, "/api/cart/update", token, gin.H{"medicineId": medID, "quantity": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart = decode(t, w)["cart"].(map[string]any)
	assert.Empty(t, cart["items"])
}

func TestOrderFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "orders@example.com")
	adminToken := app.seedAdmin(t)
	medID := app.seedMedicine(t, "Ibuprofen", "₹35.00", false)

	// Checkout with an empty cart fails.
	w := app.request(t, http.MethodPost, "/api/orders/create", token, gin.H{
		"shippingAddress": shippingAddressJSON(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(t, http.MethodPost, "/api/cart/add", token, gin.H{"medicineId": medID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodPost, "/api/orders/create", token, gin.H{
		"shippingAddress": shippingAddressJSON(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "confirmed", order["status"])
	orderID := int64(order["id"].(float64))

	// A regular user cannot hit the admin status endpoint.
	w = app.request(t, http.MethodPut, fmt.Sprintf("/api/orders/admin/%d/status", orderID), token, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.request(t, http.MethodPut, fmt.Sprintf("/api/orders/admin/%d/status", orderID), adminToken, gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Skipping ahead in the lifecycle conflicts.
	w = app.request(t, http.MethodPut, fmt.Sprintf("/api/orders/admin/%d/status", orderID), adminToken, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown status is a bad request.
	w = app.request(t, http.MethodPut, fmt.Sprintf("/api/orders/admin/%d/status", orderID), adminToken, gin.H{"status": "misplaced"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The other user cannot read this order.
	otherToken := app.registerUser(t, "other@example.com")
	w = app.request(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner sees it in their listing with notifications to match.
	w = app.request(t, http.MethodGet, "/api/orders/my-orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode(t, w)["orders"].([]any)
	assert.Len(t, orders, 1)

	w = app.request(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["notifications"].([]any), 2)
	assert.Equal(t, 2.0, body["unreadCount"])
}

func TestMedicineEndpoints(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.seedAdmin(t)
	userToken := app.registerUser(t, "browse@example.com")

	w := app.request(t, http.MethodPost, "/api/medicines", adminToken, gin.H{
		"name": "Crocin Advance", "manufacturer": "GSK",
		"composition": "Paracetamol 500mg", "price": "₹30.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Regular users cannot ingest catalog records.
	w = app.request(t, http.MethodPost, "/api/medicines", userToken, gin.H{
		"name": "Nope", "manufacturer": "X", "composition": "y", "price": "₹1.00",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The catalog is public.
	w = app.request(t, http.MethodGet, "/api/medicines?search=crocin", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	medicines := decode(t, w)["medicines"].([]any)
	require.Len(t, medicines, 1)
	assert.Equal(t, "crocin-advance", medicines[0].(map[string]any)["slug"])

	w = app.request(t, http.MethodGet, "/api/medicines/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodGet, "/api/medicines/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// The REST paths are the contract the frontend is built against; pin every
// documented one so a rename cannot slip through as a refactor.
func TestDocumentedRouteSurface(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "surface@example.com")
	adminToken := app.seedAdmin(t)
	medID := app.seedMedicine(t, "Aspirin", "₹20.00", false)

	w := app.request(t, http.MethodPost, "/api/cart/add", token, gin.H{"medicineId": medID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodPut, "/api/cart/update", token, gin.H{"medicineId": medID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodDelete, fmt.Sprintf("/api/cart/remove/%d", medID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodDelete, "/api/cart/clear", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// my-orders is a listing, never parsed as an order id.
	w = app.request(t, http.MethodGet, "/api/orders/my-orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode(t, w)["orders"])

	w = app.request(t, http.MethodGet, "/api/orders/my-medicines", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodPut, "/api/notifications/mark-all-read", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodPost, "/api/suggest-schedule", token, gin.H{"name": "Metformin", "frequency": "twice daily"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodGet, "/api/orders/admin/all", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMedicineHistoryEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "history@example.com")
	adminToken := app.seedAdmin(t)
	medID := app.seedMedicine(t, "Metformin", "₹60.00", false)
	otherID := app.seedMedicine(t, "Aspirin", "₹20.00", false)

	w := app.request(t, http.MethodPost, "/api/cart/add", token, gin.H{"medicineId": medID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.request(t, http.MethodPost, "/api/orders/create", token, gin.H{"shippingAddress": shippingAddressJSON()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]any)
	orderID := int64(order["id"].(float64))
	orderNumber := order["orderNumber"].(string)

	// No history until the order is delivered.
	w = app.request(t, http.MethodGet, fmt.Sprintf("/api/orders/medicine-history/%d", medID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode(t, w)["history"])

	for _, status := range []string{"shipped", "out_for_delivery", "delivered"} {
		w = app.request(t, http.MethodPut, fmt.Sprintf("/api/orders/admin/%d/status", orderID), adminToken, gin.H{"status": status})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = app.request(t, http.MethodGet, fmt.Sprintf("/api/orders/medicine-history/%d", medID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["history"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, orderNumber, entry["orderNumber"])
	assert.Equal(t, 2.0, entry["quantity"])
	assert.Equal(t, 60.0, entry["price"])

	// A medicine the user never ordered has no history.
	w = app.request(t, http.MethodGet, fmt.Sprintf("/api/orders/medicine-history/%d", otherID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["history"])
}

// The scan endpoint takes a base64 JSON body, with or without a data URI
// prefix, and reports analyzer failures as a server error.
func TestScanPrescriptionContract(t *testing.T) {
	app := newTestApp(t)
	token := app.registerUser(t, "scan@example.com")

	image := base64.StdEncoding.EncodeToString([]byte("not really a scan"))

	// No analyzer configured at all.
	w := app.request(t, http.MethodPost, "/api/scan-prescription", token, gin.H{"image": image})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	scanner, err := scan.NewService(context.Background(), "", "", "")
	require.NoError(t, err)
	app.handlers.Scanner = scanner

	w = app.request(t, http.MethodPost, "/api/scan-prescription", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Image data is required")

	w = app.request(t, http.MethodPost, "/api/scan-prescription", token, gin.H{"image": "data:image/png;base64,***"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid base64 image data")

	// A valid body whose analysis fails is a 500, not a gateway error.
	w = app.request(t, http.MethodPost, "/api/scan-prescription", token, gin.H{"image": "data:image/png;base64," + image})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to analyze prescription image")
}
