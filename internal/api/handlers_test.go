package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nestlink/server/internal/auth"
	"nestlink/server/internal/catalog"
	"nestlink/server/internal/chat"
	"nestlink/server/internal/checkout"
	"nestlink/server/internal/database"
	"nestlink/server/internal/geocoding"
	"nestlink/server/internal/models"
	"nestlink/server/internal/payment"
	"nestlink/server/internal/pricing"
	"nestlink/server/internal/procurement"
	"nestlink/server/internal/relocation"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Receipt, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.Receipt), args.Error(1)
}

type testAPI struct {
	router   *gin.Engine
	services Services
}

func setupTestAPI(t *testing.T, gateway payment.Gateway) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.NewDatabase(database.MemoryDSN, logger)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	geocoder := geocoding.NewGeocoder(logger)
	listings := catalog.NewService(db, catalog.NewGenerator(rand.New(rand.NewSource(42))), geocoder, catalog.Options{Size: 10}, logger)
	require.NoError(t, listings.Load(context.Background()))

	if gateway == nil {
		gateway = payment.NewSimulatedGateway(0, logger)
	}
	cart := procurement.NewStore()
	payments := payment.NewStore(gateway, logger)
	attempt := payment.NewAttempt(payments, payment.DefaultMobilePrefix)
	booker := relocation.NewBooker(relocation.DefaultFleet(), geocoder, logger)

	session := chat.NewSession(chat.Options{}, logger)
	t.Cleanup(func() { session.Close() })

	services := Services{
		Catalog:  listings,
		Cart:     cart,
		Payments: payments,
		Attempt:  attempt,
		Checkout: checkout.NewService(cart, payments, attempt, booker, pricing.DefaultServiceFeeRate, logger),
		Booker:   booker,
		Chat:     session,
		Auth:     auth.NewService(auth.Options{JWT: auth.JWTConfig{SecretKey: "test-secret", Issuer: "test"}}, logger),
	}

	router := gin.New()
	SetupRoutes(router, NewHandler(services, logger), []string{"http://localhost:8081"})
	return &testAPI{router: router, services: services}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
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

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/login", loginRequest{Email: "john@example.com", Password: "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var session auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	a := setupTestAPI(t, nil)
	w := a.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])
}

func TestCORS(t *testing.T) {
	a := setupTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:8081", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListings(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/listings", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Listing](t, w)
	require.Len(t, all, 10)

	w = a.do(t, http.MethodGet, "/api/listings/featured", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	featured := decode[[]models.Listing](t, w)
	require.Len(t, featured, 5)
	assert.Equal(t, all[0].ID, featured[0].ID)

	w = a.do(t, http.MethodGet, "/api/listings/listing-3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, all[2].Title, decode[models.Listing](t, w).Title)

	w = a.do(t, http.MethodGet, "/api/listings/listing-99", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodGet, "/api/listings?q=KENYA", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Listing](t, w), 10)

	w = a.do(t, http.MethodGet, "/api/listings?q=atlantis", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Listing](t, w))
}

func TestNearbyListings(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/listings/nearby", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/listings/nearby?lat=-1.28&lng=36.81&radius_km=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/listings/nearby?place=Atlantis", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the whole country fits in 2000 km
	w = a.do(t, http.MethodGet, "/api/listings/nearby?lat=-1.28&lng=36.81&radius_km=2000", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Listing](t, w), 10)

	w = a.do(t, http.MethodGet, "/api/listings/nearby?place=Nairobi", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListingsGeoJSON(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/listings/geojson", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Len(t, body["features"], 10)

	w = a.do(t, http.MethodGet, "/api/listings/coverage", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FeatureCollection", decode[map[string]any](t, w)["type"])
}

func TestRefreshListings(t *testing.T) {
	a := setupTestAPI(t, nil)
	w := a.do(t, http.MethodPost, "/api/listings/refresh", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, decode[map[string]any](t, w)["count"])
}

func TestProcurement(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodPost, "/api/procurement", addProcurementRequest{ListingID: "listing-1"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodPost, "/api/procurement", addProcurementRequest{ListingID: "listing-1"}, "")
	require.Equal(t, http.StatusOK, w.Code, "adding twice is idempotent")
	view := decode[procurementView](t, w)
	assert.Equal(t, 1, view.ItemCount)

	w = a.do(t, http.MethodPost, "/api/procurement", addProcurementRequest{ListingID: "listing-2"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	view = decode[procurementView](t, w)
	subtotal := view.Items[0].Property.Price + view.Items[1].Property.Price
	assert.Equal(t, pricing.Summarize(subtotal, pricing.DefaultServiceFeeRate), view.Summary)

	w = a.do(t, http.MethodPost, "/api/procurement", addProcurementRequest{ListingID: "listing-404"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/procurement", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodDelete, "/api/procurement/listing-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[procurementView](t, w).ItemCount)

	w = a.do(t, http.MethodDelete, "/api/procurement/listing-1", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "removing a missing item is a no-op")

	w = a.do(t, http.MethodDelete, "/api/procurement", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[procurementView](t, w).ItemCount)
}

func TestCheckoutAndPay(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodPost, "/api/procurement", addProcurementRequest{ListingID: "listing-1"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodPost, "/api/checkout/procurement", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := a.login(t)

	w = a.do(t, http.MethodPost, "/api/checkout/procurement", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[models.PaymentItem](t, w)
	assert.Equal(t, models.PaymentProperty, item.Type)
	assert.Equal(t, a.services.Checkout.Summary().GrandTotal, item.Amount)

	// checking out again replaces the queued charge
	w = a.do(t, http.MethodPost, "/api/checkout/procurement", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	item = decode[models.PaymentItem](t, w)

	w = a.do(t, http.MethodGet, "/api/payment", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[paymentView](t, w)
	assert.Equal(t, 1, view.ItemCount)
	assert.Equal(t, item.Amount, view.Total)
	assert.Equal(t, payment.StageInput, view.Stage)

	w = a.do(t, http.MethodPost, "/api/payment/mobile-money", mobileMoneyRequest{PhoneNumber: "0712345678"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/payment/mobile-money", mobileMoneyRequest{PhoneNumber: "0812345678"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/payment/mobile-money", mobileMoneyRequest{PhoneNumber: "0712345678"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[payment.Result](t, w)
	assert.Equal(t, payment.StatusSucceeded, result.Status)
	assert.Equal(t, item.Amount, result.Amount)

	assert.Zero(t, a.services.Payments.ItemCount())
	assert.Zero(t, a.services.Cart.ItemCount())

	w = a.do(t, http.MethodPost, "/api/payment/mobile-money", mobileMoneyRequest{PhoneNumber: "0712345678"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/api/payment/reset", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(payment.StageInput), decode[map[string]any](t, w)["stage"])

	w = a.do(t, http.MethodPost, "/api/payment/mobile-money", mobileMoneyRequest{PhoneNumber: "0712345678"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "nothing left to pay")
}

func TestCheckoutEmptyCart(t *testing.T) {
	a := setupTestAPI(t, nil)
	token := a.login(t)

	w := a.do(t, http.MethodPost, "/api/checkout/procurement", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeclinedPayment(t *testing.T) {
	gw := &MockGateway{}
	gw.On("Charge", mock.Anything, mock.Anything).Return(payment.Receipt{}, payment.ErrGatewayDeclined)
	a := setupTestAPI(t, gw)
	token := a.login(t)

	w := a.do(t, http.MethodPost, "/api/relocation/bookings", relocation.Request{VehicleID: "1", Pickup: "Kilimani", Destination: "Karen"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodPost, "/api/payment/mobile-money", mobileMoneyRequest{PhoneNumber: "0712345678"}, token)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	result := decode[payment.Result](t, w)
	assert.Equal(t, payment.ReasonDeclined, result.Reason)

	assert.Equal(t, 1500, a.services.Payments.Total(), "failed payment keeps items")
	assert.Equal(t, payment.StageError, a.services.Attempt.Stage())

	w = a.do(t, http.MethodDelete, "/api/payment", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[paymentView](t, w).ItemCount)
}

func TestRelocation(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodGet, "/api/relocation/vehicles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Vehicle](t, w), 3)

	w = a.do(t, http.MethodPost, "/api/relocation/bookings", relocation.Request{VehicleID: "3", Pickup: "Westlands", Destination: "Runda"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[models.PaymentItem](t, w)
	assert.Equal(t, "Large Truck - Westlands to Runda", item.Description)
	assert.Equal(t, 4000, item.Amount)

	w = a.do(t, http.MethodPost, "/api/relocation/bookings", relocation.Request{Pickup: "A", Destination: "B"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/relocation/bookings", relocation.Request{VehicleID: "1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/payment/methods", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PaymentMethod](t, w), 4)
}

func TestAuth(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodPost, "/api/auth/register", auth.RegisterRequest{
		Name: "Amina", Email: "amina@example.com", Password: "pw", ConfirmPassword: "other",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/auth/register", auth.RegisterRequest{
		Name: "Amina", Email: "amina@example.com", Password: "pw", ConfirmPassword: "pw", UserType: auth.UserPropertyOwner,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	session := decode[auth.Session](t, w)
	assert.True(t, session.User.IsPropertyOwner)
	assert.False(t, session.User.ProfileCompleted)

	w = a.do(t, http.MethodGet, "/api/auth/me", nil, session.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "amina@example.com", decode[models.User](t, w).Email)

	w = a.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/auth/me", nil, session.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/auth/login", loginRequest{Email: "amina@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type chatState struct {
	Messages []models.ChatMessage `json:"messages"`
	IsTyping bool                 `json:"is_typing"`
	Selected []string             `json:"selected"`
}

func TestChat(t *testing.T) {
	a := setupTestAPI(t, nil)

	w := a.do(t, http.MethodPost, "/api/chat/messages", chatContentRequest{Content: "  "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/chat/messages", chatContentRequest{Content: "What's the price?"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	sent := decode[models.ChatMessage](t, w)

	var state chatState
	require.Eventually(t, func() bool {
		w := a.do(t, http.MethodGet, "/api/chat/messages", nil, "")
		state = decode[chatState](t, w)
		return len(state.Messages) == 2 && !state.IsTyping
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, chat.Classify("What's the price?"), state.Messages[1].Content)

	w = a.do(t, http.MethodPost, "/api/chat/messages/"+sent.ID+"/edit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(t, http.MethodPatch, "/api/chat/messages/"+sent.ID+"/edit", chatContentRequest{Content: "What's the cost?"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(t, http.MethodPost, "/api/chat/messages/"+sent.ID+"/edit/commit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "What's the cost?", decode[chatState](t, w).Messages[0].Content)

	w = a.do(t, http.MethodPost, "/api/chat/messages/"+sent.ID+"/edit/commit", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "not in edit mode")

	w = a.do(t, http.MethodPut, "/api/chat/messages/missing", chatContentRequest{Content: "x"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/chat/selection/"+sent.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["selected"])

	w = a.do(t, http.MethodGet, "/api/chat/selection", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{sent.ID}, decode[chatState](t, w).Selected)

	w = a.do(t, http.MethodPost, "/api/chat/selection/delete", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["deleted"])

	w = a.do(t, http.MethodDelete, "/api/chat/messages", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[chatState](t, w).Messages)
}
