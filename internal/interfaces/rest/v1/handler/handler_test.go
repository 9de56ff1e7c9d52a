package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"garage-dashboard/internal/application/facade"
	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/cache"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/infrastructure/store"
	"garage-dashboard/internal/interfaces/rest/v1/handler"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type broadcast struct {
	channel string
	data    any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []broadcast
}

func (p *recordingPublisher) Broadcast(_ context.Context, channel string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, broadcast{channel: channel, data: data})
}

func (p *recordingPublisher) channels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, b := range p.sent {
		out[i] = b.channel
	}
	return out
}

type testAPI struct {
	router    *gin.Engine
	store     *store.MemoryStore
	publisher *recordingPublisher
	garage    model.Garage
	driver    model.Driver
	service   model.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &testAPI{store: store.NewMemoryStore(), publisher: &recordingPublisher{}}
	clock := func() time.Time { return testNow }
	log := logger.NewNop()
	c := cache.Nop{}

	api.router = gin.New()
	handler.InitRESTRouter(log, handler.UseCases{
		Garages:   facade.NewGarageApplicationService(api.store, api.publisher, log),
		Catalog:   facade.NewCatalogApplicationService(api.store, api.publisher, c, log),
		Drivers:   facade.NewDriverApplicationService(api.store, log, clock, 4),
		Bookings:  facade.NewBookingApplicationService(api.store, api.publisher, c, log, clock),
		Analytics: facade.NewAnalyticsApplicationService(api.store, c, 0, log, clock),
	}, api.router.Group("/api"))

	ctx := context.Background()
	var err error
	if api.garage, err = api.store.CreateGarage(ctx, model.Garage{
		Name: "AutoFix", Status: model.GarageOpen, Email: "shop@example.com",
	}); err != nil {
		t.Fatalf("CreateGarage: %v", err)
	}
	if api.driver, err = api.store.CreateDriver(ctx, model.Driver{
		Name: "Dana", Email: "dana@example.com", PasswordHash: "secret-hash",
	}); err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	if api.service, err = api.store.CreateService(ctx, model.Service{
		GarageID: api.garage.ID, Name: "Oil Change", Price: 4999, Duration: 30, IsActive: true,
	}); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	return api
}

func (api *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestErrorResponses(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name, method, path, body string
		code                     int
		msg                      string
	}{
		{"garage id not a number", http.MethodGet, "/api/services?garageId=abc", "", 400, "Invalid garage ID"},
		{"garage id missing", http.MethodGet, "/api/bookings", "", 400, "Invalid garage ID"},
		{"unknown garage", http.MethodGet, "/api/garages/99", "", 404, "Garage not found"},
		{"bad path id", http.MethodGet, "/api/garages/x", "", 400, "Invalid garage ID"},
		{"unknown booking", http.MethodGet, "/api/bookings/42", "", 404, "Booking not found"},
		{"unknown driver", http.MethodPatch, "/api/drivers/42", `{"name":"x"}`, 404, "Driver not found"},
		{"garage status", http.MethodPatch, "/api/garages/1/status", `{"status":"Nope"}`, 400, "Invalid status"},
		{"booking status", http.MethodPatch, "/api/bookings/1/status", `{"status":"Done"}`, 400, "Invalid status"},
		{"status body", http.MethodPatch, "/api/bookings/1/status", `not json`, 400, "Invalid status"},
		{"analytics dates", http.MethodGet, "/api/analytics/bookings?garageId=1&startDate=x", "", 400, "Invalid parameters"},
		{"analytics reversed", http.MethodGet, "/api/analytics/revenue?garageId=1&startDate=2024-05-02&endDate=2024-05-01", "", 400, "Invalid parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.code {
				t.Fatalf("status: got %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tt.msg {
				t.Errorf("error: got %q, want %q", got, tt.msg)
			}
		})
	}

	if got := api.publisher.channels(); len(got) != 0 {
		t.Errorf("failed requests published %v", got)
	}
}

func TestGarageStatusChange_Broadcasts(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPatch, "/api/garages/1/status", `{"status":"Busy"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
	}

	var g model.Garage
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Status != model.GarageBusy {
		t.Errorf("garage status: got %q", g.Status)
	}
	if got := api.publisher.channels(); len(got) != 1 || got[0] != "garage-updates" {
		t.Errorf("broadcasts: got %v, want [garage-updates]", got)
	}
}

func TestCreateBooking(t *testing.T) {
	api := newTestAPI(t)

	body := `{"garageId":1,"driverId":1,"date":"2024-05-01T15:00:00Z",
		"servicesBooked":[{"serviceId":1,"quantity":2}]}`
	w := api.do(t, http.MethodPost, "/api/bookings", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
	}

	var b model.Booking
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(b.BookingNumber, "BK-") || b.Status != model.BookingNew || b.TotalPrice != 9998 {
		t.Errorf("unexpected booking %+v", b)
	}
	if got := api.publisher.channels(); len(got) != 1 || got[0] != "booking-updates" {
		t.Errorf("broadcasts: got %v, want [booking-updates]", got)
	}

	w = api.do(t, http.MethodGet, "/api/bookings/today?garageId=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("today: got %d (%s)", w.Code, w.Body.String())
	}
	var today []model.Booking
	if err := json.Unmarshal(w.Body.Bytes(), &today); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(today) != 1 {
		t.Errorf("today: got %d bookings, want 1", len(today))
	}
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/bookings", `{"driverId":1,"status":"Maybe"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
	}
	var body struct {
		Error []struct {
			Field string `json:"field"`
			Rule  string `json:"rule"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rules := make(map[string]string)
	for _, e := range body.Error {
		rules[e.Field] = e.Rule
	}
	if rules["CreateBookingInput.garageId"] != "required" || rules["CreateBookingInput.status"] != "oneof" {
		t.Errorf("unexpected validation errors %+v", body.Error)
	}

	w = api.do(t, http.MethodPost, "/api/bookings", `{"garageId":7,"driverId":1,"date":"2024-05-01T15:00:00Z"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown garage: got %d, want 400", w.Code)
	}
	if got := api.publisher.channels(); len(got) != 0 {
		t.Errorf("rejected bookings published %v", got)
	}
}

func TestServiceDelete(t *testing.T) {
	api := newTestAPI(t)

	if w := api.do(t, http.MethodDelete, "/api/services/1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d (%s)", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodDelete, "/api/services/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", w.Code)
	}
	if got := api.publisher.channels(); len(got) != 1 || got[0] != "service-updates" {
		t.Errorf("broadcasts: got %v, want [service-updates]", got)
	}
}

func TestDriversNeverExposePasswords(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/drivers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret-hash") || strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Errorf("driver list leaks credentials: %s", w.Body.String())
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	if w := api.do(t, http.MethodPost, "/api/bookings",
		`{"garageId":1,"driverId":1,"date":"2024-05-01T09:00:00Z","totalPrice":2500,"servicesBooked":[{"serviceId":1,"quantity":1}]}`); w.Code != http.StatusCreated {
		t.Fatalf("create: got %d (%s)", w.Code, w.Body.String())
	}

	w := api.do(t, http.MethodGet, "/api/analytics/today-summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("today-summary: got %d (%s)", w.Code, w.Body.String())
	}
	var sum model.TodaySummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum != (model.TodaySummary{Bookings: 1, Revenue: 2500, PendingActions: 1}) {
		t.Errorf("summary: got %+v", sum)
	}

	w = api.do(t, http.MethodGet, "/api/analytics/bookings?garageId=1&startDate=2024-05-01&endDate=2024-05-01T23:59:59Z", "")
	if w.Code != http.StatusOK {
		t.Fatalf("bookings: got %d (%s)", w.Code, w.Body.String())
	}
	var counts []model.DailyBookingCount
	if err := json.Unmarshal(w.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(counts) != 1 || counts[0] != (model.DailyBookingCount{Date: "2024-05-01", Count: 1}) {
		t.Errorf("counts: got %+v", counts)
	}

	w = api.do(t, http.MethodGet, "/api/analytics/revenue?garageId=1&startDate=2024-05-01&endDate=2024-05-02", "")
	if w.Code != http.StatusOK {
		t.Fatalf("revenue: got %d (%s)", w.Code, w.Body.String())
	}
	var revenue []model.ServiceRevenue
	if err := json.Unmarshal(w.Body.Bytes(), &revenue); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(revenue) != 1 || revenue[0] != (model.ServiceRevenue{Service: "Oil Change", Revenue: 4999}) {
		t.Errorf("revenue: got %+v", revenue)
	}

	if w := api.do(t, http.MethodGet, "/api/analytics/hero-metrics?garageId=1", ""); w.Code != http.StatusOK {
		t.Errorf("hero-metrics: got %d", w.Code)
	}
}
