package api

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"smart-price/metrics"
	"smart-price/models"
	"smart-price/services"
	"smart-price/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testListings() []*models.Listing {
	return []*models.Listing{
		{Name: "Maruti Swift Dzire VDI", Brand: "Maruti", Year: 2015, KmDriven: 50000, Fuel: "Petrol",
			SellerType: "Individual", Transmission: "Manual", Owner: "First Owner",
			Mileage: 18.5, Engine: 1197, MaxPower: 82, Seats: 5, SellingPrice: 400000, HasPrice: true},
		{Name: "Hyundai i20 Sportz", Brand: "Hyundai", Year: 2017, KmDriven: 30000, Fuel: "Diesel",
			SellerType: "Dealer", Transmission: "Manual", Owner: "First Owner",
			Mileage: 22.54, Engine: 1396, MaxPower: 88.73, Seats: 5, SellingPrice: 650000, HasPrice: true},
		{Name: "Honda City 1.5 V AT", Brand: "Honda", Year: 2012, KmDriven: 90000, Fuel: "Petrol",
			SellerType: "Individual", Transmission: "Automatic", Owner: "Second Owner",
			Mileage: 17, Engine: 1497, MaxPower: 117.3, Seats: 5, SellingPrice: 350000, HasPrice: true},
	}
}

func newTestRouter(t *testing.T, withOptions bool) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	logger := utils.NewLoggerTo(io.Discard)
	m := metrics.New(services.ErrUnknownCategory, services.ErrInvalidRequest)

	a, err := services.NewTrainer(logger, 1e-6).Train(testListings(), "")
	if err != nil {
		t.Fatal(err)
	}
	p, err := services.NewPredictor(a, logger, m)
	if err != nil {
		t.Fatal(err)
	}

	var opts *models.FormOptions
	if withOptions {
		opts, err = services.NewInsightService(logger).FormOptions(p.Encoder(), testListings())
		if err != nil {
			t.Fatal(err)
		}
	}
	return NewRouter(p, opts, m, logger), m
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"year":2015,"km_driven":50000,"mileage":18.5,"engine":1197,"max_power":82,"seats":5,
	"brand":"Maruti","fuel":"Petrol","seller_type":"Individual","transmission":"Manual","owner":"First Owner"}`

func TestPredictOK(t *testing.T) {
	r, _ := newTestRouter(t, true)
	w := doRequest(r, http.MethodPost, "/api/predict", validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body)
	}

	var resp struct {
		Price      float64 `json:"price"`
		Floored    bool    `json:"floored"`
		ArtifactID string  `json:"artifact_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("price must be a JSON number: %v (%s)", err, w.Body)
	}
	price := resp.Price
	if price != math.Round(price) {
		t.Errorf("price %v not rounded to whole units", price)
	}
	if price < services.MinPrice {
		t.Errorf("price %v below floor", price)
	}
	if resp.ArtifactID == "" {
		t.Error("artifact_id missing")
	}
}

func TestPredictUnknownCategory(t *testing.T) {
	r, _ := newTestRouter(t, true)
	body := strings.Replace(validBody, `"Maruti"`, `"UnknownBrandXYZ"`, 1)

	w := doRequest(r, http.MethodPost, "/api/predict", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422 (%s)", w.Code, w.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["kind"] != "unknown_category" || resp["column"] != models.ColumnName || resp["label"] != "UnknownBrandXYZ" {
		t.Errorf("response: %v", resp)
	}

	metricsBody := doRequest(r, http.MethodGet, "/metrics", "").Body.String()
	if !strings.Contains(metricsBody, `smartprice_predictions_total{outcome="unknown_category"} 1`) {
		t.Errorf("unknown_category outcome not counted:\n%s", metricsBody)
	}
}

func TestPredictMissingField(t *testing.T) {
	r, _ := newTestRouter(t, true)
	body := strings.Replace(validBody, `"seats":5,`, "", 1)

	w := doRequest(r, http.MethodPost, "/api/predict", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400 (%s)", w.Code, w.Body)
	}
}

func TestPredictMalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t, true)
	w := doRequest(r, http.MethodPost, "/api/predict", `{"year":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestOptions(t *testing.T) {
	r, _ := newTestRouter(t, true)
	w := doRequest(r, http.MethodGet, "/api/options", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	var opts models.FormOptions
	if err := json.Unmarshal(w.Body.Bytes(), &opts); err != nil {
		t.Fatal(err)
	}
	if got := opts.Categories[models.ColumnName]; len(got) != 3 || got[0] != "Maruti" {
		t.Errorf("brand choices: %v", got)
	}
	if rg := opts.Ranges[models.ColumnYear]; rg.Min != 2012 || rg.Max != 2017 {
		t.Errorf("year range: %+v", rg)
	}
}

func TestOptionsUnavailable(t *testing.T) {
	r, _ := newTestRouter(t, false)
	w := doRequest(r, http.MethodGet, "/api/options", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, false)
	w := doRequest(r, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz: %d %s", w.Code, w.Body)
	}
}

func TestPredictTrimsPaddedLabels(t *testing.T) {
	r, _ := newTestRouter(t, true)
	body := strings.Replace(validBody, `"Maruti"`, `" Maruti "`, 1)

	w := doRequest(r, http.MethodPost, "/api/predict", body)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200 (%s)", w.Code, w.Body)
	}
}

func TestPredictOutOfRangeNumeric(t *testing.T) {
	r, _ := newTestRouter(t, true)
	tests := map[string]string{
		"negative km": strings.Replace(validBody, `"km_driven":50000`, `"km_driven":-5`, 1),
		"zero seats":  strings.Replace(validBody, `"seats":5`, `"seats":0`, 1),
	}
	for name, body := range tests {
		w := doRequest(r, http.MethodPost, "/api/predict", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400 (%s)", name, w.Code, w.Body)
		}
	}
}
