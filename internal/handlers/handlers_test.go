package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/catalog"
	"github.com/rianxlewis/routine-builder/internal/gateway"
	"github.com/rianxlewis/routine-builder/internal/middleware"
	"github.com/rianxlewis/routine-builder/internal/models"
	"github.com/rianxlewis/routine-builder/internal/providers"
	"github.com/rianxlewis/routine-builder/internal/routine"
	"github.com/rianxlewis/routine-builder/internal/session"
	"github.com/rianxlewis/routine-builder/internal/store"
)

type stubProvider struct {
	status int
	body   string
	err    error
}

func (p *stubProvider) CreateChatCompletion(_ context.Context, _ models.RoutineRequest) (*providers.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	return &providers.Result{StatusCode: status, Body: []byte(p.body)}, nil
}

const assistantBody = `{"choices":[{"message":{"role":"assistant","content":"Here is your **routine**"},"finish_reason":"stop"}],"citations":["https://www.loreal.com/tips"]}`

// newTestAPI wires the client-facing routes over stub providers, the
// in-memory store, and a three-product catalog.
func newTestAPI(primary, secondary gateway.Provider) http.Handler {
	products := catalog.New([]models.Product{
		{ID: 1, Name: "Serum", Brand: "L'Oréal Paris", Category: "skincare", Description: "Hydrating serum"},
		{ID: 2, Name: "Lipstick", Brand: "Lancôme", Category: "makeup", Description: "Cream lipstick"},
		{ID: 3, Name: "Shampoo", Brand: "Kérastase", Category: "haircare", Description: "Repairing shampoo"},
	})

	sessions := session.NewManager(store.NewMemory(), 40, zerolog.Nop())
	gatewayService := gateway.NewService(primary, secondary, true, zerolog.Nop())
	routineService := routine.NewService(gatewayService, sessions, zerolog.Nop())

	productHandler := NewProductHandler(products)
	sessionHandler := NewSessionHandler(sessions, products, routineService, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})
		r.Get("/categories", productHandler.Categories)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Route("/selection", func(r chi.Router) {
					r.Get("/", sessionHandler.GetSelection)
					r.Post("/toggle", sessionHandler.ToggleSelection)
					r.Delete("/", sessionHandler.ClearSelection)
				})
				r.Get("/preferences", sessionHandler.GetPreferences)
				r.Put("/preferences", sessionHandler.UpdatePreferences)
				r.Post("/routine", sessionHandler.GenerateRoutine)
				r.Post("/chat", sessionHandler.Chat)
			})
		})
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func createSession(t *testing.T, api http.Handler) string {
	t.Helper()
	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	var resp models.SessionResponse
	decode(t, rr, &resp)
	if resp.SessionID == "" {
		t.Fatal("Expected a session id")
	}
	return resp.SessionID
}

func toggle(t *testing.T, api http.Handler, sid string, productID int) models.SelectionResponse {
	t.Helper()
	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/selection/toggle",
		models.ToggleSelectionRequest{ProductID: productID})
	if rr.Code != http.StatusOK {
		t.Fatalf("Toggle returned status %d", rr.Code)
	}
	var resp models.SelectionResponse
	decode(t, rr, &resp)
	return resp
}

func TestProducts_List(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})

	tests := []struct {
		name    string
		query   string
		wantIDs []int
		wantLen int
	}{
		{"no filters", "", []int{1, 2, 3}, 3},
		{"category filter", "?category=skincare", []int{1}, 1},
		{"search filter", "?search=lipstick", []int{2}, 1},
		{"conjunction", "?search=serum&category=makeup", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, api, http.MethodGet, "/api/v1/products"+tc.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}
			var resp struct {
				Products []models.Product `json:"products"`
				Count    int              `json:"count"`
			}
			decode(t, rr, &resp)
			if resp.Count != tc.wantLen || len(resp.Products) != tc.wantLen {
				t.Errorf("Expected %d products, got count=%d len=%d", tc.wantLen, resp.Count, len(resp.Products))
			}
			for i, want := range tc.wantIDs {
				if resp.Products[i].ID != want {
					t.Errorf("Product %d: expected id %d, got %d", i, want, resp.Products[i].ID)
				}
			}
		})
	}
}

func TestProducts_Get(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})

	rr := doJSON(t, api, http.MethodGet, "/api/v1/products/2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var p models.Product
	decode(t, rr, &p)
	if p.Name != "Lipstick" {
		t.Errorf("Expected Lipstick, got %q", p.Name)
	}

	if rr := doJSON(t, api, http.MethodGet, "/api/v1/products/99", nil); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown product, got %d", rr.Code)
	}
}

func TestCategories(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})

	rr := doJSON(t, api, http.MethodGet, "/api/v1/categories", nil)
	var resp struct {
		Categories []string `json:"categories"`
	}
	decode(t, rr, &resp)
	want := []string{"skincare", "makeup", "haircare"}
	if len(resp.Categories) != 3 {
		t.Fatalf("Expected 3 categories, got %v", resp.Categories)
	}
	for i := range want {
		if resp.Categories[i] != want[i] {
			t.Errorf("Expected %v in first-seen order, got %v", want, resp.Categories)
			break
		}
	}
}

func TestSelection_ToggleScenario(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)

	// Select 1, then 2, then remove 1: selection ends as [2].
	toggle(t, api, sid, 1)
	toggle(t, api, sid, 2)
	resp := toggle(t, api, sid, 1)

	if resp.Count != 1 || resp.Selected[0].ID != 2 {
		t.Errorf("Expected selection [2], got %+v", resp.Selected)
	}
}

func TestSelection_ToggleUnknownProduct(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/selection/toggle",
		models.ToggleSelectionRequest{ProductID: 42})
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestSelection_Clear(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)

	toggle(t, api, sid, 1)
	toggle(t, api, sid, 3)

	rr := doJSON(t, api, http.MethodDelete, "/api/v1/sessions/"+sid+"/selection", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp models.SelectionResponse
	decode(t, rr, &resp)
	if resp.Count != 0 {
		t.Errorf("Expected empty selection, got %+v", resp.Selected)
	}
}

func TestSession_NotFound(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})

	rr := doJSON(t, api, http.MethodGet, "/api/v1/sessions/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)

	rr := doJSON(t, api, http.MethodPut, "/api/v1/sessions/"+sid+"/preferences",
		models.PreferencesRequest{RTL: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	rr = doJSON(t, api, http.MethodGet, "/api/v1/sessions/"+sid+"/preferences", nil)
	var resp models.PreferencesResponse
	decode(t, rr, &resp)
	if !resp.RTL {
		t.Error("Expected rtl true after update")
	}
}

func TestRoutine_EmptySelection(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/routine", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty selection, got %d", rr.Code)
	}
}

func TestRoutine_Success(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)
	toggle(t, api, sid, 1)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/routine", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp models.RoutineResponse
	decode(t, rr, &resp)
	if resp.Message != "Here is your **routine**" {
		t.Errorf("Unexpected message: %q", resp.Message)
	}
	if !strings.Contains(resp.MessageHTML, "<strong>routine</strong>") {
		t.Errorf("Expected formatted HTML, got %q", resp.MessageHTML)
	}
	if len(resp.Citations) != 1 {
		t.Errorf("Expected citations carried through, got %v", resp.Citations)
	}
	if resp.FollowUp != session.FollowUpPrompt {
		t.Errorf("Expected canned follow-up prompt, got %q", resp.FollowUp)
	}
	if resp.FollowUpDelayMS != 1500 {
		t.Errorf("Expected 1500ms delay, got %d", resp.FollowUpDelayMS)
	}
	if resp.Degraded {
		t.Error("Successful routine must not be degraded")
	}

	// The exchange baselines the history: seed pair plus the reply.
	var sess models.SessionResponse
	decode(t, doJSON(t, api, http.MethodGet, "/api/v1/sessions/"+sid, nil), &sess)
	if len(sess.History) != 3 {
		t.Errorf("Expected 3 history messages, got %d", len(sess.History))
	}
}

func TestRoutine_DegradesToApology(t *testing.T) {
	failing := &stubProvider{err: errors.New("boom")}
	api := newTestAPI(failing, failing)
	sid := createSession(t, api)
	toggle(t, api, sid, 1)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/routine", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected apologetic 200, got %d", rr.Code)
	}

	var resp models.RoutineResponse
	decode(t, rr, &resp)
	if !resp.Degraded {
		t.Error("Expected degraded reply")
	}
	if !strings.Contains(resp.Message, "I apologize") {
		t.Errorf("Expected apology text, got %q", resp.Message)
	}
	if strings.Contains(resp.Message, "boom") {
		t.Error("Raw error details must never reach the user")
	}
}

func TestChat_FollowUpTurn(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)
	toggle(t, api, sid, 1)
	doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/routine", nil)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/chat",
		models.ChatRequest{Message: "How often should I use the serum?"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp models.AssistantReply
	decode(t, rr, &resp)
	if resp.Message == "" || resp.Degraded {
		t.Errorf("Unexpected reply: %+v", resp)
	}

	// History grew by exactly one user and one assistant message.
	var sess models.SessionResponse
	decode(t, doJSON(t, api, http.MethodGet, "/api/v1/sessions/"+sid, nil), &sess)
	if len(sess.History) != 5 {
		t.Errorf("Expected 5 history messages, got %d", len(sess.History))
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	api := newTestAPI(&stubProvider{body: assistantBody}, &stubProvider{body: assistantBody})
	sid := createSession(t, api)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/chat",
		models.ChatRequest{Message: "   "})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank message, got %d", rr.Code)
	}
}

func TestChat_DegradesToApology(t *testing.T) {
	failing := &stubProvider{status: http.StatusInternalServerError, body: `{"error":"upstream down"}`}
	api := newTestAPI(failing, failing)
	sid := createSession(t, api)

	rr := doJSON(t, api, http.MethodPost, "/api/v1/sessions/"+sid+"/chat",
		models.ChatRequest{Message: "hello"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected apologetic 200, got %d", rr.Code)
	}

	var resp models.AssistantReply
	decode(t, rr, &resp)
	if !resp.Degraded || !strings.Contains(resp.Message, "I'm sorry") {
		t.Errorf("Expected apology bubble, got %+v", resp)
	}
}
