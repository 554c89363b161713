package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pm/patientmgmt/internal/platform/middleware"
)

const annJSON = `{"name":"Ann","email":"ann@x.com","address":"1 Rd","dateOfBirth":"1990-01-01","registeredDate":"2024-01-01"}`

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

// newTestServer wires the handler behind the real error handler so tests can
// assert on rendered error bodies.
func newTestServer() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop())
	NewHandler(newTestService()).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreatePatient(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(annJSON))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p PatientResponse
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Name != "Ann" {
		t.Errorf("expected Ann, got %s", p.Name)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if strings.Contains(rec.Body.String(), "registeredDate") {
		t.Error("response must not expose registeredDate")
	}
}

func TestHandler_CreatePatient_BadRequest(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Ann"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Error("expected email field error")
	}
}

func TestHandler_GetPatient(t *testing.T) {
	h, e := newTestHandler()

	created, err := h.svc.CreatePatient(context.Background(), annRequest())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	err = h.GetPatient(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetPatient(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_ListPatients(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreatePatient(context.Background(), annRequest())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListPatients(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var list []PatientResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Errorf("expected 1 patient, got %d", len(list))
	}
}

func TestHandler_ListPatients_EmptyIsArray(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}
}

func TestHandler_UpdatePatient(t *testing.T) {
	h, e := newTestHandler()
	created, _ := h.svc.CreatePatient(context.Background(), annRequest())

	body := `{"name":"Ann Smith","email":"ann@x.com","address":"9 Lane","dateOfBirth":"1990-01-01"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	err := h.UpdatePatient(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var p PatientResponse
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Name != "Ann Smith" || p.Address != "9 Lane" {
		t.Errorf("unexpected response: %+v", p)
	}
}

func TestHandler_DeletePatient(t *testing.T) {
	h, e := newTestHandler()
	created, _ := h.svc.CreatePatient(context.Background(), annRequest())

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	err := h.DeletePatient(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e := newTestHandler()
	api := e.Group("/api/v1")
	h.RegisterRoutes(api)

	routes := e.Routes()
	expected := map[string]bool{
		"GET:/api/v1/patients":        false,
		"POST:/api/v1/patients":       false,
		"GET:/api/v1/patients/:id":    false,
		"PUT:/api/v1/patients/:id":    false,
		"DELETE:/api/v1/patients/:id": false,
	}

	for _, r := range routes {
		key := r.Method + ":" + r.Path
		if _, ok := expected[key]; ok {
			expected[key] = true
		}
	}

	for route, found := range expected {
		if !found {
			t.Errorf("missing expected route: %s", route)
		}
	}
}

func TestServer_DuplicateEmailBody(t *testing.T) {
	e := newTestServer()

	if rec := doJSON(e, http.MethodPost, "/api/v1/patients", annJSON); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/patients", annJSON)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "email already exists" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestServer_NotFoundBody(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodDelete, "/api/v1/patients/"+uuid.New().String(), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "patient you searched for could not be found in system" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestServer_ValidationBody(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/patients", `{"email":"bad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["email"] != "Email should be valid" {
		t.Errorf("unexpected email message: %q", body["email"])
	}
	if body["name"] != "Name is required" {
		t.Errorf("unexpected name message: %q", body["name"])
	}
	if len(body) != 5 {
		t.Errorf("expected 5 field errors, got %v", body)
	}
}

func TestServer_MalformedJSON(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/patients", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "malformed request body" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestServer_CreateTrimsInput(t *testing.T) {
	e := newTestServer()

	body := `{"name":"  Ann  ","email":" ann@x.com ","address":" 1 Rd ","dateOfBirth":" 1990-01-01 ","registeredDate":" 2024-01-01 "}`
	rec := doJSON(e, http.MethodPost, "/api/v1/patients", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p PatientResponse
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Name != "Ann" || p.Email != "ann@x.com" || p.Address != "1 Rd" || p.DateOfBirth != "1990-01-01" {
		t.Errorf("expected trimmed fields, got %+v", p)
	}
}

func TestServer_UpdateValidationBody(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPut, "/api/v1/patients/"+uuid.New().String(), `{"email":"bad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["email"] != "Email should be valid" {
		t.Errorf("unexpected email message: %q", body["email"])
	}
	if body["name"] != "Name is required" {
		t.Errorf("unexpected name message: %q", body["name"])
	}
}
