package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thescentlab/scentlab-backend/internal/catalog"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

type stubCatalogService struct {
	catalog.Service

	listInput      *catalog.ListInput
	recommendInput *catalog.RecommendInput
	getID          uuid.UUID
	fragrance      *catalog.FragranceDTO
	err            error
}

func (s *stubCatalogService) List(ctx context.Context, input catalog.ListInput) (*pagination.Page[catalog.FragranceDTO], error) {
	s.listInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &pagination.Page[catalog.FragranceDTO]{Items: []catalog.FragranceDTO{}}, nil
}

func (s *stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*catalog.FragranceDTO, error) {
	s.getID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.fragrance, nil
}

func (s *stubCatalogService) Recommend(ctx context.Context, input catalog.RecommendInput) ([]catalog.RecommendationDTO, error) {
	s.recommendInput = &input
	return []catalog.RecommendationDTO{}, s.err
}

func TestFragranceListParsesFilters(t *testing.T) {
	stub := &stubCatalogService{}
	handler := FragranceList(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances?brand=Creed&gender=masculine&concentration=eau_de_parfum&q=aventus&limit=10", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.listInput == nil {
		t.Fatal("expected list to be called")
	}
	if stub.listInput.Filters.Brand != "Creed" {
		t.Fatalf("unexpected brand filter %q", stub.listInput.Filters.Brand)
	}
	if stub.listInput.Filters.Gender == nil || string(*stub.listInput.Filters.Gender) != "masculine" {
		t.Fatalf("unexpected gender filter %v", stub.listInput.Filters.Gender)
	}
	if stub.listInput.Filters.Query != "aventus" {
		t.Fatalf("unexpected query filter %q", stub.listInput.Filters.Query)
	}
	if stub.listInput.Pagination.Limit != 10 {
		t.Fatalf("unexpected limit %d", stub.listInput.Pagination.Limit)
	}
}

func TestFragranceListRejectsOversizedLimit(t *testing.T) {
	stub := &stubCatalogService{}
	handler := FragranceList(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances?limit=5000", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.listInput != nil {
		t.Fatal("service should not be called on invalid input")
	}
}

func TestFragranceGetRejectsMalformedID(t *testing.T) {
	stub := &stubCatalogService{}
	handler := FragranceGet(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("fragranceId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestFragranceGetMapsNotFound(t *testing.T) {
	stub := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "fragrance not found")}
	handler := FragranceGet(stub, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances/"+id.String(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("fragranceId", id.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if stub.getID != id {
		t.Fatalf("expected lookup for %s got %s", id, stub.getID)
	}
}

func TestFragranceRecommendPassesThreshold(t *testing.T) {
	stub := &stubCatalogService{}
	handler := FragranceRecommend(stub, nil)

	body := []byte(`{"notes":["bergamot","oud"],"threshold":0.4}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fragrances/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.recommendInput == nil {
		t.Fatal("expected recommend to be called")
	}
	if len(stub.recommendInput.Notes) != 2 {
		t.Fatalf("unexpected notes %v", stub.recommendInput.Notes)
	}
	if stub.recommendInput.Threshold != 0.4 {
		t.Fatalf("unexpected threshold %v", stub.recommendInput.Threshold)
	}
}

func TestFragranceRecommendRejectsEmptyNotes(t *testing.T) {
	stub := &stubCatalogService{}
	handler := FragranceRecommend(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fragrances/recommendations", bytes.NewReader([]byte(`{"notes":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestScentProfileFromMapRejectsUnknownAccord(t *testing.T) {
	_, err := scentProfileFromMap(map[string]int{"minty": 40})
	if err == nil {
		t.Fatal("expected error for unknown accord")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScentProfileFromMapFillsKnownAxes(t *testing.T) {
	profile, err := scentProfileFromMap(map[string]int{"citrus": 80, "Woody ": 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Citrus != 80 || profile.Woody != 30 {
		t.Fatalf("unexpected profile %+v", profile)
	}
}
