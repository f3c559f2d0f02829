package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/internal/stores"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

type stubStoreService struct {
	dto       *stores.StoreDTO
	err       error
	lastInput stores.CreateStoreInput
}

func (s *stubStoreService) Create(_ context.Context, actorID uuid.UUID, input stores.CreateStoreInput) (*stores.StoreDTO, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	out := *s.dto
	out.CreatedBy = actorID
	return &out, nil
}

func (s *stubStoreService) GetByID(context.Context, uuid.UUID) (*stores.StoreDTO, error) {
	return s.dto, s.err
}

func (s *stubStoreService) List(context.Context) ([]stores.StoreDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []stores.StoreDTO{*s.dto}, nil
}

func (s *stubStoreService) Update(context.Context, uuid.UUID, stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	return s.dto, s.err
}

func (s *stubStoreService) Delete(context.Context, uuid.UUID) error {
	return s.err
}

func sampleStore() *stores.StoreDTO {
	return &stores.StoreDTO{
		ID:          uuid.New(),
		Name:        "Jollibee Taft",
		AddressLine: "2401 Taft Ave, Malate, Manila",
		Location:    types.Coordinates{Latitude: 14.5648, Longitude: 120.9932},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestStoreCreateSuccess(t *testing.T) {
	adminID := uuid.New()
	stub := &stubStoreService{dto: sampleStore()}
	body := `{"name":"Jollibee Taft","addressLine":"2401 Taft Ave","location":{"latitude":14.5648,"longitude":120.9932}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stores", strings.NewReader(body))
	req = req.WithContext(asCaller(req.Context(), adminID, "admin"))

	resp := httptest.NewRecorder()
	StoreCreate(stub, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastInput.Location == nil || stub.lastInput.Location.Latitude != 14.5648 {
		t.Fatalf("expected location forwarded, got %+v", stub.lastInput.Location)
	}

	var envelope struct {
		Data stores.StoreDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CreatedBy != adminID {
		t.Fatalf("expected createdBy %s got %s", adminID, envelope.Data.CreatedBy)
	}
}

func TestStoreCreateRejectsUnknownFields(t *testing.T) {
	stub := &stubStoreService{dto: sampleStore()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stores", strings.NewReader(`{"name":"X","category":"fastfood"}`))
	req = req.WithContext(asCaller(req.Context(), uuid.New(), "admin"))

	resp := httptest.NewRecorder()
	StoreCreate(stub, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStoreGetMapsNotFound(t *testing.T) {
	stub := &stubStoreService{err: pkgerrors.New(pkgerrors.CodeNotFound, "store not found")}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores/"+id.String(), nil)
	req = req.WithContext(withURLParam(req.Context(), "storeId", id.String()))

	resp := httptest.NewRecorder()
	StoreGet(stub, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
