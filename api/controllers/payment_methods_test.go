package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/internal/paymentmethods"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
)

type stubPaymentMethodService struct {
	methods    []models.PaymentMethod
	activeOnly *bool
	created    paymentmethods.CreateInput
}

func (s *stubPaymentMethodService) Create(_ context.Context, input paymentmethods.CreateInput) (*models.PaymentMethod, error) {
	s.created = input
	return &models.PaymentMethod{ID: uuid.New(), Type: enums.PaymentMethodGCash, GCashNumber: input.GCashNumber, IsActive: true}, nil
}

func (s *stubPaymentMethodService) Get(context.Context, uuid.UUID) (*models.PaymentMethod, error) {
	panic("unimplemented")
}

func (s *stubPaymentMethodService) List(_ context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	s.activeOnly = &activeOnly
	return s.methods, nil
}

func (s *stubPaymentMethodService) SetActive(context.Context, uuid.UUID, bool) (*models.PaymentMethod, error) {
	panic("unimplemented")
}

func TestPaymentMethodsAvailableListsActiveOnly(t *testing.T) {
	stub := &stubPaymentMethodService{methods: []models.PaymentMethod{
		{ID: uuid.New(), Type: enums.PaymentMethodCOD, IsActive: true},
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods/available", nil)
	rec := httptest.NewRecorder()
	PaymentMethodsAvailable(stub, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.activeOnly == nil || !*stub.activeOnly {
		t.Fatal("expected active-only listing")
	}
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0]["type"] != "COD" {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
	if _, ok := envelope.Data[0]["gcashNumber"]; ok {
		t.Fatal("gcashNumber should be omitted for COD")
	}
}

func TestPaymentMethodListIncludesInactive(t *testing.T) {
	stub := &stubPaymentMethodService{}
	rec := httptest.NewRecorder()
	PaymentMethodList(stub, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.activeOnly == nil || *stub.activeOnly {
		t.Fatal("admin listing must include inactive methods")
	}
}

func TestPaymentMethodCreateForwardsGCashNumber(t *testing.T) {
	stub := &stubPaymentMethodService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment-methods", strings.NewReader(`{"type":"GCash","gcashNumber":"09171234567"}`))
	rec := httptest.NewRecorder()
	PaymentMethodCreate(stub, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.created.Type != "GCash" || stub.created.GCashNumber == nil || *stub.created.GCashNumber != "09171234567" {
		t.Fatalf("unexpected input %+v", stub.created)
	}
}
