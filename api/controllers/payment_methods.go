package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/api/responses"
	"github.com/angelmondragon/fooddash-backend/api/validators"
	"github.com/angelmondragon/fooddash-backend/internal/paymentmethods"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

type paymentMethodCreateRequest struct {
	Type        string  `json:"type" validate:"required"`
	GCashNumber *string `json:"gcashNumber,omitempty" validate:"omitempty,max=20"`
	GCashQRCode *string `json:"gcashQrCode,omitempty" validate:"omitempty,max=2048"`
}

type paymentMethodActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type paymentMethodResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	GCashNumber *string   `json:"gcashNumber,omitempty"`
	GCashQRCode *string   `json:"gcashQrCode,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newPaymentMethodResponse(m *models.PaymentMethod) paymentMethodResponse {
	return paymentMethodResponse{
		ID:          m.ID,
		Type:        m.Type.String(),
		GCashNumber: m.GCashNumber,
		GCashQRCode: m.GCashQRCode,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

func newPaymentMethodList(methods []models.PaymentMethod) []paymentMethodResponse {
	out := make([]paymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, newPaymentMethodResponse(&methods[i]))
	}
	return out
}

func PaymentMethodCreate(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}
		var payload paymentMethodCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := svc.Create(r.Context(), paymentmethods.CreateInput{
			Type:        payload.Type,
			GCashNumber: payload.GCashNumber,
			GCashQRCode: payload.GCashQRCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPaymentMethodResponse(method))
	}
}

// PaymentMethodList returns every method including disabled ones.
func PaymentMethodList(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return listPaymentMethods(svc, logg, false)
}

// PaymentMethodsAvailable returns the methods a customer may pick at checkout.
func PaymentMethodsAvailable(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return listPaymentMethods(svc, logg, true)
}

func listPaymentMethods(svc paymentmethods.Service, logg *logger.Logger, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}
		methods, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentMethodList(methods))
	}
}

func PaymentMethodSetActive(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "paymentMethodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload paymentMethodActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := svc.SetActive(r.Context(), id, *payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentMethodResponse(method))
	}
}
