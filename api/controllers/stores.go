package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/fooddash-backend/api/middleware"
	"github.com/angelmondragon/fooddash-backend/api/responses"
	"github.com/angelmondragon/fooddash-backend/api/validators"
	"github.com/angelmondragon/fooddash-backend/internal/stores"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

type storeCreateRequest struct {
	Name        string             `json:"name" validate:"required,min=1,max=120"`
	AddressLine string             `json:"addressLine" validate:"max=255"`
	Location    *types.Coordinates `json:"location,omitempty"`
	PlaceID     string             `json:"placeId,omitempty"`
	ImageURL    *string            `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

func (r storeCreateRequest) toInput() stores.CreateStoreInput {
	return stores.CreateStoreInput{
		Name:        strings.TrimSpace(r.Name),
		AddressLine: strings.TrimSpace(r.AddressLine),
		Location:    r.Location,
		PlaceID:     strings.TrimSpace(r.PlaceID),
		ImageURL:    r.ImageURL,
	}
}

type storeUpdateRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	AddressLine *string            `json:"addressLine,omitempty" validate:"omitempty,max=255"`
	Location    *types.Coordinates `json:"location,omitempty"`
	PlaceID     *string            `json:"placeId,omitempty"`
	ImageURL    *string            `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

func (r storeUpdateRequest) toInput() stores.UpdateStoreInput {
	return stores.UpdateStoreInput{
		Name:        r.Name,
		AddressLine: r.AddressLine,
		Location:    r.Location,
		PlaceID:     r.PlaceID,
		ImageURL:    r.ImageURL,
	}
}

// StoreCreate registers a store. Admin only.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		userID, _, err := middleware.CallerFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload storeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Create(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// StoreList returns every store.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func StoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
