package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/api/responses"
	"github.com/angelmondragon/fooddash-backend/api/validators"
	"github.com/angelmondragon/fooddash-backend/internal/menuoptions"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const maxOptionBatch = 100

type menuOptionRequest struct {
	ProductID     uuid.UUID       `json:"productId"`
	GroupName     string          `json:"groupName" validate:"max=80"`
	OptionName    string          `json:"optionName" validate:"max=80"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
	IsRequired    bool            `json:"isRequired"`
	SelectionType string          `json:"selectionType" validate:"omitempty,oneof=single multiple"`
}

func (r menuOptionRequest) toInput() menuoptions.OptionInput {
	return menuoptions.OptionInput{
		ProductID:     r.ProductID,
		GroupName:     r.GroupName,
		OptionName:    r.OptionName,
		PriceModifier: r.PriceModifier,
		IsRequired:    r.IsRequired,
		SelectionType: r.SelectionType,
	}
}

type menuOptionUpdateRequest struct {
	GroupName     *string          `json:"groupName,omitempty" validate:"omitempty,min=1,max=80"`
	OptionName    *string          `json:"optionName,omitempty" validate:"omitempty,min=1,max=80"`
	PriceModifier *decimal.Decimal `json:"priceModifier,omitempty"`
	IsRequired    *bool            `json:"isRequired,omitempty"`
	SelectionType *string          `json:"selectionType,omitempty" validate:"omitempty,oneof=single multiple"`
}

// decodeMenuOptionCreate reads either one option object or an array of them.
func decodeMenuOptionCreate(r *http.Request) (menuoptions.CreateInput, error) {
	payload, err := validators.ReadJSONBody(r)
	if err != nil {
		return menuoptions.CreateInput{}, err
	}

	if payload[0] != '[' {
		var single menuOptionRequest
		if err := validators.DecodeJSONBytes(payload, &single); err != nil {
			return menuoptions.CreateInput{}, err
		}
		item := single.toInput()
		return menuoptions.CreateInput{Single: &item}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return menuoptions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if len(raw) == 0 {
		return menuoptions.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one option is required")
	}
	if len(raw) > maxOptionBatch {
		return menuoptions.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "too many options in one request").
			WithDetails(map[string]any{"max": maxOptionBatch})
	}
	batch := make([]menuoptions.OptionInput, 0, len(raw))
	for i, element := range raw {
		var item menuOptionRequest
		if err := validators.DecodeJSONBytes(element, &item); err != nil {
			return menuoptions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid option").
				WithDetails(map[string]any{"index": i})
		}
		batch = append(batch, item.toInput())
	}
	return menuoptions.CreateInput{Batch: batch}, nil
}

// MenuOptionCreate creates one option or an all-or-nothing batch.
func MenuOptionCreate(svc menuoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu option service unavailable"))
			return
		}
		input, err := decodeMenuOptionCreate(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.IsBatch() {
			responses.WriteSuccessStatus(w, http.StatusCreated, created)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created[0])
	}
}

// ProductMenuOptions returns a product's options grouped by group name.
func ProductMenuOptions(svc menuoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu option service unavailable"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		groups, err := svc.ListGrouped(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func MenuOptionUpdate(svc menuoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu option service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "optionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload menuOptionUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		option, err := svc.Update(r.Context(), id, menuoptions.UpdateInput{
			GroupName:     payload.GroupName,
			OptionName:    payload.OptionName,
			PriceModifier: payload.PriceModifier,
			IsRequired:    payload.IsRequired,
			SelectionType: payload.SelectionType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, option)
	}
}

func MenuOptionDelete(svc menuoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu option service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "optionId")
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
