package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/fooddash-backend/api/responses"
	"github.com/angelmondragon/fooddash-backend/api/validators"
	"github.com/angelmondragon/fooddash-backend/internal/address"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const maxSuggestQueryLen = 200

type resolveAddressPayload struct {
	PlaceID string `json:"placeId" validate:"required"`
}

// AddressSuggest proxies Places autocomplete for the address picker.
func AddressSuggest(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		q := r.URL.Query()
		query := q.Get("q")
		if strings.TrimSpace(query) == "" {
			query = q.Get("query")
		}
		req := address.SuggestRequest{
			Query:    validators.SanitizeString(query, maxSuggestQueryLen),
			Country:  strings.TrimSpace(q.Get("country")),
			Language: strings.TrimSpace(q.Get("language")),
		}

		resp, err := svc.Suggest(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"suggestions": resp})
	}
}

// AddressResolve turns a place id into a geocoded address line.
func AddressResolve(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		var payload resolveAddressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		addr, err := svc.Resolve(ctx, address.ResolveRequest{PlaceID: strings.TrimSpace(payload.PlaceID)})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}
