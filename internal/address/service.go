// Package address turns free-text queries into stored addresses through the
// maps places API.
package address

import (
	"context"
	"slices"
	"strings"

	"github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/maps"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// lineComponents builds an address line when the provider sent no
// formatted address.
var lineComponents = []string{"street_number", "route", "sublocality", "locality"}

type placesClient interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID string) (*maps.PlaceDetails, error)
}

type Service interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
	Resolve(ctx context.Context, req ResolveRequest) (Location, error)
}

type SuggestRequest struct {
	Query    string
	Country  string
	Language string
}

type ResolveRequest struct {
	PlaceID string
}

type Suggestion struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// Location is a geocoded address ready to be stored on a user or store.
type Location struct {
	PlaceID     string            `json:"placeId,omitempty"`
	Line        string            `json:"addressLine"`
	Coordinates types.Coordinates `json:"coordinates"`
}

type service struct {
	places placesClient
}

func NewService(client placesClient) Service {
	return &service{places: client}
}

func (s *service) ready() error {
	if s == nil || s.places == nil {
		return errors.New(errors.CodeDependency, "maps client unavailable")
	}
	return nil
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New(errors.CodeValidation, "query is required")
	}

	ask := maps.AutocompleteRequest{Input: query, LanguageCode: strings.TrimSpace(req.Language)}
	if region := strings.ToUpper(strings.TrimSpace(req.Country)); region != "" {
		ask.IncludedRegionCodes = []string{region}
	}
	found, err := s.places.Autocomplete(ctx, ask)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, len(found))
	for i, f := range found {
		out[i] = Suggestion{PlaceID: f.PlaceID, Description: f.Description}
	}
	return out, nil
}

func (s *service) Resolve(ctx context.Context, req ResolveRequest) (Location, error) {
	if err := s.ready(); err != nil {
		return Location{}, err
	}
	placeID := strings.TrimSpace(req.PlaceID)
	if placeID == "" {
		return Location{}, errors.New(errors.CodeValidation, "placeId is required")
	}
	details, err := s.places.ResolvePlace(ctx, placeID)
	if err != nil {
		return Location{}, err
	}
	return mapPlaceDetails(details)
}

// mapPlaceDetails treats a place without coordinates or any usable address
// text as a provider failure.
func mapPlaceDetails(details *maps.PlaceDetails) (Location, error) {
	if details == nil {
		return Location{}, errors.New(errors.CodeDependency, "place details missing")
	}
	loc := Location{
		PlaceID:     details.PlaceID,
		Line:        strings.TrimSpace(details.FormattedAddress),
		Coordinates: types.Coordinates{Latitude: details.Location.Latitude, Longitude: details.Location.Longitude},
	}
	if !loc.Coordinates.Valid() {
		return Location{}, errors.New(errors.CodeDependency, "place location missing")
	}
	if loc.Line == "" {
		loc.Line = lineFromComponents(details.AddressComponents)
	}
	if loc.Line == "" {
		return Location{}, errors.New(errors.CodeDependency, "address line missing")
	}
	return loc, nil
}

func lineFromComponents(components []maps.AddressComponent) string {
	var parts []string
	for _, kind := range lineComponents {
		i := slices.IndexFunc(components, func(c maps.AddressComponent) bool {
			return c.LongName != "" && slices.Contains(c.Types, kind)
		})
		if i >= 0 {
			parts = append(parts, components[i].LongName)
		}
	}
	return strings.Join(parts, " ")
}
