package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newPlacesServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient("test-key", WithBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("   ")
	require.ErrorIs(t, err, errAPIKeyRequired)
}

func TestAutocompleteSendsFieldMaskAndMapsSuggestions(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/places:autocomplete", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		require.Equal(t, autocompleteFieldMask, r.Header.Get("X-Goog-FieldMask"))

		var body AutocompleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "12 Ayala Ave", body.Input)
		require.Equal(t, []string{"PH"}, body.IncludedRegionCodes)

		_, _ = w.Write([]byte(`{"suggestions":[{"placePrediction":{"placeId":"p-1","text":{"text":"12 Ayala Ave, Makati"}}}]}`))
	})

	got, err := client.Autocomplete(context.Background(), AutocompleteRequest{Input: "12 Ayala Ave", IncludedRegionCodes: []string{"PH"}})
	require.NoError(t, err)
	require.Equal(t, []AutocompleteSuggestion{{PlaceID: "p-1", Description: "12 Ayala Ave, Makati"}}, got)
}

func TestAutocompleteBlankInput(t *testing.T) {
	client, err := NewClient("k")
	require.NoError(t, err)
	_, err = client.Autocomplete(context.Background(), AutocompleteRequest{Input: "  "})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestResolvePlaceMapsDetails(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/places/p-1", r.URL.Path)
		require.Equal(t, placeResolveFieldMask, r.Header.Get("X-Goog-FieldMask"))
		_, _ = w.Write([]byte(`{"id":"p-1","formattedAddress":"12 Ayala Ave, Makati","location":{"latitude":14.55,"longitude":121.02},"addressComponents":[{"longText":"Makati","shortText":"Makati","types":["locality"]}]}`))
	})

	got, err := client.ResolvePlace(context.Background(), " p-1 ")
	require.NoError(t, err)
	require.Equal(t, "12 Ayala Ave, Makati", got.FormattedAddress)
	require.Equal(t, LatLng{Latitude: 14.55, Longitude: 121.02}, got.Location)
	require.Equal(t, []AddressComponent{{LongName: "Makati", ShortName: "Makati", Types: []string{"locality"}}}, got.AddressComponents)
}

func TestPlacesUpstreamErrorIsDependency(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.ResolvePlace(context.Background(), "p-1")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	require.Contains(t, err.Error(), "place resolve request failed")
}

func TestNilPlacesClient(t *testing.T) {
	var client *Client
	_, err := client.Autocomplete(context.Background(), AutocompleteRequest{Input: "x"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}
