package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://places.googleapis.com/v1"
	defaultRoutingBaseURL       = "https://maps.googleapis.com/maps/api"
	defaultTimeout              = 5 * time.Second
	defaultRetries              = 1
	defaultRetryDelay           = 200 * time.Millisecond
	autocompleteFieldMask       = "suggestions.placePrediction.placeId,suggestions.placePrediction.text"
	placeResolveFieldMask       = "id,formattedAddress,location,addressComponents"
	requestBodyReadLimit  int64 = 1024
)

var (
	errAPIKeyRequired = errors.New("google maps api key is required")
)

// Client wraps the Google Maps APIs used for address guidance, delivery
// distance and route lookup.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	routingBaseURL string
	apiKey         string
	timeout        time.Duration
	retries        int
	retryDelay     time.Duration
	observer       Observer
}

// Observer receives the outcome of every routing round-trip.
type Observer func(operation string, elapsed time.Duration, err error)

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Places base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRoutingBaseURL overrides the Distance Matrix and Directions base URL.
func WithRoutingBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.routingBaseURL = trimmed
		}
	}
}

// WithTimeout bounds each routing attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetries sets how many extra attempts a transient routing failure gets.
func WithRetries(retries int, delay time.Duration) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithObserver installs a hook called after each routing round-trip.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds the Google Maps client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:         trimmedKey,
		baseURL:        defaultBaseURL,
		routingBaseURL: defaultRoutingBaseURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		timeout:        defaultTimeout,
		retries:        defaultRetries,
		retryDelay:     defaultRetryDelay,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.routingBaseURL == "" {
		client.routingBaseURL = defaultRoutingBaseURL
	}

	return client, nil
}

// AutocompleteRequest is the body of a Places autocomplete call.
type AutocompleteRequest struct {
	Input               string   `json:"input"`
	IncludedRegionCodes []string `json:"includedRegionCodes,omitempty"`
	LanguageCode        string   `json:"languageCode,omitempty"`
}

type AutocompleteSuggestion struct {
	PlaceID     string
	Description string
}

type PlaceDetails struct {
	PlaceID           string
	FormattedAddress  string
	Location          LatLng
	AddressComponents []AddressComponent
}

type LatLng struct {
	Latitude  float64
	Longitude float64
}

type AddressComponent struct {
	LongName  string
	ShortName string
	Types     []string
}

type autocompleteResponse struct {
	Suggestions []struct {
		PlacePrediction struct {
			PlaceID string `json:"placeId"`
			Text    struct {
				Text string `json:"text"`
			} `json:"text"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

type placeResponse struct {
	ID               string `json:"id"`
	FormattedAddress string `json:"formattedAddress"`
	Location         struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	AddressComponents []struct {
		LongText  string   `json:"longText"`
		ShortText string   `json:"shortText"`
		Types     []string `json:"types"`
	} `json:"addressComponents"`
}

// Autocomplete returns place suggestions for partial address input.
func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]AutocompleteSuggestion, error) {
	if c == nil {
		return nil, errNotConfigured()
	}
	if strings.TrimSpace(req.Input) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "encode autocomplete request")
	}

	var out autocompleteResponse
	if err := c.callPlaces(ctx, "autocomplete", http.MethodPost, joinURL(c.baseURL, "places:autocomplete"), body, autocompleteFieldMask, &out); err != nil {
		return nil, err
	}
	suggestions := make([]AutocompleteSuggestion, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		suggestions = append(suggestions, AutocompleteSuggestion{
			PlaceID:     s.PlacePrediction.PlaceID,
			Description: s.PlacePrediction.Text.Text,
		})
	}
	return suggestions, nil
}

// ResolvePlace loads the formatted address and coordinates of placeID.
func (c *Client) ResolvePlace(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if c == nil {
		return nil, errNotConfigured()
	}
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place ID is required")
	}

	var out placeResponse
	endpoint := joinURL(c.baseURL, "places/"+url.PathEscape(placeID))
	if err := c.callPlaces(ctx, "place resolve", http.MethodGet, endpoint, nil, placeResolveFieldMask, &out); err != nil {
		return nil, err
	}
	details := &PlaceDetails{
		PlaceID:           out.ID,
		FormattedAddress:  out.FormattedAddress,
		Location:          LatLng{Latitude: out.Location.Latitude, Longitude: out.Location.Longitude},
		AddressComponents: make([]AddressComponent, 0, len(out.AddressComponents)),
	}
	for _, comp := range out.AddressComponents {
		details.AddressComponents = append(details.AddressComponents, AddressComponent{
			LongName:  comp.LongText,
			ShortName: comp.ShortText,
			Types:     comp.Types,
		})
	}
	return details, nil
}

// callPlaces performs one Places API round-trip. Every failure is a
// dependency error; the Places endpoints are not retried.
func (c *Client) callPlaces(ctx context.Context, op, method, endpoint string, body []byte, fieldMask string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+" request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
			op+" request failed")
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}

func errNotConfigured() error {
	return pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
