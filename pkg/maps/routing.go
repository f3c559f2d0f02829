package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

const (
	statusOK             = "OK"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusUnknownError   = "UNKNOWN_ERROR"

	opDistance = "distance_matrix"
	opRoute    = "directions"
)

// DistanceResult is the single origin/destination element of a Distance
// Matrix response.
type DistanceResult struct {
	Status          string
	DistanceMeters  int64
	DurationSeconds int64
}

// Route is the first driving route returned by the Directions API.
type Route struct {
	DistanceText    string
	DurationText    string
	DistanceMeters  int64
	DurationSeconds int64
	Polyline        string
	Start           LatLng
	End             LatLng
}

type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

type valueText struct {
	Value int64  `json:"value"`
	Text  string `json:"text"`
}

type apiLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns travel distance and time between origin and destination.
// Any failure, including a non-OK element or a missing distance, is reported
// as DISTANCE_UNAVAILABLE.
func (c *Client) Distance(ctx context.Context, origin, destination LatLng) (*DistanceResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDistanceUnavailable, "google maps client not configured")
	}

	params := url.Values{}
	params.Set("origins", formatLatLng(origin))
	params.Set("destinations", formatLatLng(destination))
	params.Set("mode", "driving")

	var result *DistanceResult
	err := c.withRetry(ctx, opDistance, func(attemptCtx context.Context) error {
		var apiResp struct {
			Status       string `json:"status"`
			ErrorMessage string `json:"error_message"`
			Rows         []struct {
				Elements []struct {
					Status   string     `json:"status"`
					Distance *valueText `json:"distance"`
					Duration *valueText `json:"duration"`
				} `json:"elements"`
			} `json:"rows"`
		}
		if err := c.getJSON(attemptCtx, "distancematrix/json", params, &apiResp); err != nil {
			return err
		}
		if err := statusError(apiResp.Status, apiResp.ErrorMessage); err != nil {
			return err
		}
		if len(apiResp.Rows) == 0 || len(apiResp.Rows[0].Elements) == 0 {
			return errors.New("distance matrix returned no elements")
		}
		element := apiResp.Rows[0].Elements[0]
		if element.Status != statusOK {
			return fmt.Errorf("element status %s", element.Status)
		}
		if element.Distance == nil {
			return errors.New("distance missing from element")
		}
		res := &DistanceResult{Status: element.Status, DistanceMeters: element.Distance.Value}
		if element.Duration != nil {
			res.DurationSeconds = element.Duration.Value
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDistanceUnavailable, err, "failed to calculate distance and time")
	}
	return result, nil
}

// Route fetches the driving route between origin and destination.
func (c *Client) Route(ctx context.Context, origin, destination LatLng) (*Route, error) {
	if c == nil {
		return nil, errNotConfigured()
	}

	params := url.Values{}
	params.Set("origin", formatLatLng(origin))
	params.Set("destination", formatLatLng(destination))
	params.Set("mode", "driving")

	var result *Route
	err := c.withRetry(ctx, opRoute, func(attemptCtx context.Context) error {
		var apiResp struct {
			Status       string `json:"status"`
			ErrorMessage string `json:"error_message"`
			Routes       []struct {
				Legs []struct {
					Distance      valueText `json:"distance"`
					Duration      valueText `json:"duration"`
					StartLocation apiLatLng `json:"start_location"`
					EndLocation   apiLatLng `json:"end_location"`
				} `json:"legs"`
				OverviewPolyline struct {
					Points string `json:"points"`
				} `json:"overview_polyline"`
			} `json:"routes"`
		}
		if err := c.getJSON(attemptCtx, "directions/json", params, &apiResp); err != nil {
			return err
		}
		if err := statusError(apiResp.Status, apiResp.ErrorMessage); err != nil {
			return err
		}
		if len(apiResp.Routes) == 0 || len(apiResp.Routes[0].Legs) == 0 {
			return errors.New("directions returned no route")
		}
		route := apiResp.Routes[0]
		leg := route.Legs[0]
		result = &Route{
			DistanceText:    leg.Distance.Text,
			DurationText:    leg.Duration.Text,
			DistanceMeters:  leg.Distance.Value,
			DurationSeconds: leg.Duration.Value,
			Polyline:        route.OverviewPolyline.Points,
			Start:           LatLng{Latitude: leg.StartLocation.Lat, Longitude: leg.StartLocation.Lng},
			End:             LatLng{Latitude: leg.EndLocation.Lat, Longitude: leg.EndLocation.Lng},
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch route")
	}
	return result, nil
}

// withRetry runs attempt with a per-attempt timeout and retries transient
// failures. Every attempt error is kept in the returned error.
func (c *Client) withRetry(ctx context.Context, op string, attempt func(context.Context) error) error {
	var errs error
	for i := 0; i <= c.retries; i++ {
		if i > 0 && c.retryDelay > 0 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return multierr.Append(errs, ctx.Err())
			case <-timer.C:
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err := attempt(attemptCtx)
		cancel()
		if c.observer != nil {
			c.observer(op, time.Since(start), err)
		}
		if err == nil {
			return nil
		}

		errs = multierr.Append(errs, fmt.Errorf("attempt %d: %w", i+1, err))
		if !isTransient(err) || ctx.Err() != nil {
			break
		}
	}
	return errs
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(c.routingBaseURL, path)+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transientError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return transientError{err: statusErr}
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status, message string) error {
	if status == statusOK {
		return nil
	}
	err := fmt.Errorf("api status %s", status)
	if message != "" {
		err = fmt.Errorf("api status %s: %s", status, message)
	}
	if status == statusOverQueryLimit || status == statusUnknownError {
		return transientError{err: err}
	}
	return err
}

func formatLatLng(l LatLng) string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}
