package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vivimap/internal/feature/search/domain/entity"
	"vivimap/internal/feature/search/usecase"
	"vivimap/internal/platform/externalapi/nominatim/dto"
	"vivimap/internal/shared/ratelimiter"
)

// Client is a usecase.Geocoder backed by Nominatim.
type Client struct {
	cfg      Config
	client   *http.Client
	throttle ratelimiter.Waiter
}

var _ usecase.Geocoder = (*Client)(nil)

// NewClient creates a client. throttle spaces outbound requests; it may be nil.
func NewClient(cfg Config, client *http.Client, throttle ratelimiter.Waiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	return &Client{cfg: cfg, client: client, throttle: throttle}
}

// Search queries /search and maps each result to a place.
func (n *Client) Search(ctx context.Context, query string) ([]entity.Place, error) {
	if n.throttle != nil {
		if err := n.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(n.cfg.Limit))

	u := fmt.Sprintf("%s/search?%s", strings.TrimRight(n.cfg.BaseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if n.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", n.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("nominatim http %d", res.StatusCode)
	}

	var body []dto.SearchResult
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	places := make([]entity.Place, 0, len(body))
	for _, r := range body {
		p, err := toPlace(r)
		if err != nil {
			slog.Warn("skipping malformed nominatim result", "name", r.DisplayName, "error", err)
			continue
		}
		places = append(places, p)
	}
	return places, nil
}

func toPlace(r dto.SearchResult) (entity.Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return entity.Place{}, fmt.Errorf("parse lat %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return entity.Place{}, fmt.Errorf("parse lon %q: %w", r.Lon, err)
	}
	return entity.Place{
		Name:      r.DisplayName,
		Latitude:  lat,
		Longitude: lon,
		Zoom:      entity.ZoomFor(r.Class, r.Type, r.AddressType),
		Bounds:    toBounds(r.BoundingBox),
	}, nil
}

// toBounds converts [south, north, west, east] to [[south, west], [north, east]].
// A missing or malformed box yields nil.
func toBounds(box []string) *entity.Bounds {
	if len(box) != 4 {
		return nil
	}
	var v [4]float64
	for i, s := range box {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		v[i] = f
	}
	s, n, w, e := v[0], v[1], v[2], v[3]
	return &entity.Bounds{{s, w}, {n, e}}
}
