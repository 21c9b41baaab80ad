// Package geo enriches facility records that arrive without coordinates.
// Geocoding is optional: a failed or disabled lookup leaves the location
// unset, which downstream scoring reports as "distance unknown" rather than
// treating as (0,0).
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RichterLProgram/CuraWay-sub000/internal/cache"
	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"golang.org/x/time/rate"
)

const userAgent = "CuraWay/0.1 (+https://github.com/RichterLProgram/CuraWay-sub000)"

// Geocoder resolves free-text place queries to coordinates through a
// Nominatim-compatible endpoint, rate-limited and cached.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewGeocoder creates a geocoder from config. Returns nil when disabled so
// callers can skip enrichment with a nil check.
func NewGeocoder(cfg model.GeocoderConfig) *Geocoder {
	if !cfg.Enabled {
		return nil
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Geocoder{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      cache.NewMemoryCache(ttl, 10*time.Minute),
		cacheTTL:   ttl,
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve geocodes a free-text query. A miss (no results) returns nil
// without error; callers treat both errors and misses as "still unlocated".
func (g *Geocoder) Resolve(ctx context.Context, query string) (*model.GeoPoint, error) {
	if query == "" {
		return nil, nil
	}

	key := cache.Key("geocode:" + query)
	if data, ok := g.cache.Get(key); ok {
		var point model.GeoPoint
		if err := json.Unmarshal(data, &point); err == nil {
			return &point, nil
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, fmt.Errorf("malformed coordinates in response")
	}

	point := model.GeoPoint{Lat: lat, Lon: lon}
	if data, err := json.Marshal(point); err == nil {
		_ = g.cache.Set(key, data, g.cacheTTL)
	}
	return &point, nil
}

// Enrich fills missing coordinates on a location in place, using the
// facility name and region as the query. No-op when the geocoder is nil or
// the location is already complete.
func (g *Geocoder) Enrich(ctx context.Context, loc *model.Location, facilityName string) error {
	if g == nil || loc == nil {
		return nil
	}
	if _, ok := loc.Point(); ok {
		return nil
	}

	query := facilityName
	if loc.Region != "" {
		query += ", " + loc.Region
	}
	point, err := g.Resolve(ctx, query)
	if err != nil || point == nil {
		return err
	}
	loc.Lat = &point.Lat
	loc.Lon = &point.Lon
	return nil
}
