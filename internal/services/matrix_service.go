package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	dm "tripwise/internal/models/domain_models"
)

// roadKey identifies a directed centroid pair, rounded to ~100m so that
// nearby centroids share a cache slot.
type roadKey struct {
	Profile string
	From    string
	To      string
}

func newRoadKey(profile string, a, b dm.Coordinates) roadKey {
	return roadKey{
		Profile: profile,
		From:    fmt.Sprintf("%.3f,%.3f", a.Lng, a.Lat),
		To:      fmt.Sprintf("%.3f,%.3f", b.Lng, b.Lat),
	}
}

type roadCacheEntry struct {
	Km        float64
	ExpiresAt time.Time
}

type roadDistanceCache struct {
	mu    sync.RWMutex
	store map[roadKey]roadCacheEntry
}

func (c *roadDistanceCache) get(k roadKey, now time.Time) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.store[k]
	if !ok || now.After(it.ExpiresAt) {
		return 0, false
	}
	return it.Km, true
}

func (c *roadDistanceCache) set(k roadKey, km float64, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[k] = roadCacheEntry{Km: km, ExpiresAt: expires}
}

// MapboxDistanceTable asks the Mapbox matrix API for road distances between
// day centroids and falls back to the static table whenever a centroid is
// missing or the call fails.
type MapboxDistanceTable struct {
	HTTP        *http.Client
	BaseURL     string
	AccessToken string
	Profile     string
	TTL         time.Duration
	Timeout     time.Duration
	Fallback    DistanceTable

	cache *roadDistanceCache
	now   func() time.Time
}

func NewMapboxDistanceTable(token string, fallback DistanceTable) *MapboxDistanceTable {
	if fallback == nil {
		fallback = NewStaticDistanceTable()
	}
	return &MapboxDistanceTable{
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		BaseURL:     "https://api.mapbox.com",
		AccessToken: token,
		Profile:     "driving",
		TTL:         7 * 24 * time.Hour,
		Timeout:     5 * time.Second,
		Fallback:    fallback,
		cache:       &roadDistanceCache{store: make(map[roadKey]roadCacheEntry)},
		now:         time.Now,
	}
}

func (t *MapboxDistanceTable) DistanceKm(from, to Place) float64 {
	if from.Centroid == nil || to.Centroid == nil {
		return t.Fallback.DistanceKm(from, to)
	}
	k := newRoadKey(t.Profile, *from.Centroid, *to.Centroid)
	if k.From == k.To {
		return 0
	}
	if km, ok := t.cache.get(k, t.now()); ok {
		return km
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.Timeout)
	defer cancel()
	km, err := t.fetch(ctx, *from.Centroid, *to.Centroid)
	if err != nil {
		slog.Warn("road distance lookup failed, using static table", "error", err)
		return t.Fallback.DistanceKm(from, to)
	}
	t.cache.set(k, km, t.now().Add(t.TTL))
	return km
}

func (t *MapboxDistanceTable) fetch(ctx context.Context, a, b dm.Coordinates) (float64, error) {
	base, err := url.Parse(t.BaseURL)
	if err != nil {
		return 0, fmt.Errorf("mapbox base url: %w", err)
	}
	u := *base
	u.Path = fmt.Sprintf("/directions-matrix/v1/mapbox/%s/%f,%f;%f,%f", t.Profile, a.Lng, a.Lat, b.Lng, b.Lat)
	q := url.Values{}
	q.Set("annotations", "distance")
	q.Set("sources", "0")
	q.Set("destinations", "1")
	q.Set("access_token", t.AccessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("mapbox matrix http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("mapbox matrix bad status: %s", resp.Status)
	}

	var payload struct {
		Distances [][]*float64 `json:"distances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("mapbox decode: %w", err)
	}
	if len(payload.Distances) == 0 || len(payload.Distances[0]) == 0 || payload.Distances[0][0] == nil {
		return 0, fmt.Errorf("mapbox matrix: no route")
	}
	return *payload.Distances[0][0] / 1000, nil
}
