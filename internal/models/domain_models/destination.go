package domain_models

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Destination is a candidate place supplied by the caller for one request.
type Destination struct {
	ID              string       `json:"id" binding:"required"`
	Name            string       `json:"name"`
	Category        string       `json:"category"`
	Location        string       `json:"location"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	EstimatedCost   float64      `json:"estimated_cost"`
	DurationMinutes int          `json:"duration_minutes"`
	Rating          float64      `json:"rating"`
	Tags            []string     `json:"tags,omitempty"`
	OpeningHours    string       `json:"opening_hours,omitempty"`
	Description     string       `json:"description,omitempty"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PreferenceProfile is maintained outside the planner and read-only here.
type PreferenceProfile struct {
	CategoryWeights map[string]float64 `json:"category_weights,omitempty"`
	PriceRange      PriceRange         `json:"price_range"`
	LocationWeights map[string]float64 `json:"location_weights,omitempty"`
}
