package services

import (
	"math"
	"strings"

	dm "tripwise/internal/models/domain_models"
)

// Place is where a day is spent: its dominant location label and, when every
// destination of the day has coordinates, their centroid.
type Place struct {
	Label    string
	Centroid *dm.Coordinates
}

// DistanceTable resolves the distance between two places in kilometres.
type DistanceTable interface {
	DistanceKm(from, to Place) float64
}

const (
	defaultLegKm  = 300.0
	earthRadiusKm = 6371.0
)

type pairKey struct {
	A string
	B string
}

func newPairKey(a, b string) pairKey {
	a, b = normalizeCity(a), normalizeCity(b)
	if a > b {
		a, b = b, a
	}
	return pairKey{A: a, B: b}
}

var cityAliases = map[string]string{
	"ha noi":      "hanoi",
	"saigon":      "ho chi minh city",
	"sai gon":     "ho chi minh city",
	"hcmc":        "ho chi minh city",
	"ho chi minh": "ho chi minh city",
	"tp hcm":      "ho chi minh city",
	"danang":      "da nang",
	"hoian":       "hoi an",
	"dalat":       "da lat",
	"nhatrang":    "nha trang",
	"halong":      "ha long",
	"ha long bay": "ha long",
	"sa pa":       "sapa",
	"phuquoc":     "phu quoc",
	"cantho":      "can tho",
	"vungtau":     "vung tau",
	"ninhbinh":    "ninh binh",
}

func normalizeCity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := cityAliases[s]; ok {
		return alias
	}
	return s
}

// Approximate travel distances between common destinations, in km.
var cityDistances = map[pairKey]float64{
	newPairKey("hanoi", "ho chi minh city"):     1140,
	newPairKey("hanoi", "da nang"):              630,
	newPairKey("hanoi", "hue"):                  540,
	newPairKey("hanoi", "ha long"):              150,
	newPairKey("hanoi", "sapa"):                 315,
	newPairKey("hanoi", "ninh binh"):            95,
	newPairKey("ha long", "ninh binh"):          160,
	newPairKey("da nang", "hoi an"):             30,
	newPairKey("da nang", "hue"):                95,
	newPairKey("hue", "hoi an"):                 125,
	newPairKey("da nang", "nha trang"):          520,
	newPairKey("da nang", "ho chi minh city"):   610,
	newPairKey("ho chi minh city", "da lat"):    300,
	newPairKey("ho chi minh city", "nha trang"): 430,
	newPairKey("ho chi minh city", "vung tau"):  95,
	newPairKey("ho chi minh city", "can tho"):   170,
	newPairKey("ho chi minh city", "phu quoc"):  300,
	newPairKey("nha trang", "da lat"):           135,
}

type staticDistanceTable struct {
	pairs map[pairKey]float64
}

func NewStaticDistanceTable() DistanceTable {
	return &staticDistanceTable{pairs: cityDistances}
}

// DistanceKm prefers the great-circle distance between centroids, then the
// city-pair table, then a fixed default.
func (t *staticDistanceTable) DistanceKm(from, to Place) float64 {
	if from.Centroid != nil && to.Centroid != nil {
		return haversineKm(*from.Centroid, *to.Centroid)
	}
	if normalizeCity(from.Label) == normalizeCity(to.Label) {
		return 0
	}
	if d, ok := t.pairs[newPairKey(from.Label, to.Label)]; ok {
		return d
	}
	return defaultLegKm
}

func haversineKm(a, b dm.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

type transportBand struct {
	UpToKm      float64
	Mode        string
	PerKm       float64
	Fixed       float64
	SpeedKmh    float64
	OverheadMin int
	PerTraveler bool
}

// Bands are checked in order; the last one has no upper bound.
var transportBands = []transportBand{
	{UpToKm: 100, Mode: "car/taxi", PerKm: 8_000, Fixed: 20_000, SpeedKmh: 50, OverheadMin: 15},
	{UpToKm: 500, Mode: "bus/train", PerKm: 1_200, Fixed: 50_000, SpeedKmh: 60, OverheadMin: 45, PerTraveler: true},
	{UpToKm: math.Inf(1), Mode: "flight", PerKm: 400, Fixed: 1_500_000, SpeedKmh: 700, OverheadMin: 150, PerTraveler: true},
}

func bandFor(km float64) transportBand {
	for _, b := range transportBands {
		if km < b.UpToKm {
			return b
		}
	}
	return transportBands[len(transportBands)-1]
}

// TransportLeg synthesizes the leg between two places. Car fares are per
// vehicle, bus and flight fares per traveler.
func TransportLeg(from, to Place, km float64, travelers int) dm.TransportLeg {
	if travelers <= 0 {
		travelers = 1
	}
	b := bandFor(km)
	cost := b.Fixed + b.PerKm*km
	if b.PerTraveler {
		cost *= float64(travelers)
	}
	minutes := int(math.Round(km/b.SpeedKmh*60)) + b.OverheadMin
	return dm.TransportLeg{
		From:            from.Label,
		To:              to.Label,
		Mode:            b.Mode,
		DistanceKm:      math.Round(km*10) / 10,
		Cost:            math.Round(cost),
		DurationMinutes: minutes,
	}
}
