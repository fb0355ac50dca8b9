package places

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"googlemaps.github.io/maps"
)

const (
	searchRadiusMeters = 5000
	maxRestaurants     = 5
)

// Restaurant is one venue candidate for a date plan.
type Restaurant struct {
	Name         string  `json:"name"`
	Rating       float32 `json:"rating"`
	TotalRatings int     `json:"total_ratings"`
	PriceLevel   string  `json:"price_level"`
	Address      string  `json:"address"`
	OpenNow      *bool   `json:"is_open,omitempty"`
}

// SearchRequest narrows the restaurant search to a validated plan.
type SearchRequest struct {
	City     string
	Budget   int
	DateType string
}

// Client searches for restaurants matching a plan.
type Client interface {
	SearchRestaurants(ctx context.Context, req SearchRequest) ([]Restaurant, error)
}

// googleClient is backed by the Google Maps Places text search.
type googleClient struct {
	client *maps.Client
}

// NewClient creates a Places-backed restaurant search client.
func NewClient(apiKey string) (Client, error) {
	return NewClientWithBaseURL(apiKey, "")
}

// NewClientWithBaseURL lets tests point the client at a local server.
func NewClientWithBaseURL(apiKey, baseURL string) (Client, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create places client: %w", err)
	}
	return &googleClient{client: client}, nil
}

// SearchRestaurants runs a text search biased around the plan's city,
// drops venues priced above the budget tier, and returns the top venues
// by rating and review count.
func (g *googleClient) SearchRestaurants(ctx context.Context, req SearchRequest) ([]Restaurant, error) {
	location := cityLocation(req.City)
	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    searchQuery(req.DateType, req.City),
		Location: &location,
		Radius:   searchRadiusMeters,
		Language: "en",
		Region:   "in",
		Type:     maps.PlaceTypeRestaurant,
	})
	if err != nil {
		return nil, fmt.Errorf("restaurant search failed: %w", err)
	}

	maxPrice := maxPriceLevel(req.Budget)
	restaurants := make([]Restaurant, 0, len(resp.Results))
	for _, place := range resp.Results {
		// Level 0 means the API did not price the venue; keep those.
		if place.PriceLevel != 0 && place.PriceLevel > maxPrice {
			continue
		}
		var openNow *bool
		if place.OpeningHours != nil {
			openNow = place.OpeningHours.OpenNow
		}
		restaurants = append(restaurants, Restaurant{
			Name:         place.Name,
			Rating:       place.Rating,
			TotalRatings: place.UserRatingsTotal,
			PriceLevel:   formatPriceLevel(place.PriceLevel),
			Address:      place.FormattedAddress,
			OpenNow:      openNow,
		})
	}

	sort.SliceStable(restaurants, func(i, j int) bool {
		if restaurants[i].Rating != restaurants[j].Rating {
			return restaurants[i].Rating > restaurants[j].Rating
		}
		return restaurants[i].TotalRatings > restaurants[j].TotalRatings
	})

	if len(restaurants) > maxRestaurants {
		restaurants = restaurants[:maxRestaurants]
	}
	return restaurants, nil
}

// dateTypeKeywords picks the search phrasing for recognized date types.
// Anything else searches for a plain restaurant.
var dateTypeKeywords = map[string]string{
	"romantic":        "romantic fine dining restaurant",
	"casual":          "casual restaurant cafe",
	"cozy":            "cozy cafe restaurant",
	"budget":          "budget friendly restaurant",
	"budget-friendly": "budget friendly restaurant",
}

func searchQuery(dateType, city string) string {
	keyword, ok := dateTypeKeywords[strings.ToLower(dateType)]
	if !ok {
		keyword = "restaurant"
	}
	return keyword + " in " + city
}

// maxPriceLevel maps a rupee budget to the highest acceptable Places
// price level (1 inexpensive .. 4 very expensive).
func maxPriceLevel(budget int) int {
	switch {
	case budget < 1000:
		return 1
	case budget < 2000:
		return 2
	case budget < 4000:
		return 3
	default:
		return 4
	}
}

func formatPriceLevel(level int) string {
	switch level {
	case 1:
		return "₹"
	case 2:
		return "₹₹"
	case 3:
		return "₹₹₹"
	case 4:
		return "₹₹₹₹"
	default:
		return "Budget"
	}
}

// Approximate centers of the supported metros. Unknown cities bias the
// search to Bangalore, matching the validator's default city.
var cityCoords = map[string]maps.LatLng{
	"mumbai":           {Lat: 19.0760, Lng: 72.8777},
	"delhi":            {Lat: 28.7041, Lng: 77.1025},
	"bangalore":        {Lat: 12.9716, Lng: 77.5946},
	"bengaluru":        {Lat: 12.9716, Lng: 77.5946},
	"hyderabad":        {Lat: 17.3850, Lng: 78.4867},
	"chennai":          {Lat: 13.0827, Lng: 80.2707},
	"kolkata":          {Lat: 22.5726, Lng: 88.3639},
	"pune":             {Lat: 18.5204, Lng: 73.8567},
	"ahmedabad":        {Lat: 23.0225, Lng: 72.5714},
	"jaipur":           {Lat: 26.9124, Lng: 75.7873},
	"surat":            {Lat: 21.1702, Lng: 72.8311},
	"lucknow":          {Lat: 26.8467, Lng: 80.9462},
	"kanpur":           {Lat: 26.4499, Lng: 80.3319},
	"nagpur":           {Lat: 21.1458, Lng: 79.0882},
	"indore":           {Lat: 22.7196, Lng: 75.8577},
	"thane":            {Lat: 19.2183, Lng: 72.9781},
	"bhopal":           {Lat: 23.2599, Lng: 77.4126},
	"visakhapatnam":    {Lat: 17.6868, Lng: 83.2185},
	"pimpri-chinchwad": {Lat: 18.6298, Lng: 73.7997},
	"patna":            {Lat: 25.5941, Lng: 85.1376},
	"gurgaon":          {Lat: 28.4595, Lng: 77.0266},
	"gurugram":         {Lat: 28.4595, Lng: 77.0266},
	"noida":            {Lat: 28.5355, Lng: 77.3910},
	"ghaziabad":        {Lat: 28.6692, Lng: 77.4538},
}

func cityLocation(city string) maps.LatLng {
	if location, ok := cityCoords[strings.ToLower(city)]; ok {
		return location
	}
	return cityCoords["bangalore"]
}
