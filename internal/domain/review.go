package domain

import "time"

// Review sources / channels.
const (
	SourceHostaway = "hostaway"
	SourceGoogle   = "google"
)

// ReviewCategory is a per-aspect score on the canonical 0-10 scale.
type ReviewCategory struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// HostawayReview is a raw record as returned by the Hostaway reviews API.
type HostawayReview struct {
	ID             int64            `json:"id"`
	Type           string           `json:"type"`
	Status         string           `json:"status"`
	Rating         *float64         `json:"rating"`
	PublicReview   string           `json:"publicReview"`
	ReviewCategory []ReviewCategory `json:"reviewCategory"`
	SubmittedAt    string           `json:"submittedAt"`
	GuestName      string           `json:"guestName"`
	ListingName    string           `json:"listingName"`
}

// GoogleReview is a raw record from the Places details response (1-5 scale).
type GoogleReview struct {
	AuthorName string  `json:"author_name"`
	Language   string  `json:"language,omitempty"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"` // unix seconds
}

// PlaceSummary is one result of a Places text search.
type PlaceSummary struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Rating           float64 `json:"rating,omitempty"`
	UserRatingsTotal int     `json:"user_ratings_total,omitempty"`
}

// PlaceDetails is a Places details response including its reviews.
type PlaceDetails struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	Rating           float64        `json:"rating"`
	UserRatingsTotal int            `json:"user_ratings_total"`
	Reviews          []GoogleReview `json:"reviews"`
	FormattedAddress string         `json:"formatted_address,omitempty"`
}

// NormalizedReview is the canonical cross-source review shape. Rating is always
// on the 0-10 scale regardless of the source's native scale, and Categories is
// never empty after normalization.
type NormalizedReview struct {
	ID          string           `json:"id"`
	ListingID   string           `json:"listingId"`
	ListingName string           `json:"listingName"`
	GuestName   string           `json:"guestName"`
	Rating      float64          `json:"rating"`
	Comment     string           `json:"comment"`
	Categories  []ReviewCategory `json:"categories"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Source      string           `json:"source"`
	Type        string           `json:"type"`
	Status      string           `json:"status"`
	IsApproved  bool             `json:"isApproved"`
	Channel     string           `json:"channel,omitempty"`
}

// Trend is one month of review volume and average rating.
type Trend struct {
	Date      string  `json:"date"` // YYYY-MM
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// ReviewStats aggregates a combined list of normalized reviews.
type ReviewStats struct {
	TotalReviews       int            `json:"totalReviews"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution map[int]int    `json:"ratingDistribution"` // 1-5 star buckets
	ByChannel          map[string]int `json:"byChannel"`
	ByProperty         map[string]int `json:"byProperty"`
	Trends             []Trend        `json:"trends"` // ascending by Date
}
