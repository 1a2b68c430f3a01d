package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

/********** keyword registries (single source of truth) **********/

// Ordered so extracted categories come out in a stable order.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"cleanliness", []string{"clean", "dirty", "tidy", "messy", "hygiene", "spotless"}},
	{"communication", []string{"communication", "responsive", "reply", "contact", "message"}},
	{"location", []string{"location", "area", "neighborhood", "nearby", "walking distance"}},
	{"value", []string{"value", "price", "expensive", "cheap", "worth", "cost"}},
	{"amenities", []string{"wifi", "kitchen", "bathroom", "bed", "furniture", "appliances"}},
	{"check_in", []string{"check-in", "checkin", "arrival", "keys", "access"}},
	{"accuracy", []string{"accurate", "description", "photos", "listing", "matches"}},
}

var positiveWords = []string{"excellent", "great", "amazing", "perfect", "wonderful", "fantastic", "outstanding"}
var negativeWords = []string{"terrible", "awful", "horrible", "disappointing", "bad", "poor", "worst"}

const overallExperienceCategory = "overall_experience"

/********** slugify **********/

// Slugify derives a listing id from a display name: lowercase, whitespace runs
// to single hyphens, non [a-z0-9-] stripped, hyphen runs collapsed, edge
// hyphens trimmed. Idempotent. The same function is applied to both providers'
// listing names; there is no cross-provider identity reconciliation, so two
// records refer to the same listing only when the names slugify identically.
func Slugify(name string) string {
	s := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

/********** tiny helpers **********/

func round1(x float64) float64 { return math.Round(x*10) / 10 }

var submittedAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSubmittedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable submittedAt %q", s)
}

func categoryMean(cats []domain.ReviewCategory) float64 {
	if len(cats) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range cats {
		sum += c.Rating
	}
	return round1(sum / float64(len(cats)))
}

/********** property source (Hostaway) **********/

// NormalizeHostaway maps a raw Hostaway record into the canonical shape.
// Rating resolution: explicit rating if present, else the rounded mean of the
// category ratings, else 0. Deterministic: the same raw record always yields
// an identical output.
func NormalizeHostaway(r domain.HostawayReview) (domain.NormalizedReview, error) {
	if r.ID == 0 {
		return domain.NormalizedReview{}, fmt.Errorf("hostaway review: missing id")
	}
	if strings.TrimSpace(r.ListingName) == "" {
		return domain.NormalizedReview{}, fmt.Errorf("hostaway review %d: missing listing name", r.ID)
	}
	ts, err := parseSubmittedAt(r.SubmittedAt)
	if err != nil {
		return domain.NormalizedReview{}, fmt.Errorf("hostaway review %d: %w", r.ID, err)
	}

	rating := 0.0
	switch {
	case r.Rating != nil:
		rating = *r.Rating
	case len(r.ReviewCategory) > 0:
		rating = categoryMean(r.ReviewCategory)
	}

	cats := make([]domain.ReviewCategory, len(r.ReviewCategory))
	copy(cats, r.ReviewCategory)
	if len(cats) == 0 {
		cats = []domain.ReviewCategory{{Category: overallExperienceCategory, Rating: rating}}
	}

	return domain.NormalizedReview{
		ID:          fmt.Sprintf("hostaway-%d", r.ID),
		ListingID:   Slugify(r.ListingName),
		ListingName: r.ListingName,
		GuestName:   r.GuestName,
		Rating:      rating,
		Comment:     r.PublicReview,
		Categories:  cats,
		SubmittedAt: ts,
		Source:      domain.SourceHostaway,
		Type:        r.Type,
		Status:      r.Status,
	}, nil
}

// NormalizeAllHostaway applies NormalizeHostaway item-wise, preserving input
// order. A malformed record is skipped with a warning instead of aborting the
// batch.
func NormalizeAllHostaway(raws []domain.HostawayReview) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(raws))
	for _, r := range raws {
		nr, err := NormalizeHostaway(r)
		if err != nil {
			log.Warn().Err(err).Int64("id", r.ID).Msg("skipping malformed hostaway review")
			continue
		}
		out = append(out, nr)
	}
	return out
}

/********** place source (Google) **********/

// NormalizeGoogle maps a raw Places review into the canonical shape. Ratings
// arrive on a 1-5 scale and are doubled onto the 0-10 scale. The id is a
// stable digest of the review's native fields, so re-importing the same
// underlying review produces the same id.
func NormalizeGoogle(r domain.GoogleReview, placeName string) (domain.NormalizedReview, error) {
	if strings.TrimSpace(placeName) == "" {
		return domain.NormalizedReview{}, fmt.Errorf("google review: missing place name")
	}
	if r.Time <= 0 {
		return domain.NormalizedReview{}, fmt.Errorf("google review by %q: missing timestamp", r.AuthorName)
	}

	rating := r.Rating * 2
	if rating < 0 {
		rating = 0
	} else if rating > 10 {
		rating = 10
	}

	return domain.NormalizedReview{
		ID:          googleReviewID(r),
		ListingID:   Slugify(placeName),
		ListingName: placeName,
		GuestName:   r.AuthorName,
		Rating:      rating,
		Comment:     r.Text,
		Categories:  extractCategories(r.Text, rating),
		SubmittedAt: time.Unix(r.Time, 0).UTC(),
		Source:      domain.SourceGoogle,
		Type:        "guest-review",
		Status:      "published",
		Channel:     domain.SourceGoogle,
	}, nil
}

// NormalizePlaceReviews normalizes every review of a place, skipping and
// logging malformed records.
func NormalizePlaceReviews(place domain.PlaceDetails) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(place.Reviews))
	for _, r := range place.Reviews {
		nr, err := NormalizeGoogle(r, place.Name)
		if err != nil {
			log.Warn().Err(err).Str("place_id", place.PlaceID).Msg("skipping malformed google review")
			continue
		}
		out = append(out, nr)
	}
	return out
}

// googleReviewID synthesizes a deterministic source-prefixed id from the
// review's native fields. Google exposes no review id of its own.
func googleReviewID(r domain.GoogleReview) string {
	sig := strings.Join([]string{r.AuthorName, fmt.Sprintf("%d", r.Time), r.Text}, "|")
	sum := sha1.Sum([]byte(sig))
	return fmt.Sprintf("google-%d-%s", r.Time, hex.EncodeToString(sum[:])[:9])
}

// extractCategories emits one category per keyword-table hit. The category
// rating is the overall rating nudged by +-1 (clamped to [1,10]) toward
// whichever of the positive/negative word lists had more matches; ties leave
// it untouched. No hit anywhere yields a single overall_experience category.
func extractCategories(text string, rating float64) []domain.ReviewCategory {
	lower := strings.ToLower(text)

	var cats []domain.ReviewCategory
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				cats = append(cats, domain.ReviewCategory{
					Category: entry.name,
					Rating:   adjustForSentiment(lower, rating),
				})
				break
			}
		}
	}

	if len(cats) == 0 {
		cats = []domain.ReviewCategory{{Category: overallExperienceCategory, Rating: rating}}
	}
	return cats
}

func adjustForSentiment(lower string, rating float64) float64 {
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return math.Min(10, rating+1)
	case neg > pos:
		return math.Max(1, rating-1)
	}
	return rating
}
