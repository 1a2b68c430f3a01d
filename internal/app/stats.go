package app

import (
	"math"
	"sort"

	"flex_reviews/internal/domain"
)

// CalculateStats computes cross-source statistics over a combined list of
// normalized reviews. Pure and O(n); safe to call on every request.
func CalculateStats(reviews []domain.NormalizedReview) domain.ReviewStats {
	stats := domain.ReviewStats{
		TotalReviews:       len(reviews),
		RatingDistribution: make(map[int]int),
		ByChannel:          make(map[string]int),
		ByProperty:         make(map[string]int),
		Trends:             []domain.Trend{},
	}
	if len(reviews) == 0 {
		return stats
	}

	type bucket struct {
		count       int
		totalRating float64
	}
	months := make(map[string]*bucket)

	sum := 0.0
	for _, r := range reviews {
		sum += r.Rating

		// 0-10 canonical scale onto 1-5 star buckets; ratings 0 and 1 both
		// land in bucket 1.
		star := int(math.Round(r.Rating / 2))
		if star < 1 {
			star = 1
		} else if star > 5 {
			star = 5
		}
		stats.RatingDistribution[star]++

		stats.ByChannel[r.Source]++
		stats.ByProperty[r.ListingName]++

		month := r.SubmittedAt.UTC().Format("2006-01")
		b := months[month]
		if b == nil {
			b = &bucket{}
			months[month] = b
		}
		b.count++
		b.totalRating += r.Rating
	}

	stats.AverageRating = round1(sum / float64(len(reviews)))

	for month, b := range months {
		stats.Trends = append(stats.Trends, domain.Trend{
			Date:      month,
			Count:     b.count,
			AvgRating: round1(b.totalRating / float64(b.count)),
		})
	}
	sort.Slice(stats.Trends, func(i, j int) bool { return stats.Trends[i].Date < stats.Trends[j].Date })

	return stats
}
