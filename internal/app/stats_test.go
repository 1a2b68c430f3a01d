package app_test

import (
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func review(rating float64, source, listing string, submitted time.Time) domain.NormalizedReview {
	return domain.NormalizedReview{
		ID:          "x",
		ListingName: listing,
		Rating:      rating,
		Source:      source,
		SubmittedAt: submitted,
	}
}

func TestCalculateStats_Empty(t *testing.T) {
	stats := app.CalculateStats(nil)
	if stats.TotalReviews != 0 || stats.AverageRating != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	// maps and trends must be present (serialize as {} / []), just empty
	if stats.RatingDistribution == nil || len(stats.RatingDistribution) != 0 {
		t.Errorf("ratingDistribution: %v", stats.RatingDistribution)
	}
	if stats.ByChannel == nil || len(stats.ByChannel) != 0 {
		t.Errorf("byChannel: %v", stats.ByChannel)
	}
	if stats.ByProperty == nil || len(stats.ByProperty) != 0 {
		t.Errorf("byProperty: %v", stats.ByProperty)
	}
	if stats.Trends == nil || len(stats.Trends) != 0 {
		t.Errorf("trends: %v", stats.Trends)
	}
}

func TestCalculateStats_AverageAndDistribution(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	stats := app.CalculateStats([]domain.NormalizedReview{
		review(8.0, domain.SourceHostaway, "A", jan),
		review(10.0, domain.SourceHostaway, "A", jan),
	})
	if stats.AverageRating != 9.0 {
		t.Errorf("averageRating: %v, want 9.0", stats.AverageRating)
	}
	if stats.RatingDistribution[4] != 1 || stats.RatingDistribution[5] != 1 || len(stats.RatingDistribution) != 2 {
		t.Errorf("ratingDistribution: %v, want {4:1 5:1}", stats.RatingDistribution)
	}
}

func TestCalculateStats_LowRatingsClampIntoBucketOne(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	stats := app.CalculateStats([]domain.NormalizedReview{
		review(0, domain.SourceHostaway, "A", jan),
		review(1, domain.SourceHostaway, "A", jan),
	})
	// round(0/2)=0 clamps up to 1; round(1/2)=1 lands there directly
	if stats.RatingDistribution[1] != 2 || len(stats.RatingDistribution) != 1 {
		t.Errorf("ratingDistribution: %v, want {1:2}", stats.RatingDistribution)
	}
}

func TestCalculateStats_GroupCounts(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	stats := app.CalculateStats([]domain.NormalizedReview{
		review(8, domain.SourceHostaway, "Shoreditch Heights", jan),
		review(9, domain.SourceHostaway, "Camden Lofts", jan),
		review(10, domain.SourceGoogle, "Camden Lofts", jan),
	})
	if stats.ByChannel[domain.SourceHostaway] != 2 || stats.ByChannel[domain.SourceGoogle] != 1 {
		t.Errorf("byChannel: %v", stats.ByChannel)
	}
	if stats.ByProperty["Camden Lofts"] != 2 || stats.ByProperty["Shoreditch Heights"] != 1 {
		t.Errorf("byProperty: %v", stats.ByProperty)
	}
}

func TestCalculateStats_MonthlyTrends(t *testing.T) {
	stats := app.CalculateStats([]domain.NormalizedReview{
		review(8, domain.SourceHostaway, "A", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		review(9, domain.SourceHostaway, "A", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
		review(10, domain.SourceHostaway, "A", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	})
	if len(stats.Trends) != 2 {
		t.Fatalf("trends: %+v", stats.Trends)
	}
	first, second := stats.Trends[0], stats.Trends[1]
	if first.Date != "2024-01" || first.Count != 2 || first.AvgRating != 8.5 {
		t.Errorf("first trend: %+v", first)
	}
	if second.Date != "2024-02" || second.Count != 1 || second.AvgRating != 10 {
		t.Errorf("second trend: %+v", second)
	}
}
