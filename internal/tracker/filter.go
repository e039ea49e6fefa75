package tracker

import (
	"golang.org/x/exp/slices"

	"github.com/creatorstation/tracker/internal/models"
)

// ApplyFilter returns the influencers visible under status, keeping their
// relative order. The result never aliases records and is never nil.
func ApplyFilter(records []models.Influencer, status models.FilterStatus) []models.Influencer {
	out := append(make([]models.Influencer, 0, len(records)), records...)
	if status == models.FilterAll {
		return out
	}

	return slices.DeleteFunc(out, func(rec models.Influencer) bool {
		return rec.Status != models.Status(status)
	})
}

// TotalViews sums TotalViews over the given (already filtered) influencers.
func TotalViews(visible []models.Influencer) float64 {
	var total float64
	for _, rec := range visible {
		total += rec.TotalViews
	}
	return total
}
