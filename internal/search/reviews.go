package search

import (
	"strings"

	"staybook/server/internal/models"
)

// Reviews pages a listing's reviews. Every explicit sort is descending:
// most helpful, newest or best rated first.
func (m *Matcher) Reviews(reviews []models.Review, f models.ReviewFilters) models.Page[models.Review] {
	q := strings.ToLower(strings.TrimSpace(f.TextQuery))

	matched := filterItems(m, reviews, func(r *models.Review) bool {
		if q != "" && !containsFold(q, r.AuthorName, r.Body) {
			return false
		}
		if f.PropertyID != "" && r.PropertyID != f.PropertyID {
			return false
		}
		if f.MinRating != nil && r.Rating < *f.MinRating {
			return false
		}
		return true
	})
	sortItems(matched, reviewLess(f.SortBy), true)

	return paginate(matched, f.Page, m.PageSize(f.PageSize))
}

func reviewLess(key models.ReviewSort) func(a, b *models.Review) bool {
	switch key {
	case models.ReviewSortHelpful:
		return func(a, b *models.Review) bool { return a.HelpfulCount < b.HelpfulCount }
	case models.ReviewSortRecent:
		return func(a, b *models.Review) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.ReviewSortRating:
		return func(a, b *models.Review) bool { return a.Rating < b.Rating }
	default:
		return nil
	}
}
