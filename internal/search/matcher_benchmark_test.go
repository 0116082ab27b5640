package search

import (
	"fmt"
	"testing"

	"staybook/server/internal/models"
)

func BenchmarkListings(b *testing.B) {
	catalogSizes := []int{1000, 10000, 50000}
	workerCounts := []int{1, 4, 8}

	for _, size := range catalogSizes {
		catalog := generateTestProperties(size)
		for _, workers := range workerCounts {
			b.Run(fmt.Sprintf("Catalog_%d_Workers_%d", size, workers), func(b *testing.B) {
				m := NewMatcher(WithParallelFilter(workers, 5000))
				f := models.SearchFilters{
					TextQuery:  "listing",
					Amenities:  []string{"wifi"},
					MinRating:  ptrFloat(3.5),
					SortBy:     models.ListingSortPrice,
					Descending: true,
					Page:       3,
				}

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					result := m.Listings(catalog, f)
					if result.TotalCount == 0 {
						b.Fatal("expected matches")
					}
				}
				b.ReportMetric(float64(size)/(float64(b.Elapsed().Seconds())/float64(b.N)), "listings/sec")
			})
		}
	}
}
