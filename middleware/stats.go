package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/competitor-audit/logging"
)

// Context keys the comparison handler sets for Stats to pick up
const (
	KeywordKey       = "audit.keyword"
	CompetitorURLKey = "audit.competitorUrl"
)

// saveEvery is how many tracked comparisons pass between statistics saves
const saveEvery = 100

// Stats records visitors for every request and latency for the routes given
func Stats(stats *logging.Statistics, trackedPaths ...string) gin.HandlerFunc {
	tracked := make(map[string]bool, len(trackedPaths))
	for _, p := range trackedPaths {
		tracked[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if !tracked[c.FullPath()] {
			return
		}

		loadTime := float64(time.Since(start).Milliseconds())
		total := stats.TrackComparison(c.GetString(KeywordKey), c.GetString(CompetitorURLKey), loadTime, c.Writer.Status() >= 400)

		if total%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					log.Printf("Failed to save request statistics: %v", err)
				}
			}()
		}
	}
}
