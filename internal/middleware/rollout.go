package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/internal/service"
)

const (
	rolloutStageContextKey   = "rollout_stage"
	rolloutSegmentContextKey = "rollout_segment"
)

// RolloutStage annotates responses with migration metadata headers so the
// proxy in front of both backends can tell which one answered.
func RolloutStage(rollout *service.RolloutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rollout != nil {
			headers := rollout.HeadersForRequest(c.Request)
			applyHeader(c, headers.BackendHeader, string(headers.Stage))
			applyHeader(c, headers.SegmentHeader, headers.Segment)
			c.Set(rolloutStageContextKey, headers.Stage)
			c.Set(rolloutSegmentContextKey, headers.Segment)
		}
		c.Next()
	}
}

// RolloutMetadata extracts the stage and segment for downstream handlers.
func RolloutMetadata(c *gin.Context) (models.RolloutStage, string) {
	var stage models.RolloutStage
	if value, exists := c.Get(rolloutStageContextKey); exists {
		if typed, ok := value.(models.RolloutStage); ok {
			stage = typed
		}
	}
	var segment string
	if value, exists := c.Get(rolloutSegmentContextKey); exists {
		if typed, ok := value.(string); ok {
			segment = typed
		}
	}
	return stage, segment
}

func applyHeader(c *gin.Context, key, value string) {
	if c == nil || key == "" || value == "" {
		return
	}
	c.Writer.Header().Set(key, value)
	if c.Request != nil {
		c.Request.Header.Set(key, value)
	}
}
