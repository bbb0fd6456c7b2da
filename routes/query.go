package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/internal/telemetry"
	"rag-docqa-platform/middleware"
	"rag-docqa-platform/models"
	"rag-docqa-platform/services"
	"rag-docqa-platform/utils"

	"github.com/gin-gonic/gin"
)

// QueryRunner is the slice of the query service the handler needs;
// tests substitute a stub.
type QueryRunner interface {
	Answer(ctx context.Context, ownerID, question string) (models.Answer, error)
}

func SetupQueryRoutes(router *gin.Engine, runner QueryRunner, metrics *telemetry.Metrics, authMiddleware *middleware.AuthMiddleware) {
	group := router.Group("/query")
	group.Use(authMiddleware.RequireAuth())

	group.POST("", func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ownerID := middleware.GetOwnerID(c)
		start := time.Now()

		answer, err := runner.Answer(c.Request.Context(), ownerID, req.Query)
		if err != nil {
			respondQueryError(c, metrics, err)
			return
		}

		if metrics != nil {
			metrics.QueriesAnswered.Add(c.Request.Context(), 1)
			metrics.QueryDuration.Record(c.Request.Context(), time.Since(start).Seconds())
			if answer.NoEvidence {
				metrics.NoEvidenceQueries.Add(c.Request.Context(), 1)
			}
		}

		c.JSON(http.StatusOK, answer)
	})
}

func respondQueryError(c *gin.Context, metrics *telemetry.Metrics, err error) {
	logger.Error("Query failed", "request_id", middleware.GetRequestID(c), "error", err)
	switch {
	case errors.Is(err, ai.ErrInvalidInput):
		utils.RespondWithBadRequest(c, "Query must not be empty", nil)
	case errors.Is(err, ai.ErrRateLimited):
		if metrics != nil {
			metrics.RecordProviderError(c.Request.Context(), "query")
		}
		utils.RespondWithRateLimited(c)
	case errors.Is(err, ai.ErrQuotaExhausted):
		if metrics != nil {
			metrics.RecordProviderError(c.Request.Context(), "query")
		}
		utils.RespondWithQuotaExhausted(c)
	case errors.Is(err, services.ErrStorage):
		utils.RespondWithInternalError(c, "Failed to search documents", nil)
	default:
		if metrics != nil {
			metrics.RecordProviderError(c.Request.Context(), "query")
		}
		utils.RespondWithInternalError(c, "Failed to answer query", gin.H{"error": err.Error()})
	}
}
