package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/config"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/internal/queue"
	"rag-docqa-platform/internal/telemetry"
	"rag-docqa-platform/middleware"
	"rag-docqa-platform/models"
	"rag-docqa-platform/services"
	"rag-docqa-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// DocumentIngestor is the slice of the ingestion service the handlers
// need; tests substitute a stub.
type DocumentIngestor interface {
	Ingest(ctx context.Context, doc models.Document, content string) (int, error)
	Delete(ctx context.Context, ownerID, documentID string) error
}

type ProcessRequest struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content" binding:"required"`
	Title      string `json:"title"`
}

type IngestURLRequest struct {
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
}

func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, documents services.DocumentStore, ingester DocumentIngestor, queueClient *asynq.Client, metrics *telemetry.Metrics, authMiddleware *middleware.AuthMiddleware) {
	group := router.Group("/documents")
	group.Use(authMiddleware.RequireAuth())

	// Synchronous ingestion of raw text content.
	group.POST("/process", func(c *gin.Context) {
		var req ProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ownerID := middleware.GetOwnerID(c)
		doc, err := createDocument(c.Request.Context(), documents, ownerID, req.DocumentID, req.Title, models.MediaTypeText, []byte(req.Content))
		if err != nil {
			logger.Error("Document creation failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to create document", nil)
			return
		}

		runIngestion(c, cfg, ingester, metrics, doc, req.Content)
	})

	// Multipart upload; PDF and HTML are reduced to plain text first.
	group.POST("/upload", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "Missing file", nil)
			return
		}
		if fileHeader.Size > cfg.MaxDocumentSize {
			utils.RespondWithBadRequest(c, "File too large", gin.H{"max_bytes": cfg.MaxDocumentSize})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}

		mediaType := fileHeader.Header.Get("Content-Type")
		if idx := strings.Index(mediaType, ";"); idx >= 0 {
			mediaType = strings.TrimSpace(mediaType[:idx])
		}

		content, err := services.ExtractText(data, mediaType)
		if err != nil {
			if errors.Is(err, services.ErrUnsupportedType) {
				utils.RespondWithUnsupportedType(c, "Unsupported file type: "+mediaType)
				return
			}
			logger.Error("Text extraction failed", "media_type", mediaType, "error", err)
			utils.RespondWithBadRequest(c, "Could not extract text from file", nil)
			return
		}

		title := c.PostForm("title")
		if title == "" {
			title = fileHeader.Filename
		}

		ownerID := middleware.GetOwnerID(c)
		doc, err := createDocument(c.Request.Context(), documents, ownerID, "", title, mediaType, []byte(content))
		if err != nil {
			logger.Error("Document creation failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to create document", nil)
			return
		}

		runIngestion(c, cfg, ingester, metrics, doc, content)
	})

	// Fetch a single page and ingest its text.
	group.POST("/ingest-url", func(c *gin.Context) {
		var req IngestURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.ProviderTimeout)*time.Second)
		defer cancel()

		body, mediaType, err := services.FetchPage(ctx, req.URL, cfg.MaxDocumentSize)
		if err != nil {
			logger.Error("Page fetch failed", "url", req.URL, "error", err)
			utils.RespondWithBadRequest(c, "Could not fetch URL", gin.H{"error": err.Error()})
			return
		}

		content, err := services.ExtractText(body, mediaType)
		if err != nil {
			logger.Error("Text extraction failed", "url", req.URL, "error", err)
			utils.RespondWithBadRequest(c, "Could not extract text from page", nil)
			return
		}

		title := req.Title
		if title == "" {
			title = req.URL
		}

		ownerID := middleware.GetOwnerID(c)
		doc, err := createDocument(c.Request.Context(), documents, ownerID, "", title, mediaType, []byte(content))
		if err != nil {
			logger.Error("Document creation failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to create document", nil)
			return
		}

		runIngestion(c, cfg, ingester, metrics, doc, content)
	})

	// Queue ingestion on the worker instead of running it inline.
	group.POST("/:id/process-async", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)
		documentID := c.Param("id")

		if _, err := documents.Get(c.Request.Context(), ownerID, documentID); err != nil {
			if errors.Is(err, services.ErrDocumentNotFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load document", nil)
			return
		}

		task, err := queue.NewIngestTask(ownerID, documentID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build task", nil)
			return
		}
		info, err := queueClient.EnqueueContext(c.Request.Context(), task)
		if err != nil {
			logger.Error("Enqueue failed", "document_id", documentID, "error", err)
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"document_id": documentID,
			"task_id":     info.ID,
			"queue":       info.Queue,
		})
	})

	group.GET("", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)
		docs, err := documents.List(c.Request.Context(), ownerID)
		if err != nil {
			logger.Error("Document list failed", "owner_id", ownerID, "error", err)
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
	})

	group.DELETE("/:id", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)
		documentID := c.Param("id")

		if err := ingester.Delete(c.Request.Context(), ownerID, documentID); err != nil {
			if errors.Is(err, services.ErrDocumentNotFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			logger.Error("Document delete failed", "document_id", documentID, "error", err)
			utils.RespondWithInternalError(c, "Failed to delete document", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": documentID})
	})
}

// createDocument persists the document row (status received) with its
// content compressed at rest.
func createDocument(ctx context.Context, documents services.DocumentStore, ownerID, id, title, mediaType string, content []byte) (models.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	compressed, algorithm, err := utils.CompressText(string(content))
	if err != nil {
		return models.Document{}, err
	}

	doc := models.Document{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		MediaType:   mediaType,
		Content:     compressed,
		Compression: string(algorithm),
		ContentHash: utils.HashContent(content),
		ByteSize:    int64(len(content)),
		Status:      models.StatusReceived,
		CreatedAt:   time.Now(),
	}
	if err := documents.Insert(ctx, doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// runIngestion executes the pipeline inline and writes the entry-point
// response contract: {success, chunksProcessed} or a typed error.
func runIngestion(c *gin.Context, cfg *config.Config, ingester DocumentIngestor, metrics *telemetry.Metrics, doc models.Document, content string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.ProviderTimeout)*time.Second*10)
	defer cancel()

	start := time.Now()
	count, err := ingester.Ingest(ctx, doc, content)
	if err != nil {
		respondIngestError(c, metrics, doc.ID, err)
		return
	}

	if metrics != nil {
		metrics.DocumentsIngested.Add(ctx, 1)
		metrics.ChunksStored.Add(ctx, int64(count))
		metrics.IngestDuration.Record(ctx, time.Since(start).Seconds())
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"chunksProcessed": count,
		"documentId":      doc.ID,
	})
}

func respondIngestError(c *gin.Context, metrics *telemetry.Metrics, documentID string, err error) {
	logger.Error("Ingestion failed", "document_id", documentID, "error", err)
	switch {
	case errors.Is(err, ai.ErrInvalidInput):
		utils.RespondWithBadRequest(c, "Document content is empty", nil)
	case errors.Is(err, services.ErrUnsupportedType):
		utils.RespondWithUnsupportedType(c, "Unsupported document type")
	case errors.Is(err, ai.ErrRateLimited):
		if metrics != nil {
			metrics.RecordProviderError(c.Request.Context(), "embed")
		}
		utils.RespondWithRateLimited(c)
	case errors.Is(err, ai.ErrQuotaExhausted):
		if metrics != nil {
			metrics.RecordProviderError(c.Request.Context(), "embed")
		}
		utils.RespondWithQuotaExhausted(c)
	default:
		if metrics != nil {
			metrics.RecordProviderError(c.Request.Context(), "ingest")
		}
		utils.RespondWithInternalError(c, "Failed to process document", gin.H{"error": err.Error()})
	}
}
