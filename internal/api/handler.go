package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/RachanaRJadav/arecanut-ai/internal/config"
	"github.com/RachanaRJadav/arecanut-ai/internal/db"
	"github.com/RachanaRJadav/arecanut-ai/internal/grading"
	"github.com/RachanaRJadav/arecanut-ai/internal/logger"
	"github.com/RachanaRJadav/arecanut-ai/internal/model"
	"github.com/RachanaRJadav/arecanut-ai/internal/report"
	apperrors "github.com/RachanaRJadav/arecanut-ai/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type Handler struct {
	svc  *grading.Service
	repo db.Repository
	cfg  *config.Config
	log  zerolog.Logger
}

func NewHandler(svc *grading.Service, repo db.Repository, cfg *config.Config) *Handler {
	return &Handler{
		svc:  svc,
		repo: repo,
		cfg:  cfg,
		log:  logger.Get(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.internalError(c, err, "Failed to hash password")
		return
	}

	now := time.Now()
	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		FarmName:     req.FarmName,
		Location:     req.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := h.repo.CreateUser(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		h.internalError(c, err, "Failed to create user")
		return
	}

	h.log.Info().Str("user_id", id.Hex()).Msg("User registered")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user_id": id.Hex(),
		"message": "User registered successfully",
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.internalError(c, err, "Failed to look up user")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.Public(),
	})
}

// AnalyzeBatch accepts a multipart submission of one or more images and
// runs the grading pipeline synchronously, returning the persisted
// results and batch summary.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing files or user id"})
		return
	}

	input := grading.SubmitBatchInput{
		UserID:   c.PostForm("user_id"),
		Location: c.PostForm("location"),
		Notes:    c.PostForm("notes"),
	}

	for _, fh := range form.File["files"] {
		file, err := fh.Open()
		if err != nil {
			h.internalError(c, err, "Failed to open uploaded file")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.internalError(c, err, "Failed to read uploaded file")
			return
		}
		input.Images = append(input.Images, grading.ImageUpload{
			FileName: fh.Filename,
			Data:     data,
		})
	}

	out, err := h.svc.SubmitBatch(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err, "Batch grading failed")
		return
	}

	c.JSON(http.StatusOK, model.SubmitBatchResponse{
		Success: true,
		BatchID: out.BatchID,
		Results: out.Results,
		Summary: out.Summary,
	})
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	summary, err := h.svc.Analytics(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		h.respondError(c, err, "Analytics computation failed")
		return
	}

	c.JSON(http.StatusOK, model.AnalyticsResponse{
		Success:   true,
		Analytics: *summary,
	})
}

func (h *Handler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	results, err := h.svc.History(c.Request.Context(), c.Query("user_id"), limit)
	if err != nil {
		h.respondError(c, err, "History fetch failed")
		return
	}

	c.JSON(http.StatusOK, model.HistoryResponse{
		Success: true,
		Results: results,
	})
}

// ExportHistory streams the owner's full grading history as an xlsx
// workbook.
func (h *Handler) ExportHistory(c *gin.Context) {
	results, err := h.svc.FullHistory(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		h.respondError(c, err, "History export failed")
		return
	}

	workbook, err := report.HistoryWorkbook(results)
	if err != nil {
		h.internalError(c, err, "Failed to build workbook")
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="grading-history.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("Failed to stream workbook")
	}
}

// respondError translates pipeline errors for clients: validation
// detail is surfaced, everything else collapses to a generic internal
// failure with the cause logged.
func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	var ve apperrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}
	h.internalError(c, err, logMsg)
}

func (h *Handler) internalError(c *gin.Context, err error, logMsg string) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg(logMsg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
