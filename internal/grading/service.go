package grading

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/RachanaRJadav/arecanut-ai/internal/cache"
	"github.com/RachanaRJadav/arecanut-ai/internal/db"
	"github.com/RachanaRJadav/arecanut-ai/internal/logger"
	"github.com/RachanaRJadav/arecanut-ai/internal/model"
	"github.com/RachanaRJadav/arecanut-ai/internal/storage"
	apperrors "github.com/RachanaRJadav/arecanut-ai/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultHistoryLimit = 50

type ImageUpload struct {
	FileName string
	Data     []byte
}

type SubmitBatchInput struct {
	UserID   string
	Location string
	Notes    string
	Images   []ImageUpload
}

type SubmitBatchOutput struct {
	BatchID string
	Results []model.GradingResult
	Summary model.BatchSummary
}

// Service implements the grading pipeline: batch submission, on-demand
// analytics, and history reads. Images within one batch are processed
// strictly sequentially; concurrent submissions never conflict because
// each call owns distinct batch and result identities.
type Service struct {
	repo    db.Repository
	store   storage.ImageStore
	cache   cache.AnalyticsCache
	grader  *Grader
	history int
	log     zerolog.Logger
}

// NewService wires the pipeline. store and analyticsCache may be nil;
// a nil store skips image persistence and a nil cache means every
// analytics call recomputes.
func NewService(repo db.Repository, store storage.ImageStore, analyticsCache cache.AnalyticsCache, grader *Grader, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Service{
		repo:    repo,
		store:   store,
		cache:   analyticsCache,
		grader:  grader,
		history: historyLimit,
		log:     logger.Get(),
	}
}

// SubmitBatch grades every image in input order, persists one result
// per image plus a batch record, and returns the persisted results with
// a summary. A persistence failure mid-loop surfaces as a generic
// internal error; the batch record is marked failed on a best-effort
// basis but already-written results are not rolled back.
func (s *Service) SubmitBatch(ctx context.Context, in SubmitBatchInput) (*SubmitBatchOutput, error) {
	if in.UserID == "" {
		return nil, apperrors.NewValidationError("user_id", "user id is required")
	}
	if len(in.Images) == 0 {
		return nil, apperrors.NewValidationError("files", "at least one image is required")
	}

	batchID := mintBatchID()
	log := s.log.With().Str("batch_id", batchID).Str("user_id", in.UserID).Logger()

	now := time.Now()
	batch := &model.Batch{
		UserID:      in.UserID,
		BatchID:     batchID,
		TotalImages: len(in.Images),
		Status:      model.BatchStatusProcessing,
		Results:     []primitive.ObjectID{},
		Location:    in.Location,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	batchDocID, err := s.repo.InsertBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	results := make([]model.GradingResult, 0, len(in.Images))
	resultIDs := make([]primitive.ObjectID, 0, len(in.Images))
	var totalQuality, totalPrice float64

	for i, img := range in.Images {
		est := s.grader.Grade()

		imageURL := s.storeImage(ctx, img, i, log)

		createdAt := time.Now()
		result := model.GradingResult{
			UserID:          in.UserID,
			BatchID:         batchID,
			Grade:           est.Grade,
			Confidence:      round2(est.Confidence),
			QualityScore:    round2(est.QualityScore),
			MarketPrice:     round0(est.MarketPrice),
			MoistureContent: round2(est.MoistureContent),
			Size:            est.Size,
			Color:           est.Color,
			Defects:         est.Defects,
			Recommendations: est.Recommendations,
			ImageURL:        imageURL,
			FileName:        img.FileName,
			Location:        orUnknown(in.Location),
			Notes:           in.Notes,
			CreatedAt:       createdAt,
			UpdatedAt:       createdAt,
		}

		id, err := s.repo.InsertGradingResult(ctx, &result)
		if err != nil {
			log.Error().Err(err).Int("image_index", i).Msg("Failed to persist grading result")
			if failErr := s.repo.FailBatch(ctx, batchDocID); failErr != nil {
				log.Error().Err(failErr).Msg("Failed to mark batch as failed")
			}
			return nil, fmt.Errorf("insert grading result: %w", err)
		}

		result.ID = id
		results = append(results, result)
		resultIDs = append(resultIDs, id)
		totalQuality += result.QualityScore
		totalPrice += result.MarketPrice
	}

	count := float64(len(in.Images))
	avgQuality := round2(totalQuality / count)
	avgPrice := round0(totalPrice / count)

	completion := model.BatchCompletion{
		ProcessedImages:     len(in.Images),
		Results:             resultIDs,
		AverageQualityScore: avgQuality,
		AveragePrice:        avgPrice,
		CompletedAt:         time.Now(),
	}
	if err := s.repo.CompleteBatch(ctx, batchDocID, completion); err != nil {
		return nil, fmt.Errorf("complete batch: %w", err)
	}

	s.invalidateAnalytics(ctx, in.UserID)

	log.Info().
		Int("total_images", len(in.Images)).
		Float64("avg_quality", avgQuality).
		Float64("avg_price", avgPrice).
		Msg("Batch graded")

	return &SubmitBatchOutput{
		BatchID: batchID,
		Results: results,
		Summary: model.BatchSummary{
			TotalImages:         len(in.Images),
			AverageQualityScore: avgQuality,
			AveragePrice:        avgPrice,
		},
	}, nil
}

// Analytics computes aggregate statistics over all of an owner's
// grading results. Zero stored results yields the zero summary, never
// an error.
func (s *Service) Analytics(ctx context.Context, userID string) (*model.AnalyticsSummary, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id", "user id is required")
	}

	if s.cache != nil {
		if summary, err := s.cache.GetAnalytics(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Analytics cache read failed")
		} else if summary != nil {
			return summary, nil
		}
	}

	results, err := s.repo.ResultsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}

	summary := computeAnalytics(results)

	if s.cache != nil {
		if err := s.cache.SetAnalytics(ctx, userID, summary); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Analytics cache write failed")
		}
	}

	return summary, nil
}

// History returns up to limit results, newest first. limit <= 0 falls
// back to the configured default.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.GradingResult, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id", "user id is required")
	}
	if limit <= 0 {
		limit = s.history
	}

	results, err := s.repo.RecentResults(ctx, userID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if results == nil {
		results = []model.GradingResult{}
	}
	return results, nil
}

// FullHistory returns every result for an owner, newest first. Used by
// the export endpoint.
func (s *Service) FullHistory(ctx context.Context, userID string) ([]model.GradingResult, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id", "user id is required")
	}

	results, err := s.repo.RecentResults(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return results, nil
}

func (s *Service) storeImage(ctx context.Context, img ImageUpload, index int, log zerolog.Logger) string {
	key := fmt.Sprintf("images/arecanut-%d-%d.jpg", time.Now().UnixMilli(), index)

	// Losing the raw image never fails a batch.
	if s.store != nil && len(img.Data) > 0 {
		if err := s.store.Upload(ctx, key, bytes.NewReader(img.Data)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Image upload failed, continuing")
		}
	}

	return "/" + key
}

func (s *Service) invalidateAnalytics(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAnalytics(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Analytics cache invalidation failed")
	}
}

func computeAnalytics(results []model.GradingResult) *model.AnalyticsSummary {
	summary := &model.AnalyticsSummary{MonthlyTrends: []model.MonthlyTrend{}}

	if len(results) == 0 {
		return summary
	}

	total := len(results)
	summary.TotalSamples = total

	var totalQuality, totalPrice float64
	for _, r := range results {
		switch r.Grade {
		case model.GradePremium:
			summary.GradeDistribution.Premium++
		case model.GradeA:
			summary.GradeDistribution.GradeA++
		case model.GradeB:
			summary.GradeDistribution.GradeB++
		case model.GradeC:
			summary.GradeDistribution.GradeC++
		}
		totalQuality += r.QualityScore
		totalPrice += r.MarketPrice
	}

	summary.PremiumPercentage = float64(summary.GradeDistribution.Premium) / float64(total) * 100
	summary.AverageQualityScore = totalQuality / float64(total)
	summary.AveragePrice = totalPrice / float64(total)
	summary.MonthlyTrends = monthlyTrends(results)

	return summary
}

// monthlyTrends buckets results by calendar month of creation, oldest
// bucket first.
func monthlyTrends(results []model.GradingResult) []model.MonthlyTrend {
	type bucket struct {
		samples int
		premium int
		price   float64
	}

	buckets := make(map[time.Time]*bucket)
	for _, r := range results {
		month := time.Date(r.CreatedAt.Year(), r.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		b := buckets[month]
		if b == nil {
			b = &bucket{}
			buckets[month] = b
		}
		b.samples++
		b.price += r.MarketPrice
		if r.Grade == model.GradePremium {
			b.premium++
		}
	}

	months := make([]time.Time, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	trends := make([]model.MonthlyTrend, 0, len(months))
	for _, month := range months {
		b := buckets[month]
		trends = append(trends, model.MonthlyTrend{
			Month:          month.Format("Jan 2006"),
			Samples:        b.samples,
			AvgPrice:       round0(b.price / float64(b.samples)),
			PremiumPercent: round2(float64(b.premium) / float64(b.samples) * 100),
		})
	}
	return trends
}

// mintBatchID derives a unique, time-ordered batch identifier.
func mintBatchID() string {
	return fmt.Sprintf("BATCH-%s-%s", time.Now().UTC().Format("20060102150405"), uuid.NewString()[:8])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round0(v float64) float64 {
	return math.Round(v)
}

func orUnknown(location string) string {
	if location == "" {
		return "Unknown"
	}
	return location
}
