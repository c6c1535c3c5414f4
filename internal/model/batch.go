package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// Batch is one grading submission. Status only ever moves forward:
// pending -> processing -> completed | failed.
type Batch struct {
	ID                  primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID              string               `json:"user_id" bson:"user_id"`
	BatchID             string               `json:"batch_id" bson:"batch_id"`
	TotalImages         int                  `json:"total_images" bson:"total_images"`
	ProcessedImages     int                  `json:"processed_images" bson:"processed_images"`
	Status              BatchStatus          `json:"status" bson:"status"`
	Results             []primitive.ObjectID `json:"results" bson:"results"`
	AverageQualityScore float64              `json:"average_quality_score" bson:"average_quality_score"`
	AveragePrice        float64              `json:"average_price" bson:"average_price"`
	Location            string               `json:"location" bson:"location"`
	Notes               string               `json:"notes" bson:"notes"`
	CreatedAt           time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at" bson:"updated_at"`
	CompletedAt         *time.Time           `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// BatchCompletion is the single forward update applied to a batch once
// every image has been graded.
type BatchCompletion struct {
	ProcessedImages     int
	Results             []primitive.ObjectID
	AverageQualityScore float64
	AveragePrice        float64
	CompletedAt         time.Time
}
