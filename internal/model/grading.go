package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Grade string

const (
	GradePremium Grade = "Premium"
	GradeA       Grade = "Grade A"
	GradeB       Grade = "Grade B"
	GradeC       Grade = "Grade C"
)

// GradeEstimate is the raw output of the sample grader for a single
// image, before it is attached to an owner and persisted.
type GradeEstimate struct {
	Grade           Grade    `json:"grade"`
	Confidence      float64  `json:"confidence"`
	QualityScore    float64  `json:"quality_score"`
	MarketPrice     float64  `json:"market_price"`
	MoistureContent float64  `json:"moisture_content"`
	Size            string   `json:"size"`
	Color           string   `json:"color"`
	Defects         []string `json:"defects"`
	Recommendations []string `json:"recommendations"`
}

// GradingResult is the persisted outcome for one graded image.
// Legacy documents may carry user_id as either an ObjectID or a plain
// hex string; new writes always use the string form.
type GradingResult struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          string             `json:"user_id" bson:"user_id"`
	BatchID         string             `json:"batch_id" bson:"batch_id"`
	Grade           Grade              `json:"grade" bson:"grade"`
	Confidence      float64            `json:"confidence" bson:"confidence"`
	QualityScore    float64            `json:"quality_score" bson:"quality_score"`
	MarketPrice     float64            `json:"market_price" bson:"market_price"`
	MoistureContent float64            `json:"moisture_content" bson:"moisture_content"`
	Size            string             `json:"size" bson:"size"`
	Color           string             `json:"color" bson:"color"`
	Defects         []string           `json:"defects" bson:"defects"`
	Recommendations []string           `json:"recommendations" bson:"recommendations"`
	ImageURL        string             `json:"image_url" bson:"image_url"`
	FileName        string             `json:"file_name,omitempty" bson:"file_name,omitempty"`
	Location        string             `json:"location" bson:"location"`
	Notes           string             `json:"notes" bson:"notes"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
