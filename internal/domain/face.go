package domain

import (
	"time"

	"github.com/google/uuid"
)

// Face is a single detected face inside a media item. Rows are created
// by the detection pipeline and stay immutable afterwards except for
// the processed flag and the assigned quality score.
type Face struct {
	ID           uuid.UUID   `json:"id"`
	MediaID      uuid.UUID   `json:"media_id"`
	GroupID      uuid.UUID   `json:"-"`
	OracleFaceID string      `json:"oracle_face_id"`
	BoundingBox  BoundingBox `json:"bounding_box"`
	Confidence   float64     `json:"confidence"`
	Brightness   *float64    `json:"brightness,omitempty"`
	Sharpness    *float64    `json:"sharpness,omitempty"`
	Pose         *Pose       `json:"pose,omitempty"`
	QualityScore *int        `json:"quality_score,omitempty"`
	Embedding    []float32   `json:"-"`
	Processed    bool        `json:"processed"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Pose holds face orientation angles in degrees
type Pose struct {
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// BoundingBox locates the face inside its media item (relative coordinates)
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
