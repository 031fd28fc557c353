package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cluster groups the faces believed to depict the same person within a
// group. AppearanceCount mirrors the number of member rows and must be
// kept in sync by every mutation path (see ClusterRepository).
type Cluster struct {
	ID                   uuid.UUID  `json:"id"`
	GroupID              uuid.UUID  `json:"-"`
	Name                 *string    `json:"name,omitempty"`
	AppearanceCount      int        `json:"appearance_count"`
	Confidence           float64    `json:"confidence"`
	RepresentativeFaceID *uuid.UUID `json:"representative_face_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ClusterMember links one face to exactly one cluster. A face belongs
// to at most one cluster at a time, enforced by a unique constraint on
// face_id.
type ClusterMember struct {
	ID         uuid.UUID `json:"id"`
	ClusterID  uuid.UUID `json:"cluster_id"`
	FaceID     uuid.UUID `json:"face_id"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}
