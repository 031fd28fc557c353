package clustering

import (
	"math"

	"github.com/facelens-app/facelens/internal/domain"
)

// FaceAttributes are the detection attributes that feed the composite
// quality score. Confidence is always present; the rest are optional
// and contribute zero when absent.
type FaceAttributes struct {
	Confidence float64 // 0-100
	Brightness *float64
	Sharpness  *float64
	Pose       *domain.Pose
}

// QualityScore computes a composite 0-100 quality score used to rank
// faces for thumbnail and representative selection.
//
// Weighting: confidence up to 30 points, brightness up to 25,
// sharpness up to 25, pose up to 20.
func QualityScore(attrs FaceAttributes) int {
	score := attrs.Confidence / 100 * 30

	if attrs.Brightness != nil {
		b := *attrs.Brightness
		switch {
		case b >= 40 && b <= 80:
			score += 25
		case b >= 30 && b <= 90:
			score += 15
		default:
			score += 5
		}
	}

	if attrs.Sharpness != nil {
		score += *attrs.Sharpness / 100 * 25
	}

	if attrs.Pose != nil {
		deviation := (math.Abs(attrs.Pose.Roll) + math.Abs(attrs.Pose.Yaw) + math.Abs(attrs.Pose.Pitch)) / 3
		switch {
		case deviation < 10:
			score += 20
		case deviation < 20:
			score += 15
		case deviation < 30:
			score += 10
		default:
			score += 5
		}
	}

	result := int(math.Round(score))
	if result < 0 {
		return 0
	}
	if result > 100 {
		return 100
	}
	return result
}
