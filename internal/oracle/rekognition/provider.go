package rekognition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/facelens-app/facelens/internal/oracle"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
	// maxSearchCandidates is the Rekognition SearchFaces upper bound
	maxSearchCandidates = 4096
)

// ErrInvalidImage indicates the image bytes cannot be processed
var ErrInvalidImage = errors.New("invalid image data")

// Oracle implements oracle.FaceOracle using AWS Rekognition. The
// passed collection ids are group ids; the configured prefix is
// applied before calling AWS.
type Oracle struct {
	client *Client
}

var _ oracle.FaceOracle = (*Oracle)(nil)

// New creates a Rekognition-backed face oracle
func New(ctx context.Context, cfg Config) (*Oracle, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Oracle{client: client}, nil
}

func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// SearchSimilarFaces queries SearchFaces with the stored face id as
// the probe. Rekognition already filters by FaceMatchThreshold and
// caps the result at maxCandidates.
func (o *Oracle) SearchSimilarFaces(ctx context.Context, collectionID, faceID string, maxCandidates int, thresholdPercent float64) ([]oracle.Match, error) {
	if maxCandidates < 1 || maxCandidates > maxSearchCandidates {
		return nil, fmt.Errorf("maxCandidates must be between 1 and %d, got %d", maxSearchCandidates, maxCandidates)
	}

	input := &rekognition.SearchFacesInput{
		CollectionId:       aws.String(o.client.config.CollectionName(collectionID)),
		FaceId:             aws.String(faceID),
		MaxFaces:           aws.Int32(int32(maxCandidates)), // #nosec G115 - validated above
		FaceMatchThreshold: aws.Float32(float32(thresholdPercent)),
	}

	output, err := o.client.rekognition.SearchFaces(ctx, input)
	if err != nil {
		return nil, translateError(collectionID, faceID, err)
	}

	matches := make([]oracle.Match, 0, len(output.FaceMatches))
	for _, m := range output.FaceMatches {
		if m.Face == nil || m.Face.FaceId == nil || m.Similarity == nil {
			continue
		}
		matches = append(matches, oracle.Match{
			FaceID:     *m.Face.FaceId,
			Similarity: float64(*m.Similarity),
		})
	}

	return matches, nil
}

// IndexFace indexes the first face found in the image and returns the
// Rekognition-generated face id.
func (o *Oracle) IndexFace(ctx context.Context, collectionID string, image []byte, externalImageID string) (string, error) {
	if err := validateImage(image); err != nil {
		return "", err
	}

	input := &rekognition.IndexFacesInput{
		CollectionId:  aws.String(o.client.config.CollectionName(collectionID)),
		Image:         &types.Image{Bytes: image},
		MaxFaces:      aws.Int32(1),
		QualityFilter: types.QualityFilterAuto,
		DetectionAttributes: []types.Attribute{
			types.AttributeDefault,
		},
	}
	if externalImageID != "" {
		input.ExternalImageId = aws.String(externalImageID)
	}

	output, err := o.client.rekognition.IndexFaces(ctx, input)
	if err != nil {
		return "", translateError(collectionID, "", err)
	}

	if len(output.FaceRecords) == 0 {
		if len(output.UnindexedFaces) > 0 {
			reasons := output.UnindexedFaces[0].Reasons
			if len(reasons) > 0 {
				return "", fmt.Errorf("%w: %s", ErrInvalidImage, reasons[0])
			}
		}
		return "", fmt.Errorf("%w: no face found in image", ErrInvalidImage)
	}

	return *output.FaceRecords[0].Face.FaceId, nil
}

// DeleteFaces removes faces from the group's collection
func (o *Oracle) DeleteFaces(ctx context.Context, collectionID string, faceIDs []string) error {
	if len(faceIDs) == 0 {
		return nil
	}

	input := &rekognition.DeleteFacesInput{
		CollectionId: aws.String(o.client.config.CollectionName(collectionID)),
		FaceIds:      faceIDs,
	}

	if _, err := o.client.rekognition.DeleteFaces(ctx, input); err != nil {
		return translateError(collectionID, "", err)
	}
	return nil
}

// EnsureCollection creates the group's collection if it does not exist
func (o *Oracle) EnsureCollection(ctx context.Context, collectionID string) error {
	return o.client.EnsureCollection(ctx, collectionID)
}

// DeleteCollection removes the group's collection and all indexed faces
func (o *Oracle) DeleteCollection(ctx context.Context, collectionID string) error {
	return o.client.DeleteCollection(ctx, collectionID)
}

// translateError maps smithy API errors onto the oracle error set so
// the engine can distinguish a missing face (skippable) from a missing
// collection or outage (fatal).
func translateError(collectionID, faceID string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeResourceNotFound:
			// Rekognition reports both a missing collection and a
			// missing face id as ResourceNotFound; the message tells
			// them apart.
			if faceID != "" && strings.Contains(apiErr.ErrorMessage(), faceID) {
				return fmt.Errorf("face %s: %w", faceID, oracle.ErrFaceNotFound)
			}
			return fmt.Errorf("collection %s: %w", collectionID, oracle.ErrCollectionNotFound)
		case errCodeAccessDenied:
			return fmt.Errorf("collection %s: %w", collectionID, ErrInvalidCredentials)
		case errCodeThrottling:
			return fmt.Errorf("collection %s: throttled: %w", collectionID, err)
		}
	}
	return fmt.Errorf("collection %s: %w", collectionID, err)
}
