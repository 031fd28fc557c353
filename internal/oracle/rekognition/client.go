package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"

	"github.com/facelens-app/facelens/internal/oracle"
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeResourceNotFound = "ResourceNotFoundException"
	errCodeResourceExists   = "ResourceAlreadyExistsException"
	errCodeInvalidParameter = "InvalidParameterException"
	errCodeThrottling       = "ThrottlingException"
)

// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
var ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

// Client wraps the AWS Rekognition client and provides collection management
type Client struct {
	rekognition *rekognition.Client
	config      Config
}

// NewClient creates a new Rekognition client with the provided configuration
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		rekognition: rekognition.NewFromConfig(awsCfg),
		config:      cfg,
	}, nil
}

// CreateCollection creates a Rekognition collection for the given group.
// Creating an already existing collection is not an error.
func (c *Client) CreateCollection(ctx context.Context, groupID string) error {
	collectionID := c.config.CollectionName(groupID)

	input := &rekognition.CreateCollectionInput{
		CollectionId: aws.String(collectionID),
	}

	_, err := c.rekognition.CreateCollection(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeResourceExists:
				return nil
			case errCodeInvalidParameter:
				return fmt.Errorf("group %s: invalid collection parameters: %w", groupID, err)
			case errCodeAccessDenied:
				return fmt.Errorf("group %s: %w", groupID, ErrInvalidCredentials)
			}
		}
		return fmt.Errorf("failed to create collection for group %s: %w", groupID, err)
	}

	return nil
}

// DeleteCollection deletes a group's Rekognition collection.
// Returns oracle.ErrCollectionNotFound if the collection does not exist.
func (c *Client) DeleteCollection(ctx context.Context, groupID string) error {
	collectionID := c.config.CollectionName(groupID)

	input := &rekognition.DeleteCollectionInput{
		CollectionId: aws.String(collectionID),
	}

	_, err := c.rekognition.DeleteCollection(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeResourceNotFound:
				return fmt.Errorf("group %s: %w", groupID, oracle.ErrCollectionNotFound)
			case errCodeAccessDenied:
				return fmt.Errorf("group %s: %w", groupID, ErrInvalidCredentials)
			}
		}
		return fmt.Errorf("failed to delete collection for group %s: %w", groupID, err)
	}

	return nil
}

// CollectionExists checks if a collection exists for the given group
func (c *Client) CollectionExists(ctx context.Context, groupID string) (bool, error) {
	collectionID := c.config.CollectionName(groupID)

	input := &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(collectionID),
	}

	_, err := c.rekognition.DescribeCollection(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeResourceNotFound:
				return false, nil
			case errCodeAccessDenied:
				return false, fmt.Errorf("group %s: %w", groupID, ErrInvalidCredentials)
			}
		}
		return false, fmt.Errorf("failed to check collection for group %s: %w", groupID, err)
	}

	return true, nil
}

// GetCollectionFaceCount returns the number of faces indexed in a group's collection
func (c *Client) GetCollectionFaceCount(ctx context.Context, groupID string) (int64, error) {
	collectionID := c.config.CollectionName(groupID)

	input := &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(collectionID),
	}

	output, err := c.rekognition.DescribeCollection(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeResourceNotFound:
				return 0, fmt.Errorf("group %s: %w", groupID, oracle.ErrCollectionNotFound)
			case errCodeAccessDenied:
				return 0, fmt.Errorf("group %s: %w", groupID, ErrInvalidCredentials)
			}
		}
		return 0, fmt.Errorf("failed to describe collection for group %s: %w", groupID, err)
	}

	return *output.FaceCount, nil
}

// EnsureCollection creates a collection if it doesn't exist
func (c *Client) EnsureCollection(ctx context.Context, groupID string) error {
	exists, err := c.CollectionExists(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if exists {
		return nil
	}

	return c.CreateCollection(ctx, groupID)
}
