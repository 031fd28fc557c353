package rekognition

import "fmt"

// Config holds configuration for the AWS Rekognition oracle
type Config struct {
	// Region is the AWS region where Rekognition will be used (e.g., "us-east-1")
	Region string

	// CollectionPrefix is the prefix used to generate collection names
	// Collections will be named as: {CollectionPrefix}{group_id}
	CollectionPrefix string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:           "us-east-1",
		CollectionPrefix: "facelens-",
	}
}

// CollectionName generates the Rekognition collection id for a group.
// Example: "facelens-group-123"
func (c Config) CollectionName(groupID string) string {
	return fmt.Sprintf("%s%s", c.CollectionPrefix, groupID)
}
