package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Group admin rights required",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrGroupNotFound = &AppError{
		Code:       "GROUP_NOT_FOUND",
		Message:    "Group not found",
		StatusCode: 404,
	}

	ErrClusterNotFound = &AppError{
		Code:       "CLUSTER_NOT_FOUND",
		Message:    "Cluster not found",
		StatusCode: 404,
	}

	ErrFaceNotFound = &AppError{
		Code:       "FACE_NOT_FOUND",
		Message:    "Face not found",
		StatusCode: 404,
	}

	ErrJobNotFound = &AppError{
		Code:       "JOB_NOT_FOUND",
		Message:    "Clustering job not found",
		StatusCode: 404,
	}

	ErrSelfMerge = &AppError{
		Code:       "SELF_MERGE",
		Message:    "Source and target cluster must differ",
		StatusCode: 400,
	}

	ErrClusterGroupMismatch = &AppError{
		Code:       "CLUSTER_GROUP_MISMATCH",
		Message:    "Clusters belong to different groups",
		StatusCode: 400,
	}

	ErrNoFacesToCluster = &AppError{
		Code:       "NO_FACES_TO_CLUSTER",
		Message:    "Group has no processed faces to cluster",
		StatusCode: 400,
	}

	ErrReclusterInProgress = &AppError{
		Code:       "RECLUSTER_IN_PROGRESS",
		Message:    "A clustering run is already in progress for this group",
		StatusCode: 409,
	}

	ErrFaceAlreadyIndexed = &AppError{
		Code:       "FACE_ALREADY_INDEXED",
		Message:    "This detection has already been indexed",
		StatusCode: 409,
	}

	ErrInvalidThreshold = &AppError{
		Code:       "INVALID_THRESHOLD",
		Message:    "Threshold must be between 0 and 100",
		StatusCode: 422,
	}

	ErrOracleUnavailable = &AppError{
		Code:       "ORACLE_UNAVAILABLE",
		Message:    "Face recognition service unavailable",
		StatusCode: 502,
	}

	ErrDatabaseUnavailable = &AppError{
		Code:       "DATABASE_UNAVAILABLE",
		Message:    "Persistence layer unavailable",
		StatusCode: 503,
	}
)
