package errors

import "errors"

var (
	ErrUnknownKey       = errors.New("unknown variable key")
	ErrWrongType        = errors.New("value has wrong type for key")
	ErrManifestNotFound = errors.New("no deployvars.yaml manifest found")
	ErrUnknownEnv       = errors.New("environment not defined in manifest")
	ErrBucketRequired   = errors.New("snapshot bucket is not configured")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrValidationFailed = errors.New("variable file failed validation")
	ErrNotCanonical     = errors.New("variable file is not in canonical form")
)
