package ingest

import (
	"os"

	"github.com/corelens/rca-engine/internal/apierrors"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

// OpenBoundedFile opens path for reading after checking it exists, is
// a regular file, and does not exceed rcaconst.MaxFileSize. Every
// file-based adapter factory should route through this rather than
// opening the file directly, so the size ceiling is enforced
// uniformly regardless of format.
func OpenBoundedFile(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apierrors.New(apierrors.KindPathValidation, "ingest: %v", err)
	}
	if info.IsDir() {
		return nil, apierrors.New(apierrors.KindPathValidation, "ingest: %q is a directory", path)
	}
	if info.Size() > rcaconst.MaxFileSize {
		return nil, apierrors.New(apierrors.KindFileTooLarge, "ingest: %q is %d bytes, exceeds max of %d", path, info.Size(), rcaconst.MaxFileSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.New(apierrors.KindPathValidation, "ingest: %v", err)
	}
	return f, nil
}

// StringConfig reads a required string value out of a factory config
// map, returning a validation error naming the missing key.
func StringConfig(config map[string]interface{}, key string) (string, error) {
	v, ok := config[key]
	if !ok {
		return "", apierrors.New(apierrors.KindValidation, "ingest: missing required config key %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", apierrors.New(apierrors.KindValidation, "ingest: config key %q must be a string, got %T", key, v)
	}
	return s, nil
}

// OptionalStringConfig reads an optional string value, falling back
// to def when the key is absent.
func OptionalStringConfig(config map[string]interface{}, key, def string) string {
	v, ok := config[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}
