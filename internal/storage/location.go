package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Location schemes
const (
	SchemeFile  = "file"
	SchemeS3    = "s3"
	SchemeMinio = "minio"
)

// Location identifies an input or output: a local path, or an object in a
// bucket.
type Location struct {
	Scheme string
	// Path is set for file locations
	Path string
	// Bucket and Key are set for object locations
	Bucket string
	Key    string
}

// ParseLocation accepts a plain filesystem path, file://path,
// s3://bucket/key or minio://bucket/key.
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	scheme, rest, found := strings.Cut(s, "://")
	if !found {
		return Location{Scheme: SchemeFile, Path: filepath.Clean(s)}, nil
	}

	switch strings.ToLower(scheme) {
	case SchemeFile:
		if rest == "" {
			return Location{}, fmt.Errorf("location %q has no path", s)
		}
		return Location{Scheme: SchemeFile, Path: filepath.Clean(rest)}, nil
	case SchemeS3, SchemeMinio:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("location %q must name a bucket and an object key", s)
		}
		return Location{Scheme: strings.ToLower(scheme), Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("unsupported location scheme %q", scheme)
	}
}

// IsObject reports whether the location lives in an object store
func (l Location) IsObject() bool {
	return l.Scheme == SchemeS3 || l.Scheme == SchemeMinio
}

// Name returns the path or object key, which carries the file extension
func (l Location) Name() string {
	if l.IsObject() {
		return l.Key
	}
	return l.Path
}

// String renders the location in its parseable form
func (l Location) String() string {
	if l.IsObject() {
		return l.Scheme + "://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}
