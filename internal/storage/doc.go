// Package storage resolves pipeline inputs and outputs.
//
// A location is a filesystem path (optionally prefixed with file://) or an
// object in a MinIO or S3 bucket (minio://bucket/key, s3://bucket/key).
// Object access goes through minio-go using the credentials in
// config.StorageConfig.
//
// Writers returned by Store.Create publish their content only on a
// successful Close, so a failed run never leaves a partial output behind.
package storage
