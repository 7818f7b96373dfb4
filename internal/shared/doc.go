// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides sales-export fixtures and a capturing
// slog handler for tests. It depends on the domain contracts only.
package shared
