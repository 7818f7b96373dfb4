package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"bizreport/pkg/contracts"
)

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", discard)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "uptime")
}

func TestHealthService_Version(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"explicit", "1.2.3", "1.2.3"},
		{"defaults to build version", "", contracts.Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewHealthService(tt.version, nil).Version()
			assert.Equal(t, tt.want, info["version"])
			assert.Equal(t, contracts.DataFormatVersion, info["data_format_version"])
			assert.Equal(t, contracts.APIVersion, info["api_version"])
		})
	}
}
