package blob

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskroom/taskroom/internal/config"
)

func TestNewStore_RequiresBucket(t *testing.T) {
	_, err := NewStore(context.Background(), config.S3Cfg{Bucket: "  "})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"minio:9000", "https://minio:9000"},
		{"http://localhost:9000", "http://localhost:9000"},
		{" https://r2.example.com ", "https://r2.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, endpointURL(tt.in), tt.in)
	}
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	sum := strings.Repeat("ab", 32)

	key := archiveKey("chat-archives/project-7/", at, sum)
	assert.Equal(t, "chat-archives/project-7/20240309T140507Z-abababababab.json", key)
}

func TestStore_PresignGet(t *testing.T) {
	s, err := NewStore(context.Background(), config.S3Cfg{
		Endpoint:     "localhost:9000",
		Region:       "us-east-1",
		AccessKey:    "ak",
		SecretKey:    "sk",
		Bucket:       "exports",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	url, err := s.PresignGet(context.Background(), "chat-archives/a.json", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://localhost:9000/exports/chat-archives/a.json?"), url)
	assert.Contains(t, url, "X-Amz-Expires=60")

	_, err = s.PresignGet(context.Background(), "", time.Minute)
	assert.Error(t, err)
}
