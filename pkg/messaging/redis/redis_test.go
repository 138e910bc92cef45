package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	opts, err := Config{
		URL:          "redis://:secret@localhost:6380/2",
		MaxRetries:   4,
		RetryBackoff: 50 * time.Millisecond,
		PoolSize:     20,
		MinIdleConns: 2,
	}.Options()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 4, opts.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, opts.MinRetryBackoff)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
}

func TestNewRedisBroker_InvalidURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "not-a-url"}, zerolog.Nop(), nil)
	assert.Error(t, err)
}
