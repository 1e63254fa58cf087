package pkg

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/SAP-F-2025/scholarship-service/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()
}

func TestNewRedisClientInvalidURL(t *testing.T) {
	if _, err := NewRedisClient(&config.Config{RedisURL: "not-a-url"}); err == nil {
		t.Error("expected error for invalid url")
	}
}
