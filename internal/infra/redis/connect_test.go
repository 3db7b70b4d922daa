package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/config"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	l := logger.InitializeTestZapLogger()

	cli, err := Connect(context.Background(), config.RedisConfig{Addr: mr.Addr(), PoolSize: 2}, l)
	require.NoError(t, err)
	Disconnect(context.Background(), cli, l)
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), config.RedisConfig{Addr: addr, MaxRetries: -1}, logger.InitializeTestZapLogger())
	assert.Error(t, err)
}

func TestConnect_EmptyAddr(t *testing.T) {
	_, err := Connect(context.Background(), config.RedisConfig{}, logger.InitializeTestZapLogger())
	assert.Error(t, err)
}
