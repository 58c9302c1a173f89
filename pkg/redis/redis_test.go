package redis

import (
	"context"
	"testing"
	"time"

	"scaleplus-loyalty/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.Addr = srv.Addr()

	rdb, err := Connect(context.Background(), cfg, time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestConnectUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	cfg := &config.Config{}
	cfg.Redis.Addr = addr

	_, err := Connect(context.Background(), cfg, time.Millisecond)
	require.Error(t, err)
}
