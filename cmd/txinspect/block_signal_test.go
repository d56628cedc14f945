//go:build !zmq

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartBlockSignal(t *testing.T) {
	signal, err := startBlockSignal(context.Background(), "", zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, signal)

	_, err = startBlockSignal(context.Background(), "tcp://127.0.0.1:28332", zap.NewNop())
	require.ErrorIs(t, err, errNoZMQ)
}
