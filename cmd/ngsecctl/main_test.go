package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/decomp/ngsec/pkg/config"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/model"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"provision"},
		{"provision", "watch"},
		{"migrate"},
		{"cutover"},
		{"reap"},
		{"graph", "next"},
		{"settings", "apply"},
		{"configuration", "show"},
		{"db", "migrate"},
		{"db", "down"},
		{"db", "status"},
		{"history"},
		{"wait"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("metrics-file"))
}

func TestRecord(t *testing.T) {
	a := &app{
		cfg:     &config.Config{Database: "decomp", Username: "admin"},
		logger:  zaptest.NewLogger(t),
		metrics: metrics.New(),
	}
	boom := errors.New("boom")

	err := a.record(context.Background(), "reap", ":a-tosc", func(context.Context) (string, string, error) {
		return model.OutcomeSucceeded, "2 dropped", nil
	})
	require.NoError(t, err)

	err = a.record(context.Background(), "reap", ":a-tosc", func(context.Context) (string, string, error) {
		return model.OutcomeSucceeded, "", boom
	})
	require.ErrorIs(t, err, boom)

	n, err := testutil.GatherAndCount(a.metrics.Registry(), "ngsec_workflow_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "x", arg([]string{"x"}, 0))
	assert.Equal(t, "", arg([]string{"x"}, 1))
}

func TestActor(t *testing.T) {
	a := &app{cfg: &config.Config{Username: "admin"}}
	assert.Equal(t, "admin", a.actor())
	a.cfg.Username = ""
	assert.Equal(t, "token", a.actor())
}

type flakyServer struct {
	failures int
	calls    int
}

func (f *flakyServer) Alive(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForServer(t *testing.T) {
	t.Run("ready after retries", func(t *testing.T) {
		srv := &flakyServer{failures: 2}
		var out bytes.Buffer
		require.NoError(t, waitForServer(context.Background(), srv, 5, time.Millisecond, &out))
		assert.Equal(t, 3, srv.calls)
		assert.Contains(t, out.String(), "..")
		assert.Contains(t, out.String(), "Stardog is ready!")
	})

	t.Run("gives up", func(t *testing.T) {
		srv := &flakyServer{failures: 10}
		var out bytes.Buffer
		err := waitForServer(context.Background(), srv, 3, time.Millisecond, &out)
		assert.ErrorContains(t, err, "connection refused")
		assert.Equal(t, 3, srv.calls)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := waitForServer(ctx, &flakyServer{failures: 10}, 3, time.Hour, &bytes.Buffer{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
