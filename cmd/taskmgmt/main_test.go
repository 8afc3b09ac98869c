package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskmgmt/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_ServerFailureStopsProcess(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	cleaned := false
	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), &http.Server{Handler: http.NotFoundHandler()}, ln, time.Second, discardLogger(), func() error {
			cleaned = true
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "http server")
		assert.True(t, cleaned)
	case <-time.After(5 * time.Second):
		t.Fatal("serve kept waiting after the server failed")
	}
}

func TestServe_StopsWhenContextCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, &http.Server{Handler: http.NotFoundHandler()}, ln, time.Second, discardLogger(), func() error { return nil })
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}

func TestRun_AddressInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	cfg := config.Default()
	cfg.HTTP.Addr = busy.Addr().String()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "run.db")
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Auth.BcryptCost = bcrypt.MinCost

	err = run(cfg, discardLogger())
	assert.ErrorContains(t, err, "unable to listen")
}
