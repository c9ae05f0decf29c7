package util

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"timeout syscall", syscall.ETIMEDOUT, true},
		{"io error syscall", syscall.EIO, true},
		{"permission denied", syscall.EACCES, false},
		{"not exist", os.ErrNotExist, false},
		{"wrapped path error", &os.PathError{Op: "open", Path: "/x", Err: syscall.EAGAIN}, true},
		{"wrapped link error", &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EIO}, true},
		{"timeout message", errors.New("operation timed out"), true},
		{"plain error", errors.New("no such song"), false},
	}

	for _, tt := range tests {
		if got := IsRetryableError(tt.err); got != tt.retryable {
			t.Errorf("%s: IsRetryableError = %v, expected %v", tt.name, got, tt.retryable)
		}
	}
}

func TestRetryWithBackoffSucceedsAfterTransientFailure(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}

	attempts := 0
	result, err := RetryWithBackoff(cfg, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", syscall.ETIMEDOUT
		}
		return "ok", nil
	}, "flaky op")

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, expected %q", result, "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, expected 3", attempts)
	}
}

func TestRetryWithBackoffStopsOnPermanentError(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	permanent := fmt.Errorf("open: %w", os.ErrNotExist)
	attempts := 0
	_, err := RetryWithBackoff(cfg, func() (int, error) {
		attempts++
		return 0, permanent
	}, "doomed op")

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected permanent error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, expected 1 (no retry on permanent error)", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	attempts := 0
	err := Retry(cfg, func() error {
		attempts++
		return syscall.EIO
	}, "always failing")

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("expected EIO wrapped in final error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, expected 2", attempts)
	}
}
