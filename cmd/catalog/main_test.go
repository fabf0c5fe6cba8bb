package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestMigrateUntilApplied(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errDown := errors.New("connection refused")

	tests := []struct {
		name      string
		failures  int
		cancel    bool
		wantOK    bool
		wantCalls int
	}{
		{name: "applies after database comes up", failures: 2, wantOK: true, wantCalls: 3},
		{name: "first retry succeeds", failures: 0, wantOK: true, wantCalls: 1},
		{name: "stops on shutdown", failures: 1 << 30, cancel: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			calls := 0
			apply := func() error {
				calls++
				if calls <= tt.failures {
					if tt.cancel && calls == 2 {
						cancel()
					}
					return errDown
				}
				return nil
			}

			ok := migrateUntilApplied(ctx, apply, time.Millisecond, logger)
			if ok != tt.wantOK {
				t.Fatalf("want applied %v, got %v", tt.wantOK, ok)
			}
			if tt.wantCalls > 0 && calls != tt.wantCalls {
				t.Fatalf("want %d attempts, got %d", tt.wantCalls, calls)
			}
			if tt.cancel && ctx.Err() != context.Canceled {
				t.Fatalf("test ended without cancellation: %v", ctx.Err())
			}
		})
	}
}
