package engine

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/coereg"
	"github.com/fabriziosalmi/repolizer/internal/coesnap"
	"github.com/fabriziosalmi/repolizer/internal/obslog"
)

func testLogger() obslog.Logger { return obslog.New(io.Discard, "error") }

func handleFor(id string) *coesnap.RepoHandle {
	return coesnap.NewProvider().Acquire(coesnap.Entry{ID: id, Name: id})
}

func TestClampConcurrency(t *testing.T) {
	cases := []struct {
		requested, queueLen, maxWant int
	}{
		{requested: 4, queueLen: 100, maxWant: 8},
		{requested: 2, queueLen: 1, maxWant: 1},
		{requested: 0, queueLen: 5, maxWant: 1}, // requested 0 -> n is 0 -> raised to the floor of 1
	}
	for _, tc := range cases {
		got := clampConcurrency(tc.requested, tc.queueLen)
		if got < 1 {
			t.Errorf("clampConcurrency(%d,%d) = %d, want >=1", tc.requested, tc.queueLen, got)
		}
		if got > 8 {
			t.Errorf("clampConcurrency(%d,%d) = %d, want <=8", tc.requested, tc.queueLen, got)
		}
		if got > tc.queueLen && tc.queueLen > 0 {
			t.Errorf("clampConcurrency(%d,%d) = %d, want <= queue length", tc.requested, tc.queueLen, got)
		}
	}
}

func TestEngine_RunRepository_ExceptionIsolation(t *testing.T) {
	reg := coereg.New()
	reg.MustRegister(coecore.CheckDescriptor{
		ID: "panicker", Category: "security", Weight: 1,
		Run: func(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
			panic("boom")
		},
	})
	reg.MustRegister(coecore.CheckDescriptor{
		ID: "healthy", Category: "security", Weight: 1,
		Run: func(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
			score := 90.0
			return coecore.RawResult{Status: coecore.StatusCompleted, Score: &score}, nil
		},
	})

	e := New(reg, DefaultConfig(), testLogger())
	out := e.RunRepository(context.Background(), handleFor("r1"), nil)

	if len(out.Categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(out.Categories))
	}
	checks := out.Categories[0].Checks
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}

	var sawFailed, sawCompleted bool
	for _, c := range checks {
		switch c.ID {
		case "panicker":
			if c.Raw.Status != coecore.StatusFailed {
				t.Errorf("panicker status = %s, want failed", c.Raw.Status)
			}
			sawFailed = true
		case "healthy":
			if c.Raw.Status != coecore.StatusCompleted {
				t.Errorf("healthy status = %s, want completed", c.Raw.Status)
			}
			sawCompleted = true
		}
	}
	if !sawFailed || !sawCompleted {
		t.Error("expected both checks to be present and independently resolved")
	}
}

func TestEngine_RunOne_Timeout(t *testing.T) {
	reg := coereg.New()
	reg.MustRegister(coecore.CheckDescriptor{
		ID: "slow", Category: "security", Weight: 1, Timeout: 20 * time.Millisecond,
		Run: func(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
			time.Sleep(200 * time.Millisecond)
			return coecore.RawResult{Status: coecore.StatusCompleted}, nil
		},
	})

	e := New(reg, DefaultConfig(), testLogger())
	start := time.Now()
	out := e.RunRepository(context.Background(), handleFor("r1"), nil)
	elapsed := time.Since(start)

	if elapsed > 150*time.Millisecond {
		t.Errorf("expected the repository check to return near the per-check deadline, took %s", elapsed)
	}

	checks := out.Categories[0].Checks
	if len(checks) != 1 || checks[0].Raw.Status != coecore.StatusTimeout {
		t.Fatalf("expected a single timeout outcome, got %+v", checks)
	}
}

func TestEngine_RunOne_PerCheckErrorBecomesFailed(t *testing.T) {
	reg := coereg.New()
	reg.MustRegister(coecore.CheckDescriptor{
		ID: "erroring", Category: "security", Weight: 1,
		Run: func(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
			return coecore.RawResult{}, errors.New("manifest parse failed")
		},
	})

	e := New(reg, DefaultConfig(), testLogger())
	out := e.RunRepository(context.Background(), handleFor("r1"), nil)

	c := out.Categories[0].Checks[0]
	if c.Raw.Status != coecore.StatusFailed {
		t.Errorf("status = %s, want failed", c.Raw.Status)
	}
	if c.Raw.Errors == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestEngine_RunRepository_CancellationProducesSkipped(t *testing.T) {
	reg := coereg.New()
	reg.MustRegister(coecore.CheckDescriptor{
		ID: "a", Category: "security", Weight: 1,
		Run: func(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
			return coecore.RawResult{Status: coecore.StatusCompleted}, nil
		},
	})

	e := New(reg, DefaultConfig(), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.RunRepository(ctx, handleFor("r1"), nil)
	if !out.Cancelled {
		t.Error("expected Cancelled = true")
	}
	c := out.Categories[0].Checks[0]
	if c.Raw.Status != coecore.StatusSkipped {
		t.Errorf("status = %s, want skipped for a check cancelled before start", c.Raw.Status)
	}
}

func TestSampler_RecentAndOverageRatio(t *testing.T) {
	s := NewSampler(1) // 1MB limit, guaranteed to be exceeded by the test process
	sample := s.Sample()

	if !sample.OverLimit {
		t.Error("expected the sample to exceed a 1MB limit")
	}
	if ratio := s.OverageRatio(); ratio <= 0 {
		t.Errorf("OverageRatio() = %f, want > 0", ratio)
	}
	if recent := s.Recent(); len(recent) != 1 {
		t.Errorf("Recent() length = %d, want 1", len(recent))
	}
}
