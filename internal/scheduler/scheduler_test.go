package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestStart_RunsOneCycleImmediately(t *testing.T) {
	var calls int32
	s := New(func() { atomic.AddInt32(&calls, 1) }, 1, zap.NewNop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("startup cycle never ran")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestNew_ClampsInterval(t *testing.T) {
	s := New(func() {}, 0, zap.NewNop())
	if s.spec != "@every 1h" {
		t.Fatalf("spec = %q, want @every 1h", s.spec)
	}
}
