package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDispatcherKeyedJobsKeepOrder(t *testing.T) {
	d := NewDispatcher(Options{Name: "test", Workers: 4, QueueSize: 400})

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	for i := 0; i < 50; i++ {
		for _, key := range []int64{3, 8, 42} {
			key, i := key, i
			err := d.EnqueueKeyed(context.Background(), key, "send", "sendMessage", func() error {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Fatalf("enqueue key %d: %v", key, err)
			}
		}
	}
	d.Close()

	for key, seq := range got {
		if len(seq) != 50 {
			t.Fatalf("key %d: got %d jobs, want 50", key, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("key %d: job %d ran at position %d", key, v, i)
			}
		}
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls sync.Map
	for i := int64(0); i < 3; i++ {
		i := i
		_ = d.EnqueueKeyed(context.Background(), i, "send", "", func() error {
			n, _ := calls.LoadOrStore(i, new(int))
			*n.(*int)++
			if i == 1 {
				return nil
			}
			return errors.New("Forbidden: bot was blocked by the user (403)")
		})
	}
	d.Close()

	if got := d.ErrorCount(); got != 2 {
		t.Fatalf("ErrorCount = %d, want 2", got)
	}
	// non-transient errors are not retried
	n, _ := calls.Load(int64(0))
	if *n.(*int) != 1 {
		t.Fatalf("job ran %d times, want 1", *n.(*int))
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()

	err := d.Enqueue(context.Background(), "send", "", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	_ = d.EnqueueKeyed(context.Background(), 0, "block", "", func() error {
		close(started)
		<-release
		return nil
	})
	<-started
	if err := d.EnqueueKeyed(context.Background(), 0, "queued", "", func() error { return nil }); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	err := d.EnqueueKeyed(context.Background(), 0, "overflow", "", func() error { return nil })
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	close(release)
	d.Close()
}

func TestDispatcherNilRun(t *testing.T) {
	d := NewDispatcher(Options{})
	defer d.Close()
	if err := d.Enqueue(context.Background(), "send", "", nil); err == nil {
		t.Fatal("expected error for nil run")
	}
	if d.Lanes() != 4 {
		t.Fatalf("Lanes = %d, want default 4", d.Lanes())
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_cc/sendMessage": timeout`)
	got := sanitizeErrorMessage(err)
	want := `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClassifyError(t *testing.T) {
	cases := map[string]error{
		"timeout":  context.DeadlineExceeded,
		"http_4xx": errors.New("telegram: chat not found (400)"),
		"http_5xx": errors.New("telegram: internal (502)"),
		"unknown":  errors.New("boom"),
	}
	for want, err := range cases {
		if got := classifyError(err); got != want {
			t.Errorf("classifyError(%v) = %q, want %q", err, got, want)
		}
	}
}
