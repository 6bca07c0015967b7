package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestState_String は各状態のログ用表現を検証します。
func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    State
		expected string
	}{
		{Idle, "idle"},
		{Loading, "loading"},
		{Ready, "ready"},
		{Failed, "failed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, expected %q", tt.state, got, tt.expected)
		}
	}
}

// TestController_InitialState は生成直後の状態がIdleであることを検証します。
func TestController_InitialState(t *testing.T) {
	t.Parallel()

	c := NewController[int](nil)

	snap := c.Snapshot()
	if snap.State != Idle {
		t.Errorf("expected Idle, got %v", snap.State)
	}
	if snap.Generation != 0 {
		t.Errorf("expected generation 0, got %d", snap.Generation)
	}
}

// TestController_LoadSync_Success はLoading→Readyの遷移と値の反映を検証します。
func TestController_LoadSync_Success(t *testing.T) {
	t.Parallel()

	var transitions []State
	c := NewController(func(snap Snapshot[int]) {
		transitions = append(transitions, snap.State)
	})

	c.LoadSync(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	snap := c.Snapshot()
	if snap.State != Ready {
		t.Fatalf("expected Ready, got %v", snap.State)
	}
	if snap.Value != 42 {
		t.Errorf("expected value 42, got %d", snap.Value)
	}
	if snap.Err != nil {
		t.Errorf("expected nil error, got %v", snap.Err)
	}

	if len(transitions) != 2 || transitions[0] != Loading || transitions[1] != Ready {
		t.Errorf("expected [Loading Ready], got %v", transitions)
	}
}

// TestController_LoadSync_Failure はLoading→Failedの遷移とエラーの保持を検証します。
func TestController_LoadSync_Failure(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("fetch failed")
	c := NewController[int](nil)

	c.LoadSync(context.Background(), func(ctx context.Context) (int, error) {
		return 0, expectedErr
	})

	snap := c.Snapshot()
	if snap.State != Failed {
		t.Fatalf("expected Failed, got %v", snap.State)
	}
	if !errors.Is(snap.Err, expectedErr) {
		t.Errorf("expected fetch error, got %v", snap.Err)
	}
}

// TestController_RetryAfterFailure は失敗後の再Loadが通常どおり成功することを検証します。
func TestController_RetryAfterFailure(t *testing.T) {
	t.Parallel()

	c := NewController[string](nil)

	c.LoadSync(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("transient")
	})
	if c.Snapshot().State != Failed {
		t.Fatal("expected Failed before retry")
	}

	c.LoadSync(context.Background(), func(ctx context.Context) (string, error) {
		return "recovered", nil
	})

	snap := c.Snapshot()
	if snap.State != Ready || snap.Value != "recovered" {
		t.Errorf("expected recovered Ready state, got %+v", snap)
	}
	if snap.Err != nil {
		t.Errorf("error from previous generation must be cleared, got %v", snap.Err)
	}
}

// TestController_StaleCompletionDiscarded は追い越された古いフェッチの完了が
// 新しい結果を上書きしないことを検証します。
func TestController_StaleCompletionDiscarded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	done := make(chan struct{})

	var mu sync.Mutex
	var readyValues []int
	c := NewController(func(snap Snapshot[int]) {
		if snap.State == Ready {
			mu.Lock()
			readyValues = append(readyValues, snap.Value)
			mu.Unlock()
		}
	})

	// 1回目のLoad：releaseが閉じるまで完了しない遅いフェッチ
	c.Load(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		defer close(done)
		return 1, nil
	})

	// 2回目のLoad：即完了
	c.LoadSync(context.Background(), func(ctx context.Context) (int, error) {
		return 2, nil
	})

	snap := c.Snapshot()
	if snap.State != Ready || snap.Value != 2 {
		t.Fatalf("expected Ready(2), got %+v", snap)
	}

	// 遅いフェッチをいま完了させても状態は変わらない
	close(release)
	<-done
	// completeはフェッチ関数の戻り後に走るため、短い猶予を置いてから観測する
	time.Sleep(20 * time.Millisecond)

	snap = c.Snapshot()
	if snap.Value != 2 {
		t.Errorf("stale completion must not overwrite newer result, got %d", snap.Value)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(readyValues) != 1 || readyValues[0] != 2 {
		t.Errorf("expected exactly one Ready notification with value 2, got %v", readyValues)
	}
}

// TestController_Load_Async は非同期Loadの完了を検証します。
func TestController_Load_Async(t *testing.T) {
	t.Parallel()

	done := make(chan Snapshot[int], 2)
	c := NewController(func(snap Snapshot[int]) {
		done <- snap
	})

	c.Load(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})

	first := <-done
	if first.State != Loading {
		t.Errorf("expected Loading first, got %v", first.State)
	}
	second := <-done
	if second.State != Ready || second.Value != 7 {
		t.Errorf("expected Ready(7), got %+v", second)
	}
}

// TestController_GenerationIncrements は各Loadで世代が単調増加することを検証します。
func TestController_GenerationIncrements(t *testing.T) {
	t.Parallel()

	c := NewController[int](nil)

	for i := 1; i <= 3; i++ {
		c.LoadSync(context.Background(), func(ctx context.Context) (int, error) {
			return i, nil
		})
		if gen := c.Snapshot().Generation; gen != uint64(i) {
			t.Errorf("expected generation %d, got %d", i, gen)
		}
	}
}
