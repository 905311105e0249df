package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/edgecam/internal/frame"
)

func testFrame(id byte) *frame.Buffer {
	return frame.NewGray([]byte{id}, 1, 1, time.Now())
}

func TestOffer_KeepsOnlyNewest(t *testing.T) {
	for _, n := range []int{1, 2, 7, 100} {
		m := New()
		for i := 0; i < n; i++ {
			m.Offer(testFrame(byte(i)))
			if m.Len() > 1 {
				t.Fatalf("n=%d: mailbox holds %d frames", n, m.Len())
			}
		}

		if m.Len() != 1 {
			t.Fatalf("n=%d: Len = %d, want 1", n, m.Len())
		}
		f, err := m.Take(context.Background())
		if err != nil {
			t.Fatalf("n=%d: Take failed: %v", n, err)
		}
		if got := f.Bytes[0]; got != byte(n-1) {
			t.Errorf("n=%d: got frame %d, want most recent %d", n, got, n-1)
		}

		st := m.Stats()
		if st.Offered != uint64(n) || st.Evicted != uint64(n-1) || st.Taken != 1 {
			t.Errorf("n=%d: stats %+v", n, st)
		}
	}
}

func TestTake_BlocksUntilOffer(t *testing.T) {
	m := New()
	got := make(chan byte, 1)
	go func() {
		f, err := m.Take(context.Background())
		if err == nil {
			got <- f.Bytes[0]
		}
	}()

	select {
	case <-got:
		t.Fatal("Take returned before any frame was offered")
	case <-time.After(20 * time.Millisecond):
	}

	m.Offer(testFrame(42))
	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("got %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not return after Offer")
	}
}

func TestTake_ContextCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Take(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestClose(t *testing.T) {
	m := New()
	m.Offer(testFrame(1))
	m.Close()
	m.Close()

	if m.Len() != 0 {
		t.Error("Close should drain the pending frame")
	}
	if _, err := m.Take(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Take after Close: got %v, want ErrClosed", err)
	}
	if m.Offer(testFrame(2)) {
		t.Error("Offer after Close should fail")
	}
}

func TestOffer_Concurrent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				m.Offer(testFrame(byte(p)))
			}
		}(p)
	}
	wg.Wait()

	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	st := m.Stats()
	if st.Offered != 2000 {
		t.Errorf("Offered = %d, want 2000", st.Offered)
	}
	if st.Evicted+st.Dropped != 1999 {
		t.Errorf("evicted(%d)+dropped(%d) = %d, want 1999", st.Evicted, st.Dropped, st.Evicted+st.Dropped)
	}
}
