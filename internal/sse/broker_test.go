package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/docpress/internal/reconcile"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "sync.started", Data: map[string]string{"source": "/src"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: sync.started") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"source":"/src"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishOutcome_OrderedBeforeReport(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishOutcome(reconcile.Outcome{Action: reconcile.ActionConverted, Source: "a.docx", Output: "a.html"})
	b.PublishOutcome(reconcile.Outcome{Action: reconcile.ActionDeleted, Output: "b.html"})
	b.PublishReport(&reconcile.Report{})

	var got []string
	for len(got) < 3 {
		select {
		case msg := <-ch:
			got = append(got, strings.SplitN(string(msg), "\n", 2)[0])
		case <-time.After(time.Second):
			t.Fatalf("timeout after %v", got)
		}
	}
	want := []string{"event: post.converted", "event: post.deleted", "event: sync.completed"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPublishReport(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishReport(&reconcile.Report{Outcomes: []reconcile.Outcome{
		{Action: reconcile.ActionConverted},
		{Action: reconcile.ActionFailed},
	}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: sync.completed") || !strings.Contains(s, `"converted":1`) {
			t.Errorf("unexpected message %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

// syncRecorder guards the recorder body, which ServeHTTP writes from
// another goroutine.
type syncRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishOutcome(reconcile.Outcome{Action: reconcile.ActionDeleted, Output: "x.html"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if body := w.body(); !strings.Contains(body, "event: post.deleted") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "sync.completed", Data: map[string]string{}})
	b.PublishOutcome(reconcile.Outcome{Action: reconcile.ActionSkipped})
}
