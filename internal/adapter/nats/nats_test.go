package nats

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/TripForge/internal/adapter/natskv"
	"github.com/Strob0t/TripForge/internal/logger"
	"github.com/Strob0t/TripForge/internal/port/cache"
	"github.com/Strob0t/TripForge/internal/port/messagequeue"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Queue {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	q, err := Connect(context.Background(), url, "TRIPFORGE_TEST")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		if err := q.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return q
}

func tripPayload(t *testing.T, destination string) []byte {
	t.Helper()
	data, err := json.Marshal(messagequeue.TripPlannedPayload{
		Destination: destination,
		Budget:      1000,
		Duration:    3,
		Interests:   []string{"Food"},
		Agent:       "all",
		Outcomes:    map[string]string{"itinerary": "ok"},
		PlannedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestQueue_PublishSubscribe(t *testing.T) {
	q := testConnect(t)

	var (
		mu       sync.Mutex
		received messagequeue.TripPlannedPayload
		gotReqID string
		done     = make(chan struct{})
		once     sync.Once
	)

	stop, err := q.Subscribe(context.Background(), messagequeue.SubjectTripPlanned, func(ctx context.Context, _ string, d []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if err := json.Unmarshal(d, &received); err != nil {
			return err
		}
		gotReqID = logger.RequestID(ctx)
		once.Do(func() { close(done) })
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	ctx := logger.WithRequestID(context.Background(), "req-abc-123")
	if err := q.Publish(ctx, messagequeue.SubjectTripPlanned, tripPayload(t, "Paris")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	mu.Lock()
	defer mu.Unlock()
	if received.Destination != "Paris" {
		t.Errorf("destination = %q, want Paris", received.Destination)
	}
	if gotReqID != "req-abc-123" {
		t.Errorf("request ID = %q, want req-abc-123", gotReqID)
	}
}

func TestQueue_PublishRejectsInvalidPayload(t *testing.T) {
	q := testConnect(t)
	if err := q.Publish(context.Background(), messagequeue.SubjectTripPlanned, []byte(`{"budget":1}`)); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestQueue_KeyValueCache(t *testing.T) {
	q := testConnect(t)

	kv, err := q.KeyValue(context.Background(), "TRIPFORGE_TEST_KV", time.Minute)
	if err != nil {
		t.Fatalf("KeyValue: %v", err)
	}
	cache.RunComplianceTests(t, natskv.New(kv))
}

func TestQueue_IsConnected(t *testing.T) {
	q := testConnect(t)

	if !q.IsConnected() {
		t.Error("IsConnected() = false after Connect, want true")
	}
}
