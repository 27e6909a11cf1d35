package service

import (
	"testing"

	"afrilink/internal/domain"
)

func change(user string) domain.NotificationChange {
	return domain.NotificationChange{Type: domain.ChangeInsert, Notification: domain.Notification{UserID: user}}
}

func TestHub_DeliversPerUser(t *testing.T) {
	h := NewHub()
	a, unsubA := h.Subscribe("a")
	b, unsubB := h.Subscribe("b")
	defer unsubA()
	defer unsubB()

	h.Publish(change("a"))

	select {
	case <-a:
	default:
		t.Fatalf("a did not receive")
	}
	select {
	case <-b:
		t.Fatalf("b received a's change")
	default:
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe("a")
	if h.Subscribers("a") != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	unsub()
	unsub() // idempotent
	if _, ok := <-ch; ok {
		t.Fatalf("channel not closed")
	}
	if h.Subscribers("a") != 0 {
		t.Fatalf("subscriber not removed")
	}
	h.Publish(change("a"))
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	slow, unsub := h.Subscribe("a")
	defer unsub()

	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish(change("a"))
	}
	if h.Subscribers("a") != 0 {
		t.Fatalf("slow subscriber kept")
	}

	n := 0
	for range slow {
		n++
	}
	if n != subscriberBuffer {
		t.Fatalf("expected %d buffered changes, got %d", subscriberBuffer, n)
	}
}
