package highlight

import "testing"

func TestBusFanOut(t *testing.T) {
	b := NewBus()
	s1 := b.Subscribe()
	s2 := b.Subscribe()

	if n := b.Publish(Broadcast{Sentence: "Hello world."}); n != 2 {
		t.Errorf("Publish reached %d, want 2", n)
	}

	for i, s := range []*Subscription{s1, s2} {
		msg := <-s.C
		if msg.Sentence != "Hello world." {
			t.Errorf("sub %d got %q", i, msg.Sentence)
		}
	}
}

func TestBusLatestWins(t *testing.T) {
	b := NewBus()
	s := b.Subscribe()

	b.Publish(Broadcast{Sentence: "old"})
	b.Publish(Broadcast{Sentence: "new"})

	if msg := <-s.C; msg.Sentence != "new" {
		t.Errorf("got %q, want %q", msg.Sentence, "new")
	}
	select {
	case msg := <-s.C:
		t.Errorf("unexpected extra broadcast %q", msg.Sentence)
	default:
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	s := b.Subscribe()
	keep := b.Subscribe()

	s.Unsubscribe()
	s.Unsubscribe()

	if _, ok := <-s.C; ok {
		t.Error("channel should be closed")
	}
	if n := b.Publish(Broadcast{Sentence: "x"}); n != 1 {
		t.Errorf("Publish reached %d, want 1", n)
	}
	if msg := <-keep.C; msg.Sentence != "x" {
		t.Errorf("remaining subscriber got %q", msg.Sentence)
	}
}

func TestBusNoSubscribers(t *testing.T) {
	if n := NewBus().Publish(Broadcast{Sentence: "x"}); n != 0 {
		t.Errorf("Publish reached %d, want 0", n)
	}
}
