package highlight

import "sync"

// Topic names the single broadcast topic.
const Topic = "highlight-sentence"

// Broadcast asks every listening view to highlight Sentence in its own text.
type Broadcast struct {
	Sentence string `json:"sentence"`
}

// Bus fans a Broadcast out to all current subscribers. Each subscription
// holds at most one undelivered broadcast; a newer one replaces it, since
// views only ever render the latest target.
type Bus struct {
	mu   sync.Mutex
	subs map[uint64]chan Broadcast
	next uint64
}

type Subscription struct {
	C <-chan Broadcast

	id  uint64
	bus *Bus
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan Broadcast)}
}

func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Broadcast, 1)
	b.next++
	b.subs[b.next] = ch
	return &Subscription{C: ch, id: b.next, bus: b}
}

// Unsubscribe removes s and closes its channel. Calling it twice is a no-op.
func (b *Bus) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[s.id]
	if !ok {
		return
	}
	delete(b.subs, s.id)
	close(ch)
}

func (s *Subscription) Unsubscribe() {
	s.bus.Unsubscribe(s)
}

// Publish delivers msg to every subscriber without blocking and returns how
// many subscribers it reached.
func (b *Bus) Publish(msg Broadcast) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- msg
		}
	}
	return len(b.subs)
}
