package counter

import "testing"

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	var first, second int
	b.Subscribe(func(delta int) { first += delta })
	b.Subscribe(func(delta int) { second += delta })

	b.NotifyDelta(3)
	b.NotifyDelta(-1)

	if first != 2 || second != 2 {
		t.Fatalf("first = %d, second = %d, want 2 and 2", first, second)
	}
}

func TestBroadcasterZeroDeltaIsNoOp(t *testing.T) {
	b := NewBroadcaster()

	calls := 0
	b.Subscribe(func(int) { calls++ })

	b.NotifyDelta(0)
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	var got int
	unsubscribe := b.Subscribe(func(delta int) { got += delta })

	b.NotifyDelta(2)
	unsubscribe()
	b.NotifyDelta(5)
	unsubscribe()

	if got != 2 {
		t.Fatalf("got = %d, want 2", got)
	}
}

func TestBroadcasterUnsubscribeWithinHandler(t *testing.T) {
	b := NewBroadcaster()

	var unsubscribe func()
	calls := 0
	unsubscribe = b.Subscribe(func(int) {
		calls++
		unsubscribe()
	})

	b.NotifyDelta(1)
	b.NotifyDelta(1)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
