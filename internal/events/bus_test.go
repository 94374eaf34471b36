package events

import "testing"

func TestBus_PublishSubscribeInOrder(t *testing.T) {
	bus := NewBus(8)

	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "first:"+string(e.Type)) })
	bus.Subscribe(func(e Event) { got = append(got, "tools:"+string(e.Type)) }, EventToolCalled)

	bus.Publish(TurnStartedPayload{Model: "big-pickle"})
	bus.Publish(ToolCalledPayload{Name: "shell"})

	want := []string{
		"first:turn.started",
		"first:tool.called",
		"tools:tool.called",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(8)
	count := 0
	unsub := bus.Subscribe(func(Event) { count++ })

	bus.Publish(TurnStartedPayload{})
	unsub()
	bus.Publish(TurnStartedPayload{})

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
}

func TestBus_NilIsNoop(t *testing.T) {
	var bus *Bus
	bus.Publish(TurnStartedPayload{})
}

func TestBus_History(t *testing.T) {
	bus := NewBus(2)
	bus.Publish(TurnStartedPayload{Content: "a"})
	bus.Publish(ToolCalledPayload{Name: "b"})
	bus.Publish(TurnCompletedPayload{Reply: "c"})

	h := bus.History(10)
	if len(h) != 2 {
		t.Fatalf("expected 2 events, got %d", len(h))
	}
	if h[0].Type != EventToolCalled || h[1].Type != EventTurnCompleted {
		t.Errorf("unexpected history order: %s, %s", h[0].Type, h[1].Type)
	}
	if h[0].Seq >= h[1].Seq {
		t.Errorf("sequence numbers not increasing: %d, %d", h[0].Seq, h[1].Seq)
	}
}
