package phasor

import (
	"context"
	"errors"
	"testing"
)

// counter bundles per-phase call counts for entry/tick/exit actions.
type counter struct {
	entry, tick, exit int
}

func countingPhase(id PhaseID, name string, d Millis, c *counter) Phase {
	return Phase{
		ID:       id,
		Name:     name,
		Duration: d,
		Entry: func(ctx context.Context, from, to PhaseID) error {
			c.entry++
			return nil
		},
		Tick: func(ctx context.Context, elapsed Millis) error {
			c.tick++
			return nil
		},
		Exit: func(ctx context.Context, from, to PhaseID) error {
			c.exit++
			return nil
		},
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("m", nil); !errors.Is(err, ErrNoPhases) {
		t.Errorf("expected ErrNoPhases, got %v", err)
	}

	dup := []Phase{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}
	if _, err := New("m", dup); !errors.Is(err, ErrDuplicatePhase) {
		t.Errorf("expected ErrDuplicatePhase, got %v", err)
	}

	if _, err := New("m", []Phase{{ID: 1}}, WithInitial(9)); !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("expected ErrUnknownPhase, got %v", err)
	}
}

func TestPollBeforeStart(t *testing.T) {
	m, err := New("m", []Phase{{ID: 0, Name: "only", Duration: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Poll(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestStartFiresInitialEntryOnce(t *testing.T) {
	clk := NewManualClock(0)
	var a counter
	m, err := New("m", []Phase{countingPhase(0, "a", 100, &a)}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if a.entry != 1 {
		t.Errorf("expected 1 entry after Start, got %d", a.entry)
	}
	// Start is idempotent.
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if a.entry != 1 {
		t.Errorf("expected entry not re-fired by second Start, got %d", a.entry)
	}
}

// A phase of duration d polled every p must transition at elapsed time in
// [d, d+p), never earlier, and entry/exit must fire exactly once per visit.
func TestTransitionWindow(t *testing.T) {
	clk := NewManualClock(0)
	var a, b counter
	m, err := New("m", []Phase{
		countingPhase(0, "a", 55, &a),
		countingPhase(1, "b", 100, &b),
	}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}

	const p = 10
	// Ticks 1..5 land at elapsed 10..50, all below 55: no transition.
	for i := 0; i < 5; i++ {
		clk.Advance(p)
		if err := m.Poll(ctx); err != nil {
			t.Fatal(err)
		}
		if m.Current() != 0 {
			t.Fatalf("transitioned early at elapsed %d", m.Elapsed())
		}
	}
	if a.exit != 0 || b.entry != 0 {
		t.Fatalf("exit/entry fired before expiry: exit=%d entry=%d", a.exit, b.entry)
	}

	// Tick 6 lands at elapsed 60, inside [55, 65).
	clk.Advance(p)
	if err := m.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Current() != 1 {
		t.Fatalf("expected transition to b, still in %s", m.CurrentName())
	}
	if a.exit != 1 || b.entry != 1 {
		t.Errorf("expected exactly one exit/entry, got exit=%d entry=%d", a.exit, b.entry)
	}
	// Tick of the pre-transition phase fired on the transitioning poll too.
	if a.tick != 6 {
		t.Errorf("expected 6 ticks of a, got %d", a.tick)
	}
	if b.tick != 0 {
		t.Errorf("b ticked before its first poll: %d", b.tick)
	}
}

func TestAtMostOneTransitionPerPoll(t *testing.T) {
	clk := NewManualClock(0)
	var a, b, c counter
	m, err := New("m", []Phase{
		countingPhase(0, "a", 10, &a),
		countingPhase(1, "b", 10, &b),
		countingPhase(2, "c", 10, &c),
	}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}

	// Stall long enough for every duration in the cycle to elapse.
	clk.Advance(1000)
	if err := m.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Current() != 1 {
		t.Errorf("expected a single hop to b, got %s", m.CurrentName())
	}
	if b.entry != 1 || c.entry != 0 {
		t.Errorf("multi-hop catch-up occurred: b.entry=%d c.entry=%d", b.entry, c.entry)
	}
}

func TestFullCycleReturnsToInitial(t *testing.T) {
	clk := NewManualClock(0)
	var a, b, c counter
	m, err := New("m", []Phase{
		countingPhase(0, "a", 30, &a),
		countingPhase(1, "b", 20, &b),
		countingPhase(2, "c", 10, &c),
	}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}

	// 30+20+10 = 60ms of phase time, polled at 5ms.
	for i := 0; i < 13; i++ {
		clk.Advance(5)
		if err := m.Poll(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if m.Current() != 0 {
		t.Fatalf("expected cycle back to a, in %s", m.CurrentName())
	}
	if a.entry != 2 {
		t.Errorf("expected a entered twice (start + wrap), got %d", a.entry)
	}
	if a.exit != 1 || b.exit != 1 || c.exit != 1 {
		t.Errorf("expected one exit each, got a=%d b=%d c=%d", a.exit, b.exit, c.exit)
	}
}

func TestWithInitial(t *testing.T) {
	clk := NewManualClock(0)
	var a, b counter
	m, err := New("m", []Phase{
		countingPhase(0, "a", 10, &a),
		countingPhase(1, "b", 10, &b),
	}, WithClock(clk), WithInitial(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.Current() != 1 {
		t.Errorf("expected to start in b, got %s", m.CurrentName())
	}
	if b.entry != 1 || a.entry != 0 {
		t.Errorf("wrong initial entry: a=%d b=%d", a.entry, b.entry)
	}
}

// An out-of-range current index is a programming error; the machine must
// fall back to its initial phase instead of continuing undefined.
func TestInvalidIndexResetsToInitial(t *testing.T) {
	clk := NewManualClock(0)
	var a counter
	m, err := New("m", []Phase{
		countingPhase(0, "a", 10, &a),
		countingPhase(1, "b", 10, &counter{}),
	}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}

	m.current = 99
	if err := m.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Current() != 0 {
		t.Fatalf("expected reset to a, got %s", m.CurrentName())
	}
	if a.entry != 2 {
		t.Errorf("expected re-entry of initial phase, entry=%d", a.entry)
	}
}

func TestActionErrorPropagates(t *testing.T) {
	clk := NewManualClock(0)
	boom := errors.New("boom")
	m, err := New("m", []Phase{{
		ID:       0,
		Name:     "a",
		Duration: 10,
		Tick: func(ctx context.Context, elapsed Millis) error {
			return boom
		},
	}}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Poll(ctx); !errors.Is(err, boom) {
		t.Errorf("expected tick error surfaced, got %v", err)
	}
}

func TestReset(t *testing.T) {
	clk := NewManualClock(0)
	var a, b counter
	m, err := New("m", []Phase{
		countingPhase(0, "a", 10, &a),
		countingPhase(1, "b", 10, &b),
	}, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	clk.Advance(15)
	if err := m.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Current() != 1 {
		t.Fatal("expected machine in b")
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Current() != 0 {
		t.Errorf("expected machine back in a, got %s", m.CurrentName())
	}
	if m.Elapsed() != 0 {
		t.Errorf("expected entry timestamp re-stamped, elapsed=%d", m.Elapsed())
	}
	if b.exit != 0 {
		t.Errorf("Reset must not run exit actions, b.exit=%d", b.exit)
	}
}

func TestTransitionPublisher(t *testing.T) {
	clk := NewManualClock(0)
	var events []TransitionEvent
	pub := publisherFunc(func(ctx context.Context, ev TransitionEvent) error {
		events = append(events, ev)
		return nil
	})

	m, err := New("m", []Phase{
		{ID: 0, Name: "a", Duration: 10},
		{ID: 1, Name: "b", Duration: 10},
	}, WithClock(clk), WithPublisher(pub))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	clk.Advance(10)
	if err := m.Poll(ctx); err != nil {
		t.Fatal(err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Machine != "m" || ev.FromName != "a" || ev.ToName != "b" || ev.Poll != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

type publisherFunc func(ctx context.Context, ev TransitionEvent) error

func (f publisherFunc) Publish(ctx context.Context, ev TransitionEvent) error {
	return f(ctx, ev)
}

func BenchmarkPoll(b *testing.B) {
	clk := NewManualClock(0)
	m, err := New("bench", []Phase{
		{ID: 0, Name: "a", Duration: 10},
		{ID: 1, Name: "b", Duration: 10},
	}, WithClock(clk))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clk.Advance(1)
		if err := m.Poll(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
