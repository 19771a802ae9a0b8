package store

import (
	"testing"
	"time"

	"github.com/julianuziemblo/tuple-space/tuple"
)

func mustTuple(t *testing.T, name string, fields ...tuple.Field) tuple.Tuple {
	t.Helper()
	tp, err := tuple.New(name, fields...)
	if err != nil {
		t.Fatalf("tuple.New: %v", err)
	}
	return tp
}

func TestAddDeduplicatesIdenticalTuples(t *testing.T) {
	s := New()
	tp := mustTuple(t, "k", tuple.Int(1))
	s.Add(tp)
	s.Add(tp)
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}

func TestReadTakeOrdering(t *testing.T) {
	s := New()
	s.Add(mustTuple(t, "k", tuple.Int(1)))
	s.Add(mustTuple(t, "k", tuple.Int(2)))

	template := mustTuple(t, "k", tuple.IntAny())

	got, ok := s.Read(template)
	if !ok {
		t.Fatal("expected a match")
	}
	if v, _ := got.Field(0).IntValue(); v != 1 {
		t.Fatalf("Read returned Int(%d), want 1", v)
	}

	taken, ok := s.Take(template)
	if !ok || func() int32 { v, _ := taken.Field(0).IntValue(); return v }() != 1 {
		t.Fatalf("Take returned %v, want Int(1)", taken)
	}

	taken2, ok := s.Take(template)
	if !ok {
		t.Fatal("expected second take to succeed")
	}
	if v, _ := taken2.Field(0).IntValue(); v != 2 {
		t.Fatalf("second Take returned Int(%d), want 2", v)
	}

	if _, ok := s.Take(template); ok {
		t.Fatal("expected no match on third take")
	}
}

func TestTakeRemovesSoSubsequentReadMisses(t *testing.T) {
	s := New()
	tp := mustTuple(t, "k", tuple.Int(1))
	s.Add(tp)
	template := mustTuple(t, "k", tuple.IntAny())

	if _, ok := s.Take(template); !ok {
		t.Fatal("expected take to succeed")
	}
	if _, ok := s.Read(template); ok {
		t.Fatal("expected no match after take removed the only tuple")
	}
}

func TestBlockingTakeWakesOnAdd(t *testing.T) {
	s := New()
	template := mustTuple(t, "k", tuple.IntAny())

	resultCh := make(chan tuple.Tuple, 1)
	go func() {
		got, ok := s.BlockingTake(template, nil)
		if ok {
			resultCh <- got
		}
	}()

	time.Sleep(20 * time.Millisecond) // give the waiter time to block
	s.Add(mustTuple(t, "k", tuple.Int(9)))

	select {
	case got := <-resultCh:
		if v, _ := got.Field(0).IntValue(); v != 9 {
			t.Fatalf("got Int(%d), want 9", v)
		}
	case <-time.After(time.Second):
		t.Fatal("BlockingTake did not wake within 1s of Add")
	}
}

func TestBlockingReadCancel(t *testing.T) {
	s := New()
	template := mustTuple(t, "k", tuple.IntAny())
	cancel := make(chan struct{})

	doneCh := make(chan bool, 1)
	go func() {
		_, ok := s.BlockingRead(template, cancel)
		doneCh <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	close(cancel)

	select {
	case ok := <-doneCh:
		if ok {
			t.Fatal("expected cancelled BlockingRead to return false")
		}
	case <-time.After(time.Second):
		t.Fatal("BlockingRead did not observe cancellation")
	}
}

func TestMultipleMatchesReturnBinarySmallest(t *testing.T) {
	s := New()
	a := mustTuple(t, "k", tuple.Int(5))
	b := mustTuple(t, "k", tuple.Int(-5))
	s.Add(a)
	s.Add(b)

	smallest := a
	if tuple.Less(b, a) {
		smallest = b
	}

	got, ok := s.Read(mustTuple(t, "k", tuple.IntAny()))
	if !ok {
		t.Fatal("expected a match")
	}
	if !tuple.Equal(got, smallest) {
		t.Fatalf("Read returned %v, want binary-smallest %v", got, smallest)
	}
}
