package queue

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// TestBlockingFIFO tests that a single producer and consumer observe push order.
func TestBlockingFIFO(t *testing.T) {
	t.Parallel()

	q := New[string]()
	q.Push("A")
	q.Push("B")
	q.Push("C")

	for _, want := range []string{"A", "B", "C"} {
		if got := q.Pop(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}

	if !q.IsEmpty() {
		t.Error("expected queue to be empty after draining")
	}
}

// TestBlockingLen tests the size snapshot.
func TestBlockingLen(t *testing.T) {
	t.Parallel()

	q := New[int]()
	if q.Len() != 0 {
		t.Errorf("expected len 0, got %d", q.Len())
	}

	for i := range 5 {
		q.Push(i)
	}
	if q.Len() != 5 {
		t.Errorf("expected len 5, got %d", q.Len())
	}

	_ = q.Pop()
	if q.Len() != 4 {
		t.Errorf("expected len 4, got %d", q.Len())
	}
}

// TestBlockingPopWaitsForPush tests that Pop suspends until an item arrives.
func TestBlockingPopWaitsForPush(t *testing.T) {
	t.Parallel()

	q := New[string]()
	got := make(chan string, 1)

	go func() {
		got <- q.Pop()
	}()

	select {
	case v := <-got:
		t.Fatalf("Pop returned %q before any Push", v)
	case <-time.After(50 * time.Millisecond):
	}

	q.Push("late")

	select {
	case v := <-got:
		if v != "late" {
			t.Errorf("expected %q, got %q", "late", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

// TestBlockingPoisonReleasesConsumers tests the sentinel shutdown convention.
func TestBlockingPoisonReleasesConsumers(t *testing.T) {
	t.Parallel()

	const consumers = 8
	q := New[string]()

	var wg sync.WaitGroup
	for range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if q.Pop() == "" {
					return
				}
			}
		}()
	}

	q.Push("work-1")
	q.Push("work-2")
	for range consumers {
		q.Push("")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers were not released by poison values")
	}
}

// TestBlockingConcurrentProducersConsumers tests that every pushed item is popped exactly once.
func TestBlockingConcurrentProducersConsumers(t *testing.T) {
	t.Parallel()

	const (
		producers   = 4
		consumers   = 4
		perProducer = 500
	)

	q := New[int]()
	results := make(chan int, producers*perProducer)

	var consumersWG sync.WaitGroup
	for range consumers {
		consumersWG.Add(1)
		go func() {
			defer consumersWG.Done()
			for {
				v := q.Pop()
				if v < 0 {
					return
				}
				results <- v
			}
		}()
	}

	var producersWG sync.WaitGroup
	for p := range producers {
		producersWG.Add(1)
		go func() {
			defer producersWG.Done()
			for i := range perProducer {
				q.Push(p*perProducer + i)
			}
		}()
	}

	producersWG.Wait()
	for range consumers {
		q.Push(-1)
	}
	consumersWG.Wait()
	close(results)

	got := make([]int, 0, producers*perProducer)
	for v := range results {
		got = append(got, v)
	}
	sort.Ints(got)

	if len(got) != producers*perProducer {
		t.Fatalf("expected %d items, got %d", producers*perProducer, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("expected item %d at position %d, got %d", i, i, v)
		}
	}
}

// TestBlockingPerProducerOrder tests that items from one producer keep their relative order.
func TestBlockingPerProducerOrder(t *testing.T) {
	t.Parallel()

	q := New[int]()

	var wg sync.WaitGroup
	for p := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				q.Push(p*1000 + i)
			}
		}()
	}
	wg.Wait()

	last := map[int]int{0: -1, 1: -1}
	for range 200 {
		v := q.Pop()
		producer, seq := v/1000, v%1000
		if seq <= last[producer] {
			t.Fatalf("producer %d: item %d popped after %d", producer, seq, last[producer])
		}
		last[producer] = seq
	}
}
