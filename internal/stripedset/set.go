package stripedset

import (
	"sync"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
)

// MaxLoadFactor is the average bucket length above which the table doubles.
const MaxLoadFactor = 4

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 16

// Set is a striped concurrent hash set. Keys are never removed.
type Set[K comparable] struct {
	hash func(K) uint64

	// locks is fixed at construction; len(locks) never changes.
	locks []sync.Mutex

	// buckets is replaced by resize while every stripe is held.
	// Read it only while holding at least one stripe.
	buckets [][]K

	// size counts stored keys. It drives the resize policy only.
	size atomic.Int64

	// bucketCount mirrors len(buckets) for the lock-free policy check.
	bucketCount atomic.Int64
}

// New creates a Set with capacity initial buckets and the same number of
// stripes. hash must be deterministic for equal keys.
func New[K comparable](capacity int, hash func(K) uint64) *Set[K] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s := &Set[K]{
		hash:    hash,
		locks:   make([]sync.Mutex, capacity),
		buckets: make([][]K, capacity),
	}
	s.bucketCount.Store(int64(capacity))
	return s
}

// NewStrings creates a Set of strings hashed with xxhash.
func NewStrings(capacity int) *Set[string] {
	return New(capacity, xxhash.ChecksumString64)
}

// stripe returns the lock covering k. The mapping never changes.
func (s *Set[K]) stripe(h uint64) *sync.Mutex {
	return &s.locks[h%uint64(len(s.locks))]
}

// Contains reports whether k is stored.
func (s *Set[K]) Contains(k K) bool {
	h := s.hash(k)
	mu := s.stripe(h)
	mu.Lock()
	defer mu.Unlock()

	return s.indexOf(s.buckets[h%uint64(len(s.buckets))], k) >= 0
}

// Add inserts k and reports whether this call performed the insertion.
// Among concurrent Adds of the same key exactly one returns true.
func (s *Set[K]) Add(k K) bool {
	h := s.hash(k)
	if !s.insert(h, k) {
		return false
	}

	if s.shouldResize() {
		s.resize(s.bucketCount.Load())
	}
	return true
}

// insert adds k under its stripe and reports whether it was absent.
func (s *Set[K]) insert(h uint64, k K) bool {
	mu := s.stripe(h)
	mu.Lock()
	defer mu.Unlock()

	i := h % uint64(len(s.buckets))
	if s.indexOf(s.buckets[i], k) >= 0 {
		return false
	}
	s.buckets[i] = append(s.buckets[i], k)
	s.size.Add(1)
	return true
}

// shouldResize evaluates the load-factor policy without locking.
// It compares size > MaxLoadFactor*buckets so that the ratio never
// settles above MaxLoadFactor through integer truncation.
func (s *Set[K]) shouldResize() bool {
	return s.size.Load() > MaxLoadFactor*s.bucketCount.Load()
}

// resize doubles the table if it still has oldCount buckets once every
// stripe is held. A caller that lost the race releases all stripes and
// leaves the table alone.
func (s *Set[K]) resize(oldCount int64) {
	s.lockAll()
	defer s.unlockAll()

	if int64(len(s.buckets)) != oldCount {
		return
	}

	grown := make([][]K, 2*len(s.buckets))
	for _, bucket := range s.buckets {
		for _, k := range bucket {
			i := s.hash(k) % uint64(len(grown))
			grown[i] = append(grown[i], k)
		}
	}

	s.buckets = grown
	s.bucketCount.Store(int64(len(grown)))
}

// lockAll acquires every stripe in ascending index order.
// Every path that holds more than one stripe must go through here.
func (s *Set[K]) lockAll() {
	for i := range s.locks {
		s.locks[i].Lock()
	}
}

// unlockAll releases every stripe.
func (s *Set[K]) unlockAll() {
	for i := range s.locks {
		s.locks[i].Unlock()
	}
}

// indexOf returns the position of k in bucket or -1.
func (s *Set[K]) indexOf(bucket []K, k K) int {
	for i, v := range bucket {
		if v == k {
			return i
		}
	}
	return -1
}

// Len returns the number of stored keys.
func (s *Set[K]) Len() int {
	return int(s.size.Load())
}

// BucketCount returns the current number of buckets.
func (s *Set[K]) BucketCount() int {
	return int(s.bucketCount.Load())
}

// StripeCount returns the fixed number of stripes.
func (s *Set[K]) StripeCount() int {
	return len(s.locks)
}

// Keys returns a snapshot of every stored key in bucket order.
// It blocks all other operations for the duration of the copy.
func (s *Set[K]) Keys() []K {
	s.lockAll()
	defer s.unlockAll()

	keys := make([]K, 0, s.size.Load())
	for _, bucket := range s.buckets {
		keys = append(keys, bucket...)
	}
	return keys
}
