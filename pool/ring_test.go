// File: pool/ring_test.go
// Author: momentics <momentics@gmail.com>
//
// Property-based test grounded on the teacher's tests/property_ring_test.go:
// randomized enqueue/dequeue sequences must keep Len() consistent with
// the tracked logical size at every step.

package pool

import (
	"math/rand"
	"testing"
)

func TestRingBufferPropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ring := NewRingBuffer[int](64)

		size := 0
		for i := 0; i < 5000; i++ {
			op := rng.Intn(2)
			val := rng.Intn(100000)
			switch op {
			case 0:
				if ring.Enqueue(val) {
					size++
				}
			case 1:
				if _, ok := ring.Dequeue(); ok {
					size--
				}
			}
			if size != ring.Len() {
				t.Fatalf("seed %d: invariant failed at op %d: expected %d, got %d", seed, i, size, ring.Len())
			}
			if ring.Len() < 0 || ring.Len() > ring.Cap() {
				t.Fatalf("seed %d: length out of bounds: %d", seed, ring.Len())
			}
		}
	}
}

func TestRingBufferBasicFIFO(t *testing.T) {
	r := NewRingBuffer[string](4)
	for _, v := range []string{"a", "b", "c"} {
		if !r.Enqueue(v) {
			t.Fatalf("Enqueue(%q) failed", v)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := r.Dequeue()
		if !ok || got != want {
			t.Errorf("Dequeue() = (%q, %v), want (%q, true)", got, ok, want)
		}
	}
}

func TestNewRingBufferPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewRingBuffer(6) did not panic")
		}
	}()
	NewRingBuffer[int](6)
}
