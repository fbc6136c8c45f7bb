package storage

import (
	"fmt"
	"testing"

	"github.com/raniellyferreira/linekv/protocol"
)

// Benchmark scenarios:
// 1. Read-only workloads against a populated map
// 2. Write-only workloads
// 3. Mixed workloads from many goroutines

func populatedOwner(b *testing.B, keys int) *Owner {
	b.Helper()

	owner := NewOwner()
	go owner.Run()
	b.Cleanup(func() {
		owner.Close()
		<-owner.Done()
	})

	for i := 0; i < keys; i++ {
		key := fmt.Sprintf("key%d", i)
		if _, err := owner.Do(protocol.Set(key, "value"+key)); err != nil {
			b.Fatal(err)
		}
	}
	return owner
}

// BenchmarkOwnerGet benchmarks parallel reads through the owner
func BenchmarkOwnerGet(b *testing.B) {
	owner := populatedOwner(b, 1000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			owner.Do(protocol.Get(fmt.Sprintf("key%d", i%1000)))
			i++
		}
	})
}

// BenchmarkOwnerSet benchmarks parallel writes through the owner
func BenchmarkOwnerSet(b *testing.B) {
	owner := populatedOwner(b, 0)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			owner.Do(protocol.Set(fmt.Sprintf("key%d", i%1000), "value"))
			i++
		}
	})
}

// BenchmarkOwnerMixed benchmarks 80% reads, 20% writes
func BenchmarkOwnerMixed(b *testing.B) {
	owner := populatedOwner(b, 1000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key%d", i%1000)
			if i%5 == 0 {
				owner.Do(protocol.Set(key, "updated"))
			} else {
				owner.Do(protocol.Get(key))
			}
			i++
		}
	})
}

// BenchmarkMemoryGet is the baseline without the owner goroutine
func BenchmarkMemoryGet(b *testing.B) {
	m := NewMemory()
	for i := 0; i < 1000; i++ {
		m.Set(fmt.Sprintf("key%d", i), "value")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Get(fmt.Sprintf("key%d", i%1000))
	}
}
