package alloc

import (
	"testing"

	"github.com/joshuapare/heapkit/heap/arena"
)

// Benchmark_Malloc_Free_Pairs measures the reuse path: every malloc is served
// by the block the previous free returned.
func Benchmark_Malloc_Free_Pairs(b *testing.B) {
	a, err := NewStatic(arena.DefaultSize, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer a.Close()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p, mallocErr := a.Malloc(uint32(16 + i%256))
		if mallocErr != nil {
			b.Fatal(mallocErr)
		}
		if freeErr := a.Free(p); freeErr != nil {
			b.Fatal(freeErr)
		}
	}
}

// Benchmark_Malloc_Fragmented measures the search path over a list of many
// small holes, for both policies.
func Benchmark_Malloc_Fragmented(b *testing.B) {
	for _, policy := range []Policy{PolicyFirstFit, PolicyBestFit} {
		b.Run(policy.String(), func(b *testing.B) {
			a, err := NewStatic(4*1024*1024, &Options{Policy: policy})
			if err != nil {
				b.Fatal(err)
			}
			defer a.Close()

			// Alternate used/free 32-byte blocks so no holes merge.
			var holes []Ptr
			for i := 0; i < 2048; i++ {
				p, mallocErr := a.Malloc(32)
				if mallocErr != nil {
					b.Fatal(mallocErr)
				}
				if i%2 == 0 {
					holes = append(holes, p)
				}
			}
			for _, p := range holes {
				_ = a.Free(p)
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, mallocErr := a.Malloc(512)
				if mallocErr != nil {
					b.Fatal(mallocErr)
				}
				_ = a.Free(p)
			}
		})
	}
}
