package bound

import (
	"strconv"
	"testing"
)

func benchProto(n int) map[string]any {
	inner := make(map[string]any, n)
	proto := make(map[string]any, n+1)
	for i := 0; i < n; i++ {
		inner["k"+strconv.Itoa(i)] = i
		proto["f"+strconv.Itoa(i)] = "v"
	}
	proto["inner"] = inner
	return proto
}

func BenchmarkBinding_Set(b *testing.B) {
	for _, subs := range []int{1, 10, 100} {
		b.Run(strconv.Itoa(subs), func(b *testing.B) {
			binding := NewBinding(false, 0)
			for i := 0; i < subs; i++ {
				_ = binding.AddSubscriber(NewObject(), "v", RoleDefault)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				binding.Set(i)
			}
		})
	}
}

func BenchmarkNew(b *testing.B) {
	proto := benchProto(16)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := New(proto); err != nil {
			b.Fatalf("New: %v", err)
		}
	}
}

func BenchmarkBound_Bind(b *testing.B) {
	bd, err := New(benchProto(16))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj := NewObject()
		if err := bd.Bind(obj); err != nil {
			b.Fatalf("Bind: %v", err)
		}
		if _, err := bd.Unbind(obj); err != nil {
			b.Fatalf("Unbind: %v", err)
		}
	}
}

func BenchmarkObject_PutMaster(b *testing.B) {
	bd, err := New(benchProto(16))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	for i := 0; i < 8; i++ {
		_ = bd.Bind(NewObject(), WithTwoWay(i%2 == 0))
	}
	obj := bd.Object()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = obj.Put("inner.k3", i)
	}
}
