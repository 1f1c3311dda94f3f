package heap

import "testing"

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected a panic, got none", name)
		}
	}()
	fn()
}

func TestFakeHeapAllocFreeRoundTrip(t *testing.T) {
	h := NewFakeHeap()
	p := h.Alloc(8)
	if h.IsNull(p) {
		t.Fatalf("Alloc returned the null address")
	}
	h.Write(p, 0, 42)
	if got := h.Read(p, 0); got != 42 {
		t.Fatalf("Read = %d, want 42", got)
	}
	h.Free(p)
}

func TestFakeHeapDoubleFreePanics(t *testing.T) {
	h := NewFakeHeap()
	p := h.Alloc(8)
	h.Free(p)
	expectPanic(t, "second Free", func() { h.Free(p) })
}

func TestFakeHeapUseAfterFreePanics(t *testing.T) {
	h := NewFakeHeap()
	p := h.Alloc(8)
	h.Free(p)
	expectPanic(t, "Read after Free", func() { h.Read(p, 0) })
	expectPanic(t, "Write after Free", func() { h.Write(p, 0, 1) })
}

func TestFakeHeapOutOfBoundsPanics(t *testing.T) {
	h := NewFakeHeap()
	p := h.Alloc(4)
	expectPanic(t, "Read past block end", func() { h.Read(p, 4) })
	expectPanic(t, "Write past block end", func() { h.Write(p, 4, 1) })
}

func TestFakeHeapNullPointerPanics(t *testing.T) {
	h := NewFakeHeap()
	expectPanic(t, "Read through null", func() { h.Read(0, 0) })
	expectPanic(t, "Write through null", func() { h.Write(0, 0, 1) })
}

func TestFakeHeapReallocPreservesContentAndFreesOldBlock(t *testing.T) {
	h := NewFakeHeap()
	p := h.Alloc(8)
	h.Write(p, 0, 99)
	grown := h.Realloc(p, 16)
	if got := h.Read(grown, 0); got != 99 {
		t.Fatalf("Read after Realloc = %d, want 99", got)
	}
	expectPanic(t, "use of pointer invalidated by Realloc", func() { h.Read(p, 0) })
}
