// Package arena implements a bump allocator over a fixed size byte buffer.
//
// Memory handed out by an Arena is never freed individually; the whole arena
// lives as long as the editing session. Exhausting the arena is treated as a
// fatal condition: the arena backs the undo history, and silently dropping
// history is worse than stopping.
package arena

import (
	"errors"
	"fmt"
)

type (
	// Arena is a bump allocator. The zero value is not usable; use New.
	Arena struct {
		buf       []byte
		off       int
		alignment int
		allocs    int
	}

	// Span addresses an allocation inside the arena. Spans stay valid for the
	// lifetime of the arena, unlike slices that would pin a particular backing
	// array.
	Span struct {
		Off, Len int
	}
)

// ErrOutOfMemory is the panic value (wrapped) when an allocation does not fit.
var ErrOutOfMemory = errors.New("arena out of memory")

// New creates an arena with capacity bytes. alignment must be a power of two.
func New(capacity, alignment int) *Arena {
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		panic(fmt.Errorf("arena alignment %d is not a power of two", alignment))
	}
	if capacity < 0 {
		panic(fmt.Errorf("negative arena capacity %d", capacity))
	}
	return &Arena{buf: make([]byte, capacity), alignment: alignment}
}

// AlignUp rounds size up to the next multiple of alignment.
func AlignUp(size, alignment int) int {
	return (size + alignment - 1) &^ (alignment - 1)
}

// Alloc reserves size bytes, rounded up to the arena alignment, and returns
// the span of the reservation. The memory is zeroed. Alloc panics if the arena
// does not have enough room left.
func (a *Arena) Alloc(size int) Span {
	if size < 0 {
		panic(fmt.Errorf("negative allocation size %d", size))
	}
	rounded := AlignUp(size, a.alignment)
	if rounded > len(a.buf)-a.off {
		panic(fmt.Errorf("%w: requested %d bytes, %d of %d used", ErrOutOfMemory, rounded, a.off, len(a.buf)))
	}
	s := Span{Off: a.off, Len: size}
	a.off += rounded
	a.allocs++
	return s
}

// Bytes returns the memory of a span. The returned slice aliases the arena.
func (a *Arena) Bytes(s Span) []byte {
	return a.buf[s.Off : s.Off+s.Len : s.Off+s.Len]
}

// Copy allocates len(data) bytes and copies data into them.
func (a *Arena) Copy(data []byte) Span {
	s := a.Alloc(len(data))
	copy(a.Bytes(s), data)
	return s
}

// Used returns the number of bytes consumed, including alignment padding.
func (a *Arena) Used() int { return a.off }

// Cap returns the capacity of the arena.
func (a *Arena) Cap() int { return len(a.buf) }

// Allocs returns the number of allocations made so far.
func (a *Arena) Allocs() int { return a.allocs }

// Alignment returns the allocation granularity.
func (a *Arena) Alignment() int { return a.alignment }

// Reset forgets all allocations, invalidating every Span handed out. It is
// only meant for starting a new session.
func (a *Arena) Reset() {
	clear(a.buf[:a.off])
	a.off = 0
	a.allocs = 0
}
