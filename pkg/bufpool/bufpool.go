// Package bufpool provides reusable byte slices for transfer I/O.
//
// Every UPLOAD and DOWNLOAD moves its payload through fixed-size chunks; a
// busy server churns through thousands of them, so chunks come from a
// sync.Pool instead of being allocated per transfer. Two size classes cover
// the protocol's needs: line buffers for control messages and chunk buffers
// for payload copies. Requests above the chunk class are allocated directly
// and never pooled, so an occasional oversized request cannot pin memory.
//
// All operations are safe for concurrent use across connection goroutines.
package bufpool

import "sync"

// Default buffer size classes.
const (
	// DefaultLineSize covers command lines and response lines (4KB).
	DefaultLineSize = 4 << 10

	// DefaultChunkSize is the transfer chunk size (16KB), matching the
	// framing protocol's flush granularity.
	DefaultChunkSize = 16 << 10
)

// Pool manages byte slices organized by size class.
type Pool struct {
	line      sync.Pool
	chunk     sync.Pool
	lineSize  int
	chunkSize int
}

// New creates a buffer pool. Non-positive sizes fall back to the defaults.
func New(lineSize, chunkSize int) *Pool {
	if lineSize <= 0 {
		lineSize = DefaultLineSize
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	p := &Pool{lineSize: lineSize, chunkSize: chunkSize}
	p.line.New = func() any {
		buf := make([]byte, p.lineSize)
		return &buf
	}
	p.chunk.New = func() any {
		buf := make([]byte, p.chunkSize)
		return &buf
	}
	return p
}

// Get returns a byte slice of exactly the requested length, backed by a
// pooled buffer when the request fits a size class. The caller must call
// Put when done; buffers above the chunk class are allocated directly and
// silently dropped by Put.
func (p *Pool) Get(size int) []byte {
	var bufPtr *[]byte
	switch {
	case size <= p.lineSize:
		bufPtr = p.line.Get().(*[]byte)
	case size <= p.chunkSize:
		bufPtr = p.chunk.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*bufPtr)[:size]
}

// Put returns a buffer to its pool. The buffer must not be used after Put.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	full := buf[:cap(buf)]
	switch cap(buf) {
	case p.lineSize:
		p.line.Put(&full)
	case p.chunkSize:
		p.chunk.Put(&full)
	}
}

// ChunkSize returns the configured transfer chunk size.
func (p *Pool) ChunkSize() int { return p.chunkSize }

// defaultPool serves package-level Get/Put.
var defaultPool = New(0, 0)

// Get returns a buffer from the default pool.
func Get(size int) []byte { return defaultPool.Get(size) }

// Put returns a buffer to the default pool.
func Put(buf []byte) { defaultPool.Put(buf) }
