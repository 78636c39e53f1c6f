package token

import (
	"sync"
)

// tokenPool reuses Token structs to avoid repeated allocations inside generators.
var tokenPool = sync.Pool{
	New: func() any {
		return &Token{
			Header: make(map[string]any, 4),
			Claims: make(map[string]any, 8),
		}
	},
}

func acquireToken() *Token {
	t := tokenPool.Get().(*Token)
	resetToken(t)
	return t
}

func releaseToken(t *Token) {
	if t == nil {
		return
	}
	resetToken(t)
	tokenPool.Put(t)
}

func resetToken(t *Token) {
	for k := range t.Header {
		delete(t.Header, k)
	}
	for k := range t.Claims {
		delete(t.Claims, k)
	}
}

// bytePool holds reusable byte slices for compact-serialization assembly.
var bytePool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

type serializedBuffer struct {
	ptr *[]byte
	buf []byte
}

func acquireBuffer() *serializedBuffer {
	ptr := bytePool.Get().(*[]byte)
	return &serializedBuffer{ptr: ptr, buf: (*ptr)[:0]}
}

func (s *serializedBuffer) Bytes() []byte { return s.buf }

// Release zeros the buffer contents and returns it to the pool. Signing
// inputs pass through here, so stale material never lingers in the pool.
func (s *serializedBuffer) Release() {
	if s == nil || s.ptr == nil {
		return
	}
	buf := s.buf
	for i := range buf {
		buf[i] = 0
	}
	*s.ptr = buf[:0]
	bytePool.Put(s.ptr)
	s.ptr = nil
}
