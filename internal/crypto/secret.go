package crypto

import "sync"

// Secret owns a sensitive byte buffer and wipes it on Destroy
type Secret struct {
	mu  sync.Mutex
	buf []byte
}

// NewSecret takes ownership of b. The caller must not use b afterwards.
func NewSecret(b []byte) *Secret {
	return &Secret{buf: b}
}

// Use calls fn with the secret bytes. fn must not retain the slice.
// Returns ErrDestroyed once the secret has been wiped.
func (s *Secret) Use(fn func([]byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return ErrDestroyed
	}
	return fn(s.buf)
}

// Len returns the length of the secret, 0 after Destroy
func (s *Secret) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Destroy zeroes and releases the buffer. Safe to call more than once.
func (s *Secret) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ClearBytes(s.buf)
	s.buf = nil
}
