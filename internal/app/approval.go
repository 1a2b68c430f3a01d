package app

import "sync"

// ApprovalStore holds the moderation flag per review id. State lives for the
// process's lifetime only and is independent of the review cache: approval is
// applied as a read-time overlay, never written into cached objects. Unknown
// ids are unapproved.
type ApprovalStore struct {
	mu sync.RWMutex
	m  map[string]bool
}

func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{m: make(map[string]bool)}
}

func (s *ApprovalStore) Set(id string, approved bool) {
	s.mu.Lock()
	s.m[id] = approved
	s.mu.Unlock()
}

func (s *ApprovalStore) Get(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[id]
}

func (s *ApprovalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
}
