package chat

import (
	"strconv"
	"sync"
)

// Member is one live connection that can join groups.
type Member interface {
	ID() string
	// Deliver queues payload without blocking; false means the buffer is full.
	Deliver(payload []byte) bool
	Close()
}

// GroupName returns the group key of a project room.
func GroupName(roomID uint) string {
	return "chat_" + strconv.FormatUint(uint64(roomID), 10)
}

// Registry tracks group membership in this process.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[Member]struct{}
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]map[Member]struct{})}
}

func (r *Registry) Add(group string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		members = make(map[Member]struct{})
		r.groups[group] = members
	}
	members[m] = struct{}{}
}

// Discard removes m from group. Removing an absent member is a no-op.
func (r *Registry) Discard(group string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, m)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// Broadcast queues payload on every member of group and returns how many
// accepted it. Members whose buffer is full are dropped and closed.
func (r *Registry) Broadcast(group string, payload []byte) int {
	var (
		delivered int
		slow      []Member
	)

	r.mu.RLock()
	for m := range r.groups[group] {
		if m.Deliver(payload) {
			delivered++
		} else {
			slow = append(slow, m)
		}
	}
	r.mu.RUnlock()

	for _, m := range slow {
		r.Discard(group, m)
		m.Close()
	}
	return delivered
}

// Size returns the number of members currently in group.
func (r *Registry) Size(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}
