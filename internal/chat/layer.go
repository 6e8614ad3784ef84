package chat

import "context"

// Layer is the channel layer rooms are built on: group membership plus
// fan-out of a payload to every member of a group.
type Layer interface {
	GroupAdd(group string, m Member)
	GroupDiscard(group string, m Member)
	GroupSend(ctx context.Context, group string, payload []byte) error
	Close() error
}

// MemoryLayer fans out inside the current process only.
type MemoryLayer struct {
	reg *Registry
}

func NewMemoryLayer() *MemoryLayer {
	return &MemoryLayer{reg: NewRegistry()}
}

func (l *MemoryLayer) GroupAdd(group string, m Member) { l.reg.Add(group, m) }

func (l *MemoryLayer) GroupDiscard(group string, m Member) { l.reg.Discard(group, m) }

func (l *MemoryLayer) GroupSend(_ context.Context, group string, payload []byte) error {
	l.reg.Broadcast(group, payload)
	return nil
}

func (l *MemoryLayer) Close() error { return nil }
