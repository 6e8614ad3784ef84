package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMember struct {
	id   string
	full bool

	mu       sync.Mutex
	received [][]byte
	closed   int
}

func (m *fakeMember) ID() string { return m.id }

func (m *fakeMember) Deliver(payload []byte) bool {
	if m.full {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, payload)
	return true
}

func (m *fakeMember) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

func (m *fakeMember) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.received))
	for _, p := range m.received {
		out = append(out, string(p))
	}
	return out
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "chat_7", GroupName(7))
	assert.Equal(t, "chat_123", GroupName(123))
}

func TestRegistry_BroadcastScopedToGroup(t *testing.T) {
	reg := NewRegistry()
	a := &fakeMember{id: "a"}
	b := &fakeMember{id: "b"}
	c := &fakeMember{id: "c"}
	reg.Add("chat_7", a)
	reg.Add("chat_7", b)
	reg.Add("chat_8", c)

	n := reg.Broadcast("chat_7", []byte("hello"))

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"hello"}, a.messages())
	assert.Equal(t, []string{"hello"}, b.messages())
	assert.Empty(t, c.messages())
}

func TestRegistry_DiscardIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a := &fakeMember{id: "a"}
	reg.Add("chat_7", a)

	reg.Discard("chat_7", a)
	reg.Discard("chat_7", a)
	reg.Discard("chat_9", a)

	assert.Equal(t, 0, reg.Size("chat_7"))
	assert.Equal(t, 0, reg.Broadcast("chat_7", []byte("x")))
	assert.Empty(t, a.messages())
}

func TestRegistry_SlowMemberDropped(t *testing.T) {
	reg := NewRegistry()
	ok := &fakeMember{id: "ok"}
	slow := &fakeMember{id: "slow", full: true}
	reg.Add("chat_1", ok)
	reg.Add("chat_1", slow)

	n := reg.Broadcast("chat_1", []byte("x"))

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reg.Size("chat_1"))
	assert.Equal(t, 1, slow.closed)
	assert.Equal(t, 0, ok.closed)
}

func TestMemoryLayer_GroupSend(t *testing.T) {
	layer := NewMemoryLayer()
	a := &fakeMember{id: "a"}
	layer.GroupAdd("chat_3", a)

	require.NoError(t, layer.GroupSend(context.Background(), "chat_3", []byte("one")))
	layer.GroupDiscard("chat_3", a)
	require.NoError(t, layer.GroupSend(context.Background(), "chat_3", []byte("two")))

	assert.Equal(t, []string{"one"}, a.messages())
	assert.NoError(t, layer.Close())
}
