package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records written frames; an optional error fails every write.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
	closed bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestHubAddRemoveSession(t *testing.T) {
	h := NewHub()
	s := NewSession(&fakeConn{})

	h.AddSession(s)
	assert.Equal(t, 1, h.SessionCount())
	require.Len(t, h.Sessions(), 1)

	h.RemoveSession(s)
	assert.Equal(t, 0, h.SessionCount())
	assert.Empty(t, h.Sessions())
}

func TestHubSubscribeUnsubscribe(t *testing.T) {
	h := NewHub()
	a := NewSession(&fakeConn{})
	b := NewSession(&fakeConn{})
	h.AddSession(a)
	h.AddSession(b)

	h.Subscribe(a, "m1")
	h.Subscribe(b, "m1")
	h.Subscribe(a, "m2")

	assert.Len(t, h.SubscribersOf("m1"), 2)
	assert.Len(t, h.SubscribersOf("m2"), 1)

	h.Unsubscribe(a, "m1")
	subs := h.SubscribersOf("m1")
	require.Len(t, subs, 1)
	assert.Equal(t, b.ID(), subs[0].ID())
}

func TestHubSubscribersOfNeverNil(t *testing.T) {
	h := NewHub()
	subs := h.SubscribersOf("unknown")
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestHubRemoveSessionPurgesSubscriptions(t *testing.T) {
	h := NewHub()
	a := NewSession(&fakeConn{})
	b := NewSession(&fakeConn{})
	h.AddSession(a)
	h.AddSession(b)
	h.Subscribe(a, "m1")
	h.Subscribe(a, "m2")
	h.Subscribe(b, "m1")

	h.RemoveSession(a)

	subs := h.SubscribersOf("m1")
	require.Len(t, subs, 1)
	assert.Equal(t, b.ID(), subs[0].ID())
	assert.Empty(t, h.SubscribersOf("m2"))
}

func TestHubDuplicateSubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	a := NewSession(&fakeConn{})
	h.AddSession(a)

	h.Subscribe(a, "m1")
	h.Subscribe(a, "m1")

	assert.Len(t, h.SubscribersOf("m1"), 1)
}

func TestSessionSendWritesTextFrame(t *testing.T) {
	conn := &fakeConn{}
	s := NewSession(conn)

	require.NoError(t, s.Send([]byte(`{"hello":"world"}`)))
	require.Equal(t, 1, conn.frameCount())
	assert.JSONEq(t, `{"hello":"world"}`, string(conn.frames[0]))
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := NewSession(&fakeConn{})
	b := NewSession(&fakeConn{})
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestHubConcurrentMutation(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := NewSession(&fakeConn{})
				h.AddSession(s)
				h.Subscribe(s, "m1")
				h.SubscribersOf("m1")
				h.Sessions()
				h.Unsubscribe(s, "m1")
				h.RemoveSession(s)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.SessionCount())
	assert.Empty(t, h.SubscribersOf("m1"))
}
