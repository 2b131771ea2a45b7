package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

// stubClient stands in for a paho client; only the methods RealPublisher
// calls while running are implemented.
type stubClient struct {
	paho.Client

	mu        sync.Mutex
	open      bool
	published []bufferedMsg
}

func (c *stubClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *stubClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, bufferedMsg{topic: topic, payload: payload.([]byte), qos: qos, retained: retained})
	return doneToken{}
}

func (c *stubClient) messages() []bufferedMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bufferedMsg(nil), c.published...)
}

func newStubPublisher() (*RealPublisher, *stubClient) {
	c := &stubClient{}
	return &RealPublisher{client: c, buffer: newRingBuffer(bufferCapacity)}, c
}

func TestRealPublisherBuffersUntilConnect(t *testing.T) {
	p, c := newStubPublisher()

	if err := p.publish(Topic, qosKey, false, []byte("a")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(c.messages()) != 0 {
		t.Fatal("nothing should reach a closed connection")
	}

	c.setOpen(true)
	p.onConnect(c)

	got := c.messages()
	if len(got) != 1 || string(got[0].payload) != "a" {
		t.Errorf("replayed: got %+v", got)
	}
}

func TestRealPublisherNoMessageStrandedAcrossConnect(t *testing.T) {
	p, c := newStubPublisher()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.publish(Topic, qosKey, false, []byte{byte(i)})
		}(i)
	}
	// paho marks the connection open, then runs the connect handler.
	c.setOpen(true)
	p.onConnect(c)
	wg.Wait()

	p.mu.Lock()
	left := p.buffer.len()
	p.mu.Unlock()
	if left != 0 {
		t.Errorf("%d messages left in the offline buffer", left)
	}
	if got := len(c.messages()); got != n {
		t.Errorf("delivered: got %d, want %d", got, n)
	}
}

func TestRealPublisherReconnectAnnounces(t *testing.T) {
	p, c := newStubPublisher()
	c.setOpen(true)

	p.onConnect(c)
	if len(c.messages()) != 0 {
		t.Fatal("first connect should not announce RECONNECTED")
	}

	p.onConnect(c)
	got := c.messages()
	if len(got) != 1 {
		t.Fatalf("expected RECONNECTED, got %+v", got)
	}
	m := got[0]
	if m.topic != TopicSystem || !m.retained || m.qos != qosSystem {
		t.Errorf("message: got %+v", m)
	}
	var parsed map[string]map[string]string
	if err := json.Unmarshal(m.payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed["system"]["event"] != EventReconnected {
		t.Errorf("event: got %q", parsed["system"]["event"])
	}
}
