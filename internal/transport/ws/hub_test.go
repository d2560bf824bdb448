package ws

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chessroom/internal/model"
	"chessroom/internal/testutil"
)

// testClient builds a Client without an underlying connection; its send
// channel stands in for the write pump
func testClient(id string) *Client {
	return &Client{
		id:          model.ConnID(id),
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
		logger:      testutil.NopLogger(),
	}
}

// receive pops one queued frame, or fails the test after a timeout
func receive(s *suite.Suite, c *Client) []byte {
	select {
	case data := <-c.send:
		return data
	case <-time.After(time.Second):
		s.Require().FailNow("no frame received")
		return nil
	}
}

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub("room-1", testutil.NopLogger())
	go s.hub.Run()
}

func (s *HubSuite) TearDownTest() {
	s.hub.Close()
}

func (s *HubSuite) TestBroadcastReachesAllClients() {
	c1, c2 := testClient("conn-1"), testClient("conn-2")
	s.hub.Register(c1)
	s.hub.Register(c2)
	s.Eventually(func() bool { return s.hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	s.hub.Broadcast("", []byte("hello"))

	s.Equal([]byte("hello"), receive(&s.Suite, c1))
	s.Equal([]byte("hello"), receive(&s.Suite, c2))
}

func (s *HubSuite) TestBroadcastExceptSkipsSender() {
	c1, c2 := testClient("conn-1"), testClient("conn-2")
	s.hub.Register(c1)
	s.hub.Register(c2)
	s.Eventually(func() bool { return s.hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	s.hub.Broadcast(c1.id, []byte("move"))

	s.Equal([]byte("move"), receive(&s.Suite, c2))
	select {
	case data := <-c1.send:
		s.Failf("sender received its own broadcast", "frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *HubSuite) TestBroadcastOrderPreserved() {
	c1 := testClient("conn-1")
	s.hub.Register(c1)
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 20; i++ {
		s.hub.Broadcast("", []byte(fmt.Sprintf("frame-%d", i)))
	}
	for i := 0; i < 20; i++ {
		s.Equal(fmt.Sprintf("frame-%d", i), string(receive(&s.Suite, c1)))
	}
}

func (s *HubSuite) TestUnregisteredClientStopsReceiving() {
	c1, c2 := testClient("conn-1"), testClient("conn-2")
	s.hub.Register(c1)
	s.hub.Register(c2)
	s.Eventually(func() bool { return s.hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	s.hub.Unregister(c1)
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.hub.Broadcast("", []byte("after"))
	s.Equal([]byte("after"), receive(&s.Suite, c2))
	select {
	case data := <-c1.send:
		s.Failf("unregistered client received a broadcast", "frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *HubSuite) TestClosedClientDropsFrames() {
	c1 := testClient("conn-1")
	s.hub.Register(c1)
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	c1.close()
	c1.close() // idempotent

	// The hub skips clients that refuse the frame; no panic, no delivery
	s.hub.Broadcast("", []byte("late"))
	s.Eventually(func() bool {
		_, ok := <-c1.send
		return !ok
	}, time.Second, 5*time.Millisecond)
}

type HubManagerSuite struct {
	suite.Suite
	manager *HubManager
}

func TestHubManagerSuite(t *testing.T) {
	suite.Run(t, new(HubManagerSuite))
}

func (s *HubManagerSuite) SetupTest() {
	s.manager = NewHubManager(testutil.NopLogger())
}

func (s *HubManagerSuite) TestGetOrCreateHubReturnsSameHub() {
	h1 := s.manager.GetOrCreateHub("room-1")
	h2 := s.manager.GetOrCreateHub("room-1")
	s.Same(h1, h2)
	h1.Close()
}

func (s *HubManagerSuite) TestGetHubMissing() {
	s.Nil(s.manager.GetHub("room-1"))
}

func (s *HubManagerSuite) TestRemoveHub() {
	h := s.manager.GetOrCreateHub("room-1")
	c := testClient("conn-1")
	h.Register(c)
	s.Eventually(func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.manager.RemoveHub("room-1")
	s.Nil(s.manager.GetHub("room-1"))
	s.Eventually(func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *HubManagerSuite) TestRemoveHubIdempotent() {
	s.manager.GetOrCreateHub("room-1")
	s.manager.RemoveHub("room-1")
	s.manager.RemoveHub("room-1")
	s.Nil(s.manager.GetHub("room-1"))
}
