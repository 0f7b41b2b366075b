package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func testClient(userID, role string) *Client {
	return &Client{UserID: userID, UserRole: role, send: make(chan []byte, 4)}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no message for %s", c.UserID)
	}
	return Event{}
}

func waitConnected(t *testing.T, h *Hub, userID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !h.IsUserConnected(userID) {
		if time.Now().After(deadline) {
			t.Fatalf("%s never registered", userID)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHubNotifyUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	driver := testClient("driver-1", "driver")
	other := testClient("driver-2", "driver")
	h.register <- driver
	h.register <- other
	waitConnected(t, h, "driver-1")
	waitConnected(t, h, "driver-2")

	h.Notify("driver-1", EventMoveAssigned, map[string]string{"move_id": "m1"})

	ev := receive(t, driver)
	if ev.Type != EventMoveAssigned {
		t.Fatalf("type = %q", ev.Type)
	}
	select {
	case <-other.send:
		t.Fatal("message leaked to another user")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubNotifyRole(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	admin1 := testClient("admin-1", "admin")
	admin2 := testClient("admin-2", "admin")
	driver := testClient("driver-1", "driver")
	for _, c := range []*Client{admin1, admin2, driver} {
		h.register <- c
		waitConnected(t, h, c.UserID)
	}

	h.NotifyRole("admin", EventBulkMoveCompleted, map[string]int{"created": 3})

	for _, c := range []*Client{admin1, admin2} {
		if ev := receive(t, c); ev.Type != EventBulkMoveCompleted {
			t.Fatalf("%s got %q", c.UserID, ev.Type)
		}
	}
	if len(driver.send) != 0 {
		t.Fatal("driver should not receive admin broadcast")
	}
}

func TestHubUnregisterIgnoresReplacedClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	first := testClient("admin-1", "admin")
	second := testClient("admin-1", "admin")
	h.register <- first
	h.register <- second
	h.unregister <- first
	waitConnected(t, h, "admin-1")

	h.Notify("admin-1", EventRelocationPlanUpdated, nil)
	if ev := receive(t, second); ev.Type != EventRelocationPlanUpdated {
		t.Fatalf("type = %q", ev.Type)
	}
	if h.GetClientCount() != 1 {
		t.Fatalf("clients = %d", h.GetClientCount())
	}
}

func TestHubNotifyAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	sent := make(chan struct{})
	go func() {
		// more than the broadcast buffer holds
		for i := 0; i < 300; i++ {
			h.Notify("driver-1", EventMoveAssigned, i)
		}
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked after the hub stopped")
	}
}
