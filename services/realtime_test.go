package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func hubServer(t *testing.T, hub *BoardHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Subscribe(conn, r.URL.Query().Get("board"))
	}))
}

func dialBoard(t *testing.T, server *httptest.Server, boardID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?board=" + boardID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForWatchers(t *testing.T, hub *BoardHub, boardID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.WatcherCount(boardID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("board %s watcher count never reached %d", boardID, want)
}

func TestBoardHubBroadcastsToBoardWatchers(t *testing.T) {
	hub := NewBoardHub()
	server := hubServer(t, hub)
	defer server.Close()

	conn := dialBoard(t, server, "b1")
	defer conn.Close()
	waitForWatchers(t, hub, "b1", 1)

	hub.NotifyBoardChanged("b1", 42)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event BoardEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.Type != "board-updated" || event.BoardID != "b1" || event.UserID != 42 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestBoardHubIsolatesBoards(t *testing.T) {
	hub := NewBoardHub()
	server := hubServer(t, hub)
	defer server.Close()

	other := dialBoard(t, server, "b2")
	defer other.Close()
	waitForWatchers(t, hub, "b2", 1)

	hub.NotifyBoardChanged("b1", 1)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatalf("watcher of b2 received an event for b1")
	}
}

func TestBoardHubUnsubscribeOnClose(t *testing.T) {
	hub := NewBoardHub()
	server := hubServer(t, hub)
	defer server.Close()

	conn := dialBoard(t, server, "b1")
	waitForWatchers(t, hub, "b1", 1)

	conn.Close()
	waitForWatchers(t, hub, "b1", 0)

	// Broadcasting to a board with no watchers must not panic.
	hub.NotifyBoardChanged("b1", 1)
}
