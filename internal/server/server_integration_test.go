package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/app"
	"github.com/ayusman/tactipad/internal/gesture"
	"github.com/ayusman/tactipad/internal/store"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	rec, err := s.StartSession(&store.Session{Sensor: "mock", Injector: "log"}, false)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	now := time.Now()
	events := []action.Event{
		{Kind: action.EventPress, Key: "up", Label: gesture.Forward, At: now},
		{Kind: action.EventRelease, Key: "up", Label: gesture.None, Reason: action.ReasonIdle, At: now.Add(10 * time.Second)},
	}
	if err := rec.RecordCycle(gesture.Sample{}, gesture.Forward, events); err != nil {
		t.Fatalf("RecordCycle() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{Store: s}))
	defer ts.Close()
	client := ts.Client()

	// 1. List sessions
	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != rec.SessionID() {
		t.Fatalf("sessions = %+v", listed.Sessions)
	}

	// 2. Events
	resp, err = client.Get(ts.URL + "/api/sessions/" + rec.SessionID() + "/events")
	if err != nil {
		t.Fatalf("GET events error = %v", err)
	}
	var evs struct {
		Events []store.Event `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&evs)
	resp.Body.Close()
	if len(evs.Events) != 2 || evs.Events[1].Reason != action.ReasonIdle {
		t.Fatalf("events = %+v", evs.Events)
	}

	// 3. Delete and verify
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+rec.SessionID(), nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp, _ = client.Get(ts.URL + "/api/sessions/" + rec.SessionID() + "/events")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestLiveHandler_Broadcast(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	live := NewLiveHandler(nil)
	ts := httptest.NewServer(New(Config{Live: live}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for live.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	live.Publish(app.Status{Cycle: 42, Label: gesture.Press3, Enabled: true})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var got struct {
		Cycle int    `json:"cycle"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Cycle != 42 || got.Label != "press3" {
		t.Errorf("message = %s", msg)
	}

	live.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("after Close, ReadMessage() error = %v, want going-away close", err)
	}
}

func TestServer_ListenAndServe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- New(Config{}).ListenAndServe(ctx, addr)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}
