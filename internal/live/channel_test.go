package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialer_RoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		// Expect a join, answer with an announcement.
		var ev Event
		require.NoError(t, ws.ReadJSON(&ev))
		require.Equal(t, EventJoin, ev.Event)

		var room roomPayload
		require.NoError(t, json.Unmarshal(ev.Data, &room))
		require.Equal(t, "TICKER1", room.Room)

		data, _ := json.Marshal(map[string]string{"corp_id": "c-1"})
		require.NoError(t, ws.WriteJSON(Event{Event: EventNewAnnouncement, Data: data}))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	dial := Dialer(wsURL, time.Second)

	conn, err := dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteEvent(roomEvent(EventJoin, "TICKER1")))

	ev, err := conn.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventNewAnnouncement, ev.Event)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, "c-1", payload["corp_id"])
}

func TestDialer_RefusesClosedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	dial := Dialer(wsURL, 100*time.Millisecond)

	_, err := dial(context.Background())
	assert.Error(t, err)
}
