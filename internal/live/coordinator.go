package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/filingradar/filingradar/internal/domain"
	"github.com/filingradar/filingradar/internal/pipeline"
	"github.com/filingradar/filingradar/internal/poll"
	"github.com/filingradar/filingradar/pkg/utils"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// Status is the externally visible condition of the live channel.
type Status struct {
	State     State  `json:"state"`
	LastError string `json:"last_error,omitempty"`
}

const (
	DefaultBackoffMin = 1 * time.Second
	DefaultBackoffMax = 30 * time.Second

	maxRoomChars = 50
)

type Config struct {
	Dial       DialFunc
	Pipeline   *pipeline.Pipeline
	Dedup      *pipeline.DedupCache
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Coordinator owns the live connection lifecycle and the reconciled feed.
// A single goroutine started by Start drives dialing, reading and reconnect
// backoff; everything else synchronizes through the mutex.
type Coordinator struct {
	dial       DialFunc
	pipe       *pipeline.Pipeline
	dedup      *pipeline.DedupCache
	backoffMin time.Duration
	backoffMax time.Duration

	mu           sync.Mutex
	records      []domain.Announcement
	placeholders bool
	status       Status
	rooms        map[string]struct{}
	conn         Conn
	active       bool
	nextSub      int
	recSubs      map[int]chan domain.Announcement
	statusSubs   map[int]chan Status

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCoordinator(cfg Config) *Coordinator {
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = DefaultBackoffMin
	}
	if cfg.BackoffMax < cfg.BackoffMin {
		cfg.BackoffMax = DefaultBackoffMax
	}
	return &Coordinator{
		dial:       cfg.Dial,
		pipe:       cfg.Pipeline,
		dedup:      cfg.Dedup,
		backoffMin: cfg.BackoffMin,
		backoffMax: cfg.BackoffMax,
		status:     Status{State: StateDisconnected},
		rooms:      make(map[string]struct{}),
		recSubs:    make(map[int]chan domain.Announcement),
		statusSubs: make(map[int]chan Status),
		kick:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Start launches the connection loop. Call Close to stop it.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.active = true
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(ctx)
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	backoff := c.backoffMin
	for ctx.Err() == nil {
		c.setStatus(StateConnecting, "")

		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("live channel dial failed", "error", err, "retry_in", backoff)
			c.setStatus(StateError, err.Error())
			if !c.wait(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, c.backoffMax)
			continue
		}

		backoff = c.backoffMin
		c.onConnected(conn)

		err = c.readLoop(conn)
		conn.Close()
		c.dropConn(conn)
		if ctx.Err() != nil {
			return
		}

		slog.Warn("live channel dropped", "error", err, "retry_in", backoff)
		c.setStatus(StateError, err.Error())
		if !c.wait(ctx, backoff) {
			return
		}
		backoff = min(backoff*2, c.backoffMax)
	}
}

// wait sleeps for d, returning early on a manual reconnect kick. It reports
// false when the context was cancelled.
func (c *Coordinator) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-c.kick:
		return true
	case <-timer.C:
		return true
	}
}

func (c *Coordinator) onConnected(conn Conn) {
	c.mu.Lock()
	c.conn = conn
	// A fresh connection replays history, so forget what was seen on the
	// previous one rather than suppress the replay. Records still published
	// are re-seeded: their keys must never be admitted a second time, whether
	// the replay or the next poll cycle delivers them.
	c.dedup.Clear()
	for _, rec := range c.records {
		c.dedup.Add(rec)
	}
	c.status = Status{State: StateConnected}
	c.notifyStatusLocked()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.mu.Unlock()

	slog.Info("live channel connected", "rooms", len(rooms))
	for _, room := range rooms {
		if err := conn.WriteEvent(roomEvent(EventJoin, room)); err != nil {
			slog.Warn("failed to rejoin room", "room", room, "error", err)
		}
	}
}

func (c *Coordinator) dropConn(conn Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Coordinator) readLoop(conn Conn) error {
	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			return err
		}

		switch ev.Event {
		case EventNewAnnouncement:
			var payload domain.RawPayload
			if err := json.Unmarshal(ev.Data, &payload); err != nil {
				slog.Warn("discarding malformed live event", "error", err)
				continue
			}
			c.ingestLive(payload)
		default:
			slog.Debug("ignoring live event", "event", ev.Event)
		}
	}
}

func (c *Coordinator) ingestLive(payload domain.RawPayload) {
	rec := c.pipe.Process(payload)
	rec.ReceivedAt = time.Now().UnixMilli()
	rec.IsNew = true

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	if c.dedup.Seen(rec) {
		slog.Debug("suppressed duplicate announcement", "identity_key", rec.IdentityKey)
		return
	}
	c.dedup.Add(rec)

	c.clearPlaceholdersLocked()
	c.records = pipeline.MergeIncoming(c.records, rec)
	c.publishRecordLocked(rec)
}

// IngestPolled merges a successful poll batch into the feed.
func (c *Coordinator) IngestPolled(payloads []domain.RawPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	c.clearPlaceholdersLocked()

	for _, payload := range payloads {
		rec := c.pipe.Process(payload)
		if c.dedup.Seen(rec) {
			continue
		}
		c.dedup.Add(rec)
		c.records = append(c.records, rec)
		c.publishRecordLocked(rec)
	}
	pipeline.SortAnnouncements(c.records)
}

// PollFailed records the failure and, if the feed is empty, fills it with
// placeholder filings so consumers are never left with nothing.
func (c *Coordinator) PollFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	c.status.LastError = err.Error()
	c.notifyStatusLocked()

	if len(c.records) > 0 {
		return
	}
	for _, payload := range poll.PlaceholderFilings() {
		c.records = append(c.records, c.pipe.Process(payload))
	}
	pipeline.SortAnnouncements(c.records)
	c.placeholders = true
}

func (c *Coordinator) clearPlaceholdersLocked() {
	if c.placeholders {
		c.records = nil
		c.placeholders = false
	}
}

// Join subscribes the live channel to a room. The membership is remembered
// and replayed after every reconnect.
func (c *Coordinator) Join(room string) {
	room = sanitizeRoom(room)
	if room == "" {
		return
	}

	c.mu.Lock()
	c.rooms[room] = struct{}{}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.WriteEvent(roomEvent(EventJoin, room)); err != nil {
			slog.Warn("failed to join room", "room", room, "error", err)
		}
	}
}

func (c *Coordinator) Leave(room string) {
	room = sanitizeRoom(room)
	if room == "" {
		return
	}

	c.mu.Lock()
	delete(c.rooms, room)
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.WriteEvent(roomEvent(EventLeave, room)); err != nil {
			slog.Warn("failed to leave room", "room", room, "error", err)
		}
	}
}

func sanitizeRoom(room string) string {
	return utils.TruncateRunes(strings.TrimSpace(room), maxRoomChars)
}

// Reconnect skips any pending backoff wait. It is a no-op while connected.
func (c *Coordinator) Reconnect() {
	c.mu.Lock()
	connected := c.status.State == StateConnected
	c.mu.Unlock()

	if connected {
		return
	}
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Close stops the coordinator and waits for the connection loop to exit.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.active = false
	conn := c.conn
	cancel := c.cancel
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		conn.Close()
	}
	<-c.done

	c.mu.Lock()
	c.status = Status{State: StateDisconnected}
	c.mu.Unlock()
}

// Snapshot returns a copy of the current feed, newest first.
func (c *Coordinator) Snapshot() []domain.Announcement {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Announcement, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SubscribeRecords returns a channel receiving every freshly admitted
// announcement, plus an unsubscribe func. Slow receivers drop events rather
// than stall ingestion.
func (c *Coordinator) SubscribeRecords(buffer int) (<-chan domain.Announcement, func()) {
	ch := make(chan domain.Announcement, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.recSubs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.recSubs, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) SubscribeStatus(buffer int) (<-chan Status, func()) {
	ch := make(chan Status, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.statusSubs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.statusSubs, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) setStatus(state State, lastError string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = Status{State: state, LastError: lastError}
	c.notifyStatusLocked()
}

func (c *Coordinator) notifyStatusLocked() {
	for _, ch := range c.statusSubs {
		select {
		case ch <- c.status:
		default:
		}
	}
}

func (c *Coordinator) publishRecordLocked(rec domain.Announcement) {
	for _, ch := range c.recSubs {
		select {
		case ch <- rec:
		default:
		}
	}
}
