package srv

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/xiphoidxray/fruitbox-fsg/shared/protocol"
)

// client is one live websocket connection and the player identity bound to
// it. A new connection is always a new identity; there is no reconnect.
type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
	name string
	room *Room
}

// Config is the coordinator's tunable surface. Zero values fall back to the
// protocol defaults so tests can construct partial configs.
type Config struct {
	RoundSecs       int
	MaxPlayers      int
	Rows            int
	Cols            int
	LeaderboardSize int
	DataDir         string
}

func (cfg Config) withDefaults() Config {
	if cfg.RoundSecs <= 0 {
		cfg.RoundSecs = protocol.DefaultRoundSecs
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = protocol.DefaultMaxPlayers
	}
	if cfg.Rows <= 0 {
		cfg.Rows = protocol.Rows
	}
	if cfg.Cols <= 0 {
		cfg.Cols = protocol.Cols
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 10
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg
}

// Hub owns every live connection and every room. Its mutex guards only the
// two maps and is never held across a room mutation or a network send;
// each Room serializes its own state behind its own lock, so independent
// rooms proceed fully in parallel.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	rooms   map[string]*Room

	cfg         Config
	clock       clockwork.Clock
	leaderboard *Leaderboard
}

func NewHub(cfg Config, clock clockwork.Clock) *Hub {
	cfg = cfg.withDefaults()
	h := &Hub{
		clients: make(map[*client]struct{}),
		rooms:   make(map[string]*Room),
		cfg:     cfg,
		clock:   clock,
	}
	h.leaderboard = NewLeaderboard(cfg.LeaderboardSize, filepath.Join(cfg.DataDir, "top10.json"))
	if err := h.leaderboard.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load persisted leaderboard, starting empty")
	}
	return h
}

// HandleWS takes ownership of an upgraded connection: registers it, starts
// the write pump, greets the client with the global top scores and then
// reads until the connection dies.
func (h *Hub) HandleWS(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writer()
	sendJSON(c, "Top10Scores", protocol.Top10Scores{Scores: h.leaderboard.Top()})
	c.reader(h)
}

func (h *Hub) removeRoom(id string) {
	h.mu.Lock()
	delete(h.rooms, id)
	h.mu.Unlock()
}

// createRoom allocates a collision-checked room code and registers the room
// atomically with respect to concurrent creations.
func (h *Hub) createRoom() (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 0; i < maxIDAttempts; i++ {
		id := randomRoomID()
		if _, taken := h.rooms[id]; taken {
			continue
		}
		r := NewRoom(id, h)
		h.rooms[id] = r
		return r, nil
	}
	return nil, ErrIDsExhausted
}

func (h *Hub) getRoom(id string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[NormalizeRoomID(id)]
	return r, ok
}

// reader is the per-connection dispatch loop: decode envelope, route to the
// room, reply Error to this sender only on anything malformed. The deferred
// cleanup synthesizes the Leave for abrupt disconnects, exactly once.
func (c *client) reader(h *Hub) {
	defer func() {
		c.conn.Close()
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		if c.room != nil {
			c.room.Leave(c)
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Str("player", c.id).Err(err).Msg("connection closed")
			return
		}

		var env protocol.MsgEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendErr(c, "", "invalid JSON: "+err.Error())
			continue
		}

		switch env.Type {
		case "CreateRoom":
			var msg protocol.CreateRoom
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				h.sendErr(c, "", "invalid CreateRoom payload")
				continue
			}
			h.handleCreateRoom(c, msg)

		case "JoinRoom":
			var msg protocol.JoinRoom
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				h.sendErr(c, "", "invalid JoinRoom payload")
				continue
			}
			h.handleJoinRoom(c, msg)

		case "ReadyUp":
			var msg protocol.ReadyUp
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				h.sendErr(c, "", "invalid ReadyUp payload")
				continue
			}
			if c.room == nil {
				h.sendErr(c, "", "not in a room")
				continue
			}
			c.room.ReadyToggle(c, msg.Ready)

		case "StartGame":
			if c.room == nil {
				h.sendErr(c, "", "not in a room")
				continue
			}
			if err := c.room.Start(c); err != nil {
				h.sendErr(c, c.room.id, "only the owner can start")
			}

		case "ScoreUpdate":
			var msg protocol.ScoreUpdate
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				h.sendErr(c, "", "invalid ScoreUpdate payload")
				continue
			}
			if c.room == nil {
				h.sendErr(c, "", "not in a room")
				continue
			}
			if err := c.room.ReportScore(c, msg.ClearedCount); err != nil {
				h.sendErr(c, c.room.id, "cleared_count must be non-negative")
			}

		case "ChatMessage":
			var msg protocol.ChatMessage
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				h.sendErr(c, "", "invalid ChatMessage payload")
				continue
			}
			if c.room == nil {
				h.sendErr(c, "", "not in a room")
				continue
			}
			if err := c.room.Chat(c, msg.Message); err != nil {
				h.sendErr(c, c.room.id, "empty chat message")
			}

		default:
			h.sendErr(c, "", "unknown message type: "+env.Type)
		}
	}
}

func (h *Hub) handleCreateRoom(c *client, msg protocol.CreateRoom) {
	if c.room != nil {
		h.sendErr(c, c.room.id, "already in a room")
		return
	}
	if err := c.bindIdentity(msg.Player); err != nil {
		h.sendErr(c, "", "display name required")
		return
	}
	room, err := h.createRoom()
	if err != nil {
		log.Error().Err(err).Msg("room id allocation failed")
		h.sendErr(c, "", "could not create room")
		return
	}
	sendJSON(c, "RoomCreated", protocol.RoomCreated{RoomID: room.id})
	if err := room.Join(c, msg.Player.Ready); err != nil {
		// Fresh room, only possible if something is badly wrong.
		h.sendErr(c, room.id, err.Error())
	}
}

func (h *Hub) handleJoinRoom(c *client, msg protocol.JoinRoom) {
	if c.room != nil {
		h.sendErr(c, c.room.id, "already in a room")
		return
	}
	if err := c.bindIdentity(msg.Player); err != nil {
		h.sendErr(c, "", "display name required")
		return
	}
	room, ok := h.getRoom(msg.RoomID)
	if !ok {
		h.sendErr(c, msg.RoomID, "room not found")
		return
	}
	switch err := room.Join(c, msg.Player.Ready); err {
	case nil:
	case ErrRoomFull:
		h.sendErr(c, room.id, "room full")
	case ErrAlreadyInRoom:
		h.sendErr(c, room.id, "already in room")
	case ErrRoomNotFound:
		// Lost the race against the room emptying out.
		h.sendErr(c, msg.RoomID, "room not found")
	default:
		h.sendErr(c, room.id, err.Error())
	}
}

// bindIdentity attaches the wire Player to this connection: trimmed,
// length-capped name; a server-minted id when the client did not bring one.
func (c *client) bindIdentity(p protocol.Player) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrNameRequired
	}
	if runes := []rune(name); len(runes) > protocol.MaxNameLen {
		name = string(runes[:protocol.MaxNameLen])
	}
	c.name = name
	if p.PlayerID != "" {
		c.id = p.PlayerID
	} else if c.id == "" {
		c.id = protocol.NewPlayerID()
	}
	return nil
}

func (h *Hub) sendErr(c *client, roomID, msg string) {
	sendJSON(c, "Error", protocol.ErrorMsg{RoomID: roomID, Msg: msg})
}

func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// sendJSON queues an envelope for the write pump without ever blocking; a
// client whose buffer is full misses the message instead of stalling the
// room that produced it.
func sendJSON(c *client, typ string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("type", typ).Msg("marshal failed")
		return
	}
	out, _ := json.Marshal(protocol.MsgEnvelope{Type: typ, Data: b})
	select {
	case c.send <- out:
	default:
	}
}
