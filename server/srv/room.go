package srv

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiphoidxray/fruitbox-fsg/shared/protocol"
)

type RoomPhase int

const (
	PhaseLobby RoomPhase = iota
	PhaseInProgress
)

const (
	maxChatLen     = 200
	chatHistoryLen = 50
)

type chatLine struct {
	playerID string
	name     string
	text     string
}

// Room is one multiplayer session: player set, lifecycle phase, board,
// countdown and per-round score ledger. All mutation goes through r.mu;
// broadcast payloads are snapshotted under the lock and delivered after it
// is released so a slow connection can never stall the room.
type Room struct {
	id  string
	hub *Hub

	mu        sync.Mutex
	closed    bool // set once the last player leaves; joins bounce after that
	phase     RoomPhase
	ownerID   string
	players   []*client // join order, owner succession takes the oldest survivor
	ready     map[string]bool
	scores    map[string]int
	board     []int
	duration  int
	remaining int
	chat      []chatLine
	timerStop chan struct{}
}

func NewRoom(id string, h *Hub) *Room {
	return &Room{
		id:       id,
		hub:      h,
		phase:    PhaseLobby,
		ready:    make(map[string]bool),
		scores:   make(map[string]int),
		duration: h.cfg.RoundSecs,
	}
}

func (r *Room) ID() string { return r.id }

// rosterLocked builds the RoomPlayersUpdate payload. Join order is the
// display order.
func (r *Room) rosterLocked() protocol.RoomPlayersUpdate {
	players := make([]protocol.Player, len(r.players))
	for i, c := range r.players {
		players[i] = protocol.Player{PlayerID: c.id, Name: c.name, Ready: r.ready[c.id]}
	}
	return protocol.RoomPlayersUpdate{RoomID: r.id, Players: players, OwnerID: r.ownerID}
}

func (r *Room) recipientsLocked() []*client {
	return append([]*client(nil), r.players...)
}

// Join admits a connection in either phase. Mid-round joiners get the
// in-flight board so their client can render immediately; the advertised
// duration is what is left of the round.
func (r *Room) Join(c *client, ready bool) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if len(r.players) >= r.hub.cfg.MaxPlayers {
		r.mu.Unlock()
		return ErrRoomFull
	}
	for _, p := range r.players {
		if p.id == c.id {
			r.mu.Unlock()
			return ErrAlreadyInRoom
		}
	}
	if len(r.players) == 0 {
		r.ownerID = c.id
	}
	c.room = r
	r.players = append(r.players, c)
	r.ready[c.id] = ready
	r.scores[c.id] = 0

	roster := r.rosterLocked()
	recips := r.recipientsLocked()
	var started *protocol.GameStarted
	if r.phase == PhaseInProgress {
		started = &protocol.GameStarted{
			RoomID:       r.id,
			Board:        append([]int(nil), r.board...),
			DurationSecs: r.remaining,
		}
	}
	r.mu.Unlock()

	log.Info().Str("room", r.id).Str("player", c.id).Str("name", c.name).Msg("player joined")
	for _, rc := range recips {
		sendJSON(rc, "RoomPlayersUpdate", roster)
	}
	if started != nil {
		sendJSON(c, "GameStarted", *started)
	}
	return nil
}

// ReadyToggle flips a player's ready flag. The flag is display-only and
// meaningless for the owner, so an owner toggle changes nothing at all.
func (r *Room) ReadyToggle(c *client, ready bool) {
	r.mu.Lock()
	if c.id == r.ownerID {
		r.mu.Unlock()
		return
	}
	r.ready[c.id] = ready
	roster := r.rosterLocked()
	recips := r.recipientsLocked()
	r.mu.Unlock()

	for _, rc := range recips {
		sendJSON(rc, "RoomPlayersUpdate", roster)
	}
}

// Start begins a fresh round. Owner-only, but deliberately not gated on
// anyone's ready flag. Starting while a round is running cancels the old
// countdown and deals a new board.
func (r *Room) Start(c *client) error {
	r.mu.Lock()
	if c.id != r.ownerID {
		r.mu.Unlock()
		return ErrNotOwner
	}
	if r.timerStop != nil {
		close(r.timerStop)
	}
	r.timerStop = make(chan struct{})
	stop := r.timerStop

	r.board = GenerateBoard(r.hub.cfg.Rows, r.hub.cfg.Cols, protocol.MinCellValue, protocol.MaxCellValue)
	for _, p := range r.players {
		r.scores[p.id] = 0
		if p.id != r.ownerID {
			r.ready[p.id] = false
		}
	}
	r.remaining = r.duration
	r.phase = PhaseInProgress

	roster := r.rosterLocked()
	started := protocol.GameStarted{
		RoomID:       r.id,
		Board:        append([]int(nil), r.board...),
		DurationSecs: r.duration,
	}
	firstTick := protocol.TimerTick{RemainingSecs: r.remaining}
	recips := r.recipientsLocked()
	r.mu.Unlock()

	log.Info().Str("room", r.id).Str("owner", c.id).Int("duration_secs", started.DurationSecs).Msg("round started")
	for _, rc := range recips {
		sendJSON(rc, "RoomPlayersUpdate", roster)
		sendJSON(rc, "GameStarted", started)
		sendJSON(rc, "TimerTick", firstTick)
	}
	go r.runTimer(stop)
	return nil
}

func (r *Room) runTimer(stop chan struct{}) {
	ticker := r.hub.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if r.tick() {
				return
			}
		}
	}
}

// tick is the once-per-second countdown step. Returns true when the round
// is over and the timer goroutine should exit. At zero the board stays up;
// clients flip back to the lobby view on their own.
func (r *Room) tick() bool {
	r.mu.Lock()
	if r.phase != PhaseInProgress || r.remaining <= 0 {
		r.mu.Unlock()
		return true
	}
	r.remaining--
	rem := r.remaining
	recips := r.recipientsLocked()
	var final []protocol.PlayerScore
	var names map[string]string
	if rem == 0 {
		final = r.scoresLocked()
		names = make(map[string]string, len(r.players))
		for _, p := range r.players {
			names[p.id] = p.name
		}
	}
	r.mu.Unlock()

	tickMsg := protocol.TimerTick{RemainingSecs: rem}
	for _, rc := range recips {
		sendJSON(rc, "TimerTick", tickMsg)
	}
	if rem > 0 {
		return false
	}

	// Round over: fold every participant's final score into the global
	// top-N, then show everyone the refreshed table.
	log.Info().Str("room", r.id).Int("players", len(final)).Msg("round finished")
	for _, fs := range final {
		r.hub.leaderboard.Record(names[fs.PlayerID], fs.Score)
	}
	top := protocol.Top10Scores{Scores: r.hub.leaderboard.Top()}
	for _, rc := range recips {
		sendJSON(rc, "Top10Scores", top)
	}
	return true
}

func (r *Room) scoresLocked() []protocol.PlayerScore {
	out := make([]protocol.PlayerScore, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, protocol.PlayerScore{PlayerID: p.id, Score: r.scores[p.id]})
	}
	return out
}

// ReportScore adds a client-reported cleared-cell count to the ledger. The
// count is trusted as reported; the authoritative cutoff is the timer, so
// reports that lose the race against the final tick are dropped on the
// floor rather than mutating a finished round.
func (r *Room) ReportScore(c *client, cleared int) error {
	if cleared < 0 {
		return ErrBadScore
	}
	r.mu.Lock()
	if r.phase != PhaseInProgress || r.remaining <= 0 {
		r.mu.Unlock()
		log.Debug().Str("room", r.id).Str("player", c.id).Int("cleared", cleared).Msg("stale score report dropped")
		return nil
	}
	r.scores[c.id] += cleared
	update := protocol.LeaderboardUpdate{RoomID: r.id, Scores: r.scoresLocked()}
	recips := r.recipientsLocked()
	r.mu.Unlock()

	for _, rc := range recips {
		sendJSON(rc, "LeaderboardUpdate", update)
	}
	return nil
}

// Chat relays a message to the room and appends it to the bounded
// transcript. Whitespace-only messages are rejected; long ones are clipped.
func (r *Room) Chat(c *client, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if runes := []rune(text); len(runes) > maxChatLen {
		text = string(runes[:maxChatLen])
	}

	r.mu.Lock()
	r.chat = append(r.chat, chatLine{playerID: c.id, name: c.name, text: text})
	if len(r.chat) > chatHistoryLen {
		r.chat = r.chat[len(r.chat)-chatHistoryLen:]
	}
	msg := protocol.ChatBroadcast{
		RoomID:  r.id,
		Player:  protocol.Player{PlayerID: c.id, Name: c.name, Ready: r.ready[c.id]},
		Message: text,
	}
	recips := r.recipientsLocked()
	r.mu.Unlock()

	for _, rc := range recips {
		sendJSON(rc, "ChatBroadcast", msg)
	}
	return nil
}

// Leave removes a player, transferring ownership to the earliest-joined
// survivor. The last one out stops the countdown and tears the room down.
func (r *Room) Leave(c *client) {
	r.mu.Lock()
	idx := -1
	for i, p := range r.players {
		if p == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.ready, c.id)
	delete(r.scores, c.id)
	c.room = nil

	if len(r.players) == 0 {
		r.closed = true
		if r.timerStop != nil {
			close(r.timerStop)
			r.timerStop = nil
		}
		r.mu.Unlock()
		log.Info().Str("room", r.id).Msg("room empty, removing")
		r.hub.removeRoom(r.id)
		return
	}
	if c.id == r.ownerID {
		r.ownerID = r.players[0].id
		log.Info().Str("room", r.id).Str("owner", r.ownerID).Msg("owner left, ownership transferred")
	}
	roster := r.rosterLocked()
	recips := r.recipientsLocked()
	r.mu.Unlock()

	for _, rc := range recips {
		sendJSON(rc, "RoomPlayersUpdate", roster)
	}
}

// Phase is for tests and diagnostics.
func (r *Room) Phase() RoomPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}
