package protocol

import "encoding/json"

// Envelope
type MsgEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Player is a room member as seen on the wire. PlayerID may be empty in
// CreateRoom/JoinRoom; the server assigns one and echoes it back in the
// first RoomPlayersUpdate.
type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
}

// ================= C -> S =================

type CreateRoom struct {
	Player Player `json:"player"`
}

type JoinRoom struct {
	RoomID string `json:"room_id"`
	Player Player `json:"player"`
}

type ReadyUp struct {
	Ready bool `json:"ready"`
}

type StartGame struct{}

// ScoreUpdate reports how many cells the client just cleared. The server
// trusts the count; it never sees the selection rectangle.
type ScoreUpdate struct {
	ClearedCount int `json:"cleared_count"`
}

type ChatMessage struct {
	Message string `json:"message"`
}

// ================= S -> C =================

type RoomCreated struct {
	RoomID string `json:"room_id"`
}

// RoomPlayersUpdate is broadcast whenever the roster changes (join, leave,
// ready toggle, owner succession).
type RoomPlayersUpdate struct {
	RoomID  string   `json:"room_id"`
	Players []Player `json:"players"`
	OwnerID string   `json:"owner_id"`
}

// GameStarted carries the full board as a flat array of Rows*Cols values;
// clients index it as y*Cols + x.
type GameStarted struct {
	RoomID       string `json:"room_id"`
	Board        []int  `json:"board"`
	DurationSecs int    `json:"duration_secs"`
}

type TimerTick struct {
	RemainingSecs int `json:"remaining_secs"`
}

type LeaderboardUpdate struct {
	RoomID string        `json:"room_id"`
	Scores []PlayerScore `json:"scores"`
}

type ChatBroadcast struct {
	RoomID  string `json:"room_id"`
	Player  Player `json:"player"`
	Message string `json:"message"`
}

// Top10Scores is pushed to every freshly connected client and re-broadcast
// to a room when a round's final scores land on the global board.
type Top10Scores struct {
	Scores []TopScore `json:"scores"`
}

type ErrorMsg struct {
	RoomID string `json:"room_id,omitempty"`
	Msg    string `json:"msg"`
}
