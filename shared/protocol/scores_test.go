package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerScoreWireShape(t *testing.T) {
	b, err := json.Marshal(LeaderboardUpdate{
		RoomID: "ABCD",
		Scores: []PlayerScore{{PlayerID: "p1", Score: 3}, {PlayerID: "p2", Score: 5}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"room_id":"ABCD","scores":[["p1",3],["p2",5]]}`, string(b))

	var decoded LeaderboardUpdate
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, PlayerScore{PlayerID: "p2", Score: 5}, decoded.Scores[1])
}

func TestTopScoreWireShape(t *testing.T) {
	// Deliberately [score, name], the reverse of PlayerScore.
	b, err := json.Marshal(Top10Scores{Scores: []TopScore{{Score: 120, Name: "Ann"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scores":[[120,"Ann"]]}`, string(b))

	var decoded Top10Scores
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded.Scores, 1)
	assert.Equal(t, TopScore{Score: 120, Name: "Ann"}, decoded.Scores[0])
}

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := json.Marshal(RoomCreated{RoomID: "WXYZ"})
	require.NoError(t, err)
	b, err := json.Marshal(MsgEnvelope{Type: "RoomCreated", Data: data})
	require.NoError(t, err)

	var env MsgEnvelope
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, "RoomCreated", env.Type)
	var created RoomCreated
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "WXYZ", created.RoomID)
}
