package protocol

import "encoding/json"

// PlayerScore is one LeaderboardUpdate entry. On the wire it is a
// two-element array [player_id, score], not an object.
type PlayerScore struct {
	PlayerID string
	Score    int
}

func (s PlayerScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{s.PlayerID, s.Score})
}

func (s *PlayerScore) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &s.PlayerID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &s.Score)
}

// TopScore is one Top10Scores entry, encoded as [score, name]. The tuple
// order is deliberately the reverse of PlayerScore; deployed clients parse
// both shapes positionally, so neither may change.
type TopScore struct {
	Score int
	Name  string
}

func (s TopScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{s.Score, s.Name})
}

func (s *TopScore) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &s.Score); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &s.Name)
}
