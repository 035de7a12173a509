package spectator

import (
	"encoding/json"
	"time"
)

// MessageType names a spectator message.
type MessageType string

const (
	MessageTypeState     MessageType = "state"
	MessageTypeCard      MessageType = "card"
	MessageTypeToken     MessageType = "token"
	MessageTypeCountdown MessageType = "countdown"
	MessageTypeFreeze    MessageType = "freeze"
	MessageTypeScore     MessageType = "score"
	MessageTypeTable     MessageType = "table"
	MessageTypeWinners   MessageType = "winners"
)

// Message is the envelope of every message sent to spectators.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func newMessage(t MessageType, data any, now time.Time) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Data: raw, Timestamp: now}, nil
}

// CardData reports a slot change. Card is -1 when the slot was emptied.
type CardData struct {
	Slot  int    `json:"slot"`
	Card  int    `json:"card"`
	Label string `json:"label,omitempty"`
}

type TokenData struct {
	Player int  `json:"player"`
	Slot   int  `json:"slot"`
	Placed bool `json:"placed"`
}

type CountdownData struct {
	Millis int64 `json:"millis"`
	Warn   bool  `json:"warn"`
}

type FreezeData struct {
	Player int   `json:"player"`
	Millis int64 `json:"millis"`
}

type ScoreData struct {
	Player int `json:"player"`
	Score  int `json:"score"`
}

type TableData struct {
	Slots []int         `json:"slots"`
	Marks map[int][]int `json:"marks,omitempty"`
	Hints [][]int       `json:"hints,omitempty"`
	Deck  int           `json:"deck"`
}

type WinnersData struct {
	Players []int `json:"players"`
}

// State is the snapshot served on /state and sent to every new spectator.
type State struct {
	GameID    string   `json:"game_id"`
	Names     []string `json:"names"`
	Slots     []int    `json:"slots"`
	Scores    []int    `json:"scores"`
	Countdown int64    `json:"countdown"`
	Warn      bool     `json:"warn"`
	Deck      int      `json:"deck"`
	Winners   []int    `json:"winners,omitempty"`
}

func (s State) clone() State {
	s.Names = append([]string(nil), s.Names...)
	s.Slots = append([]int(nil), s.Slots...)
	s.Scores = append([]int(nil), s.Scores...)
	s.Winners = append([]int(nil), s.Winners...)
	return s
}
