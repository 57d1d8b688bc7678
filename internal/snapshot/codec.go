package snapshot

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the crash/restart recovery blob for one router: the last raw
// message seen per discovered device, plus the router's own last raw value.
type Snapshot struct {
	LastMessage    string            `json:"last_message,omitempty"`
	RecentMessages map[string]string `json:"recent_messages"`
}

func Empty() Snapshot {
	return Snapshot{RecentMessages: make(map[string]string)}
}

func (s Snapshot) IsEmpty() bool {
	return s.LastMessage == "" && len(s.RecentMessages) == 0
}

func (s Snapshot) Clone() Snapshot {
	clone := Snapshot{
		LastMessage:    s.LastMessage,
		RecentMessages: make(map[string]string, len(s.RecentMessages)),
	}
	for id, raw := range s.RecentMessages {
		clone.RecentMessages[id] = raw
	}
	return clone
}

func Encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot blob. The caller treats an error as
// "no snapshot" and starts cold.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Empty(), fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.RecentMessages == nil {
		s.RecentMessages = make(map[string]string)
	}
	return s, nil
}
