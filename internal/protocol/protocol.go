package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeStatus carries a full status snapshot, sent on connect and on
	// request
	TypeStatus MessageType = "status"

	// TypeRecordingStarted notifies that a capture session began
	TypeRecordingStarted MessageType = "recording_started"

	// TypeRecordingStopped notifies that a capture session ended
	TypeRecordingStopped MessageType = "recording_stopped"

	// TypePlaybackStarted notifies that a playback session began
	TypePlaybackStarted MessageType = "playback_started"

	// TypePlaybackFinished notifies that a playback session ended,
	// naturally or by cancellation
	TypePlaybackFinished MessageType = "playback_finished"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatusPayload is the payload for TypeStatus
type StatusPayload struct {
	Recording   bool   `json:"recording"`
	Playing     bool   `json:"playing"`
	SessionID   string `json:"session_id,omitempty"`
	Records     int    `json:"records"`
	UnsavedData bool   `json:"unsaved_data"`
}

// SessionPayload is the payload for the session lifecycle notifications
type SessionPayload struct {
	SessionID string  `json:"session_id"`
	RateHz    int     `json:"rate_hz,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Macro     string  `json:"macro,omitempty"`
	Records   int     `json:"records,omitempty"`
	Error     string  `json:"error,omitempty"`
}
