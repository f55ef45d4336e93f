// Package record defines the snapshot model shared by the recorder and
// player, along with its JSON encoding.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/ivan-guerra/macro-recorder/internal/device"
)

// KeyPress is one key that was pressed and subsequently released, tagged
// with the timestamp of the original press.
type KeyPress struct {
	Key       device.Key
	PressedAt float64
}

// ButtonEvent is a mouse button transition.
type ButtonEvent struct {
	Button  device.Button
	Pressed bool
}

// ScrollDelta is accumulated wheel movement. The capture path only ever
// sets one axis per transition, but both axes are accepted on decode and
// replayed together.
type ScrollDelta struct {
	DX int
	DY int
}

// Record is one sample of input-device state at an instant.
//
// Timestamp and MousePos are always populated in a finalized record; Keys,
// Button and Scroll carry only the transitions that occurred since the
// previous sample and are often empty.
type Record struct {
	Timestamp float64      `json:"timestamp"`
	MousePos  [2]int       `json:"mouse_pos"`
	Keys      []KeyPress   `json:"keys"`
	Button    *ButtonEvent `json:"button"`
	Scroll    *ScrollDelta `json:"scroll"`
}

// Clone returns a deep copy of the record. Transient fields never alias
// between the in-flight record and a finalized sequence element.
func (r Record) Clone() Record {
	out := r
	if r.Keys != nil {
		out.Keys = make([]KeyPress, len(r.Keys))
		copy(out.Keys, r.Keys)
	}
	if r.Button != nil {
		b := *r.Button
		out.Button = &b
	}
	if r.Scroll != nil {
		s := *r.Scroll
		out.Scroll = &s
	}
	return out
}

// ClearTransients resets the per-interval fields after the record has been
// drained into the sequence.
func (r *Record) ClearTransients() {
	r.Keys = nil
	r.Button = nil
	r.Scroll = nil
}

// Duration returns the elapsed time in seconds covered by a sequence, zero
// for sequences shorter than two records.
func Duration(records []Record) float64 {
	if len(records) < 2 {
		return 0
	}
	return records[len(records)-1].Timestamp - records[0].Timestamp
}

// UnmarshalJSON decodes a record, enforcing that timestamp is present and
// mouse_pos is a two-integer pair. Field order in the input is irrelevant.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp *float64     `json:"timestamp"`
		MousePos  []int        `json:"mouse_pos"`
		Keys      []KeyPress   `json:"keys"`
		Button    *ButtonEvent `json:"button"`
		Scroll    *ScrollDelta `json:"scroll"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Timestamp == nil {
		return fmt.Errorf("record missing timestamp")
	}
	if len(raw.MousePos) != 2 {
		return fmt.Errorf("mouse_pos has %d elements, want 2", len(raw.MousePos))
	}

	r.Timestamp = *raw.Timestamp
	r.MousePos = [2]int{raw.MousePos[0], raw.MousePos[1]}
	r.Keys = raw.Keys
	r.Button = raw.Button
	r.Scroll = raw.Scroll
	return nil
}

// MarshalJSON encodes the key press as an [identifier, press-timestamp]
// pair.
func (p KeyPress) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Key.String(), p.PressedAt})
}

// UnmarshalJSON decodes an [identifier, press-timestamp] pair. Identifiers
// that name no known key decode to device.KeyUnknown; rejecting them is
// deferred to replay time.
func (p *KeyPress) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("key entry is not a pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("key entry has %d elements, want 2", len(raw))
	}

	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return fmt.Errorf("key identifier: %w", err)
	}
	var ts float64
	if err := json.Unmarshal(raw[1], &ts); err != nil {
		return fmt.Errorf("key press timestamp: %w", err)
	}

	p.Key = device.ParseKey(name)
	p.PressedAt = ts
	return nil
}

// MarshalJSON encodes the button event as an [identifier, pressed] pair.
func (b ButtonEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{b.Button.String(), b.Pressed})
}

// UnmarshalJSON decodes an [identifier, pressed] pair.
func (b *ButtonEvent) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("button is not a pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("button has %d elements, want 2", len(raw))
	}

	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return fmt.Errorf("button identifier: %w", err)
	}
	var pressed bool
	if err := json.Unmarshal(raw[1], &pressed); err != nil {
		return fmt.Errorf("button pressed flag: %w", err)
	}

	b.Button = device.ParseButton(name)
	b.Pressed = pressed
	return nil
}

// MarshalJSON encodes the delta as an [horizontal, vertical] pair.
func (s ScrollDelta) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.DX, s.DY})
}

// UnmarshalJSON decodes an [horizontal, vertical] pair.
func (s *ScrollDelta) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("scroll delta: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("scroll delta has %d elements, want 2", len(raw))
	}
	s.DX = raw[0]
	s.DY = raw[1]
	return nil
}
