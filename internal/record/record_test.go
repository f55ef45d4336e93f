package record

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ivan-guerra/macro-recorder/internal/device"
)

func sampleRecords() []Record {
	return []Record{
		{
			Timestamp: 100.0,
			MousePos:  [2]int{10, 20},
			Keys: []KeyPress{
				{Key: device.KeyA, PressedAt: 99.5},
				{Key: device.KeyCtrl, PressedAt: 99.4},
			},
			Button: &ButtonEvent{Button: device.ButtonLeft, Pressed: true},
			Scroll: &ScrollDelta{DX: 0, DY: -2},
		},
		{
			Timestamp: 100.1,
			MousePos:  [2]int{11, 21},
		},
		{
			Timestamp: 100.2,
			MousePos:  [2]int{12, 22},
			Button:    &ButtonEvent{Button: device.ButtonLeft, Pressed: false},
		},
	}
}

// TestRoundTrip tests that encoding then decoding yields an equal sequence
func TestRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(records, decoded) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", records, decoded)
	}
}

// TestEncodeKeySet tests that the exact field names are produced on write
func TestEncodeKeySet(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleRecords()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := buf.String()
	for _, field := range []string{`"records"`, `"timestamp"`, `"mouse_pos"`, `"keys"`, `"button"`, `"scroll"`} {
		if !strings.Contains(out, field) {
			t.Errorf("Expected encoded output to contain %s", field)
		}
	}
	// Empty transient fields serialize as null, matching the reference
	// format.
	if !strings.Contains(out, `"keys": null`) {
		t.Errorf("Expected empty keys to serialize as null")
	}
}

// TestDecodeFieldOrder tests that field order in the input is irrelevant
func TestDecodeFieldOrder(t *testing.T) {
	input := `{"records": [
		{"scroll": null, "button": ["right", true], "keys": [["b", 1.5]],
		 "mouse_pos": [3, 4], "timestamp": 2.0}
	]}`

	records, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Timestamp != 2.0 {
		t.Errorf("Expected timestamp 2.0, got %v", r.Timestamp)
	}
	if r.MousePos != [2]int{3, 4} {
		t.Errorf("Expected mouse_pos [3 4], got %v", r.MousePos)
	}
	if r.Button == nil || r.Button.Button != device.ButtonRight || !r.Button.Pressed {
		t.Errorf("Expected right button press, got %+v", r.Button)
	}
	if len(r.Keys) != 1 || r.Keys[0].Key != device.KeyB || r.Keys[0].PressedAt != 1.5 {
		t.Errorf("Expected key b at 1.5, got %+v", r.Keys)
	}
}

// TestDecodeMalformed tests decode failures for structurally broken input
func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"truncated JSON", `{"records": [`},
		{"not an object", `[1, 2, 3]`},
		{"missing records list", `{"version": 1}`},
		{"non-text input", "{\"records\": [\xff\xfe]}"},
	}

	for _, tc := range cases {
		if _, err := Decode(strings.NewReader(tc.input)); err == nil {
			t.Errorf("Expected decode error for %s", tc.name)
		}
	}
}

// TestDecodeInvalidFields tests value errors for semantically invalid fields
func TestDecodeInvalidFields(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing timestamp", `{"records": [{"mouse_pos": [1, 2], "keys": null, "button": null, "scroll": null}]}`},
		{"mouse_pos arity", `{"records": [{"timestamp": 1.0, "mouse_pos": [1, 2, 3], "keys": null, "button": null, "scroll": null}]}`},
		{"keys entry arity", `{"records": [{"timestamp": 1.0, "mouse_pos": [1, 2], "keys": [["a", 1.0, 9]], "button": null, "scroll": null}]}`},
		{"button arity", `{"records": [{"timestamp": 1.0, "mouse_pos": [1, 2], "keys": null, "button": ["left"], "scroll": null}]}`},
		{"scroll arity", `{"records": [{"timestamp": 1.0, "mouse_pos": [1, 2], "keys": null, "button": null, "scroll": [1]}]}`},
		{"button pressed type", `{"records": [{"timestamp": 1.0, "mouse_pos": [1, 2], "keys": null, "button": ["left", "yes"], "scroll": null}]}`},
	}

	for _, tc := range cases {
		if _, err := Decode(strings.NewReader(tc.input)); err == nil {
			t.Errorf("Expected value error for %s", tc.name)
		}
	}
}

// TestDecodeUnknownIdentifiers tests that unknown names defer to replay time
func TestDecodeUnknownIdentifiers(t *testing.T) {
	input := `{"records": [
		{"timestamp": 1.0, "mouse_pos": [1, 2],
		 "keys": [["hyper", 0.5]], "button": ["side", true], "scroll": null}
	]}`

	records, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if records[0].Keys[0].Key != device.KeyUnknown {
		t.Errorf("Expected unknown key identifier to decode to KeyUnknown")
	}
	if records[0].Button.Button != device.ButtonUnknown {
		t.Errorf("Expected unknown button identifier to decode to ButtonUnknown")
	}
}

// TestSaveEmpty tests that persisting an empty sequence fails
func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	err := Save(path, nil)
	if !errors.Is(err, ErrNoRecords) {
		t.Errorf("Expected ErrNoRecords, got %v", err)
	}
}

// TestSaveLoad tests the file round trip
func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macro.json")
	records := sampleRecords()

	if err := Save(path, records); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(records, loaded) {
		t.Errorf("Save/Load mismatch:\nwant %+v\ngot  %+v", records, loaded)
	}
}

// TestClone tests that clones share no mutable state with the original
func TestClone(t *testing.T) {
	orig := sampleRecords()[0]
	clone := orig.Clone()

	clone.Keys[0].Key = device.KeyZ
	clone.Button.Pressed = false
	clone.Scroll.DY = 42

	if orig.Keys[0].Key == device.KeyZ {
		t.Errorf("Clone aliases the Keys slice")
	}
	if !orig.Button.Pressed {
		t.Errorf("Clone aliases the Button pointer")
	}
	if orig.Scroll.DY == 42 {
		t.Errorf("Clone aliases the Scroll pointer")
	}
}

// TestDuration tests sequence duration computation
func TestDuration(t *testing.T) {
	if d := Duration(nil); d != 0 {
		t.Errorf("Expected zero duration for empty sequence, got %v", d)
	}
	if d := Duration(sampleRecords()); d != 100.2-100.0 {
		t.Errorf("Expected duration 0.2, got %v", d)
	}
}
