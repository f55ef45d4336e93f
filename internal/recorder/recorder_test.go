package recorder

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ivan-guerra/macro-recorder/internal/device"
	"github.com/ivan-guerra/macro-recorder/internal/record"
)

// fakeListener feeds scripted events through the device.Listener interface.
type fakeListener struct {
	keyCh   chan device.KeyEvent
	mouseCh chan device.MouseEvent

	mu       sync.Mutex
	x, y     int
	startErr error
	started  int
	stopped  int
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		keyCh:   make(chan device.KeyEvent, 64),
		mouseCh: make(chan device.MouseEvent, 64),
	}
}

func (f *fakeListener) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeListener) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeListener) KeyEvents() <-chan device.KeyEvent {
	return f.keyCh
}

func (f *fakeListener) MouseEvents() <-chan device.MouseEvent {
	return f.mouseCh
}

func (f *fakeListener) CursorPosition() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x++
	f.y++
	return f.x, f.y, nil
}

// TestStartStopContract tests the state-misuse error paths
func TestStartStopContract(t *testing.T) {
	r := New(newFakeListener())

	if err := r.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording from Stop before Start, got %v", err)
	}
	if err := r.Start(0); err == nil {
		t.Errorf("Expected error for non-positive sampling rate")
	}

	if err := r.Start(100); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !r.IsRecording() {
		t.Errorf("Expected IsRecording true after Start")
	}
	if err := r.Start(100); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("Expected ErrAlreadyRecording on second Start, got %v", err)
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if r.IsRecording() {
		t.Errorf("Expected IsRecording false after Stop")
	}
	if err := r.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording on second Stop, got %v", err)
	}
}

// TestListenerStartFailure tests that a listener failure aborts Start
func TestListenerStartFailure(t *testing.T) {
	l := newFakeListener()
	l.startErr = fmt.Errorf("hooks unavailable")

	r := New(l)
	if err := r.Start(100); err == nil {
		t.Fatalf("Expected Start to fail when the listener cannot start")
	}
	if r.IsRecording() {
		t.Errorf("Expected recorder to remain idle after failed Start")
	}
}

// TestMonotonicSampling tests sample count and timestamp ordering
func TestMonotonicSampling(t *testing.T) {
	r := New(newFakeListener())

	const rateHz = 100
	const duration = 300 * time.Millisecond

	if err := r.Start(rateHz); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(duration)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	records, err := r.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	// Expect roughly duration * rate samples; allow generous scheduler
	// slack.
	want := int(duration.Seconds() * rateHz)
	if len(records) < want/2 || len(records) > want*2 {
		t.Errorf("Expected about %d records, got %d", want, len(records))
	}

	for i := 1; i < len(records); i++ {
		if records[i].Timestamp <= records[i-1].Timestamp {
			t.Fatalf("Timestamps not strictly increasing at index %d: %v then %v",
				i, records[i-1].Timestamp, records[i].Timestamp)
		}
		if records[i].MousePos == [2]int{0, 0} {
			t.Fatalf("Cursor position not populated at index %d", i)
		}
	}
}

// TestReadWhileRecording tests that the sequence is unreadable mid-session
func TestReadWhileRecording(t *testing.T) {
	r := New(newFakeListener())
	if err := r.Start(100); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop()

	if _, err := r.Records(); !errors.Is(err, ErrRecordingActive) {
		t.Errorf("Expected ErrRecordingActive from Records, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := r.Save(path); !errors.Is(err, ErrRecordingActive) {
		t.Errorf("Expected ErrRecordingActive from Save, got %v", err)
	}
}

// TestSaveEmptyRecording tests that saving an empty capture fails
func TestSaveEmptyRecording(t *testing.T) {
	r := New(newFakeListener())
	path := filepath.Join(t.TempDir(), "out.json")
	if err := r.Save(path); !errors.Is(err, record.ErrNoRecords) {
		t.Errorf("Expected ErrNoRecords, got %v", err)
	}
}

// TestKeyReleaseCommits tests that keys surface at release with press time
func TestKeyReleaseCommits(t *testing.T) {
	l := newFakeListener()
	r := New(l)

	if err := r.Start(50); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	pressTime := time.Now()
	l.keyCh <- device.KeyEvent{Key: device.KeyCtrl, Pressed: true, Time: pressTime}
	l.keyCh <- device.KeyEvent{Key: device.KeyA, Pressed: true, Time: pressTime}

	// Held keys must not appear before their release.
	time.Sleep(100 * time.Millisecond)

	l.keyCh <- device.KeyEvent{Key: device.KeyA, Pressed: false, Time: time.Now()}
	time.Sleep(100 * time.Millisecond)

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	records, err := r.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	var sawA, sawCtrl bool
	for _, rec := range records {
		for _, kp := range rec.Keys {
			switch kp.Key {
			case device.KeyA:
				sawA = true
				want := float64(pressTime.UnixNano()) / float64(time.Second)
				if kp.PressedAt != want {
					t.Errorf("Expected press timestamp %v, got %v", want, kp.PressedAt)
				}
			case device.KeyCtrl:
				sawCtrl = true
			}
		}
	}

	if !sawA {
		t.Errorf("Expected released key to appear in the sequence")
	}
	if sawCtrl {
		t.Errorf("Expected still-held key not to appear in the sequence")
	}
}

// TestButtonLastWriteWins tests that the latest transition in an interval
// replaces earlier ones
func TestButtonLastWriteWins(t *testing.T) {
	l := newFakeListener()
	r := New(l)

	// Slow rate so both transitions land in one interval.
	if err := r.Start(5); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	l.mouseCh <- device.MouseEvent{Type: device.MouseClick, Button: device.ButtonLeft, Pressed: true}
	l.mouseCh <- device.MouseEvent{Type: device.MouseClick, Button: device.ButtonRight, Pressed: false}
	l.mouseCh <- device.MouseEvent{Type: device.MouseScroll, ScrollY: -3}
	l.mouseCh <- device.MouseEvent{Type: device.MouseScroll, ScrollX: 2}

	time.Sleep(300 * time.Millisecond)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	records, err := r.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	var buttons []record.ButtonEvent
	var scrolls []record.ScrollDelta
	for _, rec := range records {
		if rec.Button != nil {
			buttons = append(buttons, *rec.Button)
		}
		if rec.Scroll != nil {
			scrolls = append(scrolls, *rec.Scroll)
		}
	}

	if len(buttons) != 1 {
		t.Fatalf("Expected exactly one button transition in the sequence, got %d", len(buttons))
	}
	if buttons[0].Button != device.ButtonRight || buttons[0].Pressed {
		t.Errorf("Expected latest transition (right, released), got %+v", buttons[0])
	}

	if len(scrolls) != 1 {
		t.Fatalf("Expected exactly one scroll delta in the sequence, got %d", len(scrolls))
	}
	if (scrolls[0] != record.ScrollDelta{DX: 2, DY: 0}) {
		t.Errorf("Expected latest scroll delta (2, 0), got %+v", scrolls[0])
	}
}

// TestStopJoinsWorkers tests that no samples arrive after Stop returns
func TestStopJoinsWorkers(t *testing.T) {
	r := New(newFakeListener())

	if err := r.Start(200); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	records, err := r.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	count := len(records)

	time.Sleep(50 * time.Millisecond)

	records, _ = r.Records()
	if len(records) != count {
		t.Errorf("Sequence grew after Stop returned: %d -> %d", count, len(records))
	}
}

// TestRecordsReturnsCopy tests that mutating the returned sequence does not
// corrupt the recorder's own copy
func TestRecordsReturnsCopy(t *testing.T) {
	l := newFakeListener()
	r := New(l)

	if err := r.Start(100); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	l.keyCh <- device.KeyEvent{Key: device.KeyA, Pressed: true, Time: time.Now()}
	l.keyCh <- device.KeyEvent{Key: device.KeyA, Pressed: false, Time: time.Now()}
	time.Sleep(100 * time.Millisecond)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	first, err := r.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("Expected captured records")
	}

	first[0].Timestamp = -1
	first[0].MousePos = [2]int{-1, -1}
	for i := range first {
		for j := range first[i].Keys {
			first[i].Keys[j].Key = device.KeyZ
		}
	}

	second, err := r.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if second[0].Timestamp == -1 || second[0].MousePos == [2]int{-1, -1} {
		t.Errorf("Caller mutation leaked into the recorder's sequence")
	}
	for _, rec := range second {
		for _, kp := range rec.Keys {
			if kp.Key == device.KeyZ {
				t.Errorf("Caller key mutation leaked into the recorder's sequence")
			}
		}
	}
}

// TestRestartResetsSequence tests that Start discards the previous capture
func TestRestartResetsSequence(t *testing.T) {
	r := New(newFakeListener())

	if err := r.Start(200); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	r.Stop()

	first, _ := r.Records()
	if len(first) == 0 {
		t.Fatalf("Expected first session to capture records")
	}

	if err := r.Start(200); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	r.Stop()

	second, _ := r.Records()
	if len(second) == 0 {
		t.Fatalf("Expected second session to capture records")
	}
	if second[0].Timestamp <= first[len(first)-1].Timestamp {
		t.Errorf("Second session starts before the first session ended; sequence not reset")
	}
}
