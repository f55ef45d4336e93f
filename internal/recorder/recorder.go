// Package recorder turns asynchronous key and mouse events plus periodic
// pointer polling into a time-ordered sequence of records.
package recorder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ivan-guerra/macro-recorder/internal/device"
	"github.com/ivan-guerra/macro-recorder/internal/record"
)

// Contract violation errors.
var (
	// ErrAlreadyRecording is returned by Start while a recording is active.
	ErrAlreadyRecording = errors.New("recording already in progress")

	// ErrNotRecording is returned by Stop without a preceding Start.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrRecordingActive is returned by Records and Save while the sequence
	// is still being appended to.
	ErrRecordingActive = errors.New("recording still in progress")
)

// Recorder captures mouse and keyboard activity as a sequence of records.
//
// Three workers run per session: one consuming key events, one consuming
// mouse events, and a sampler that drains the shared in-flight record into
// the output sequence once per sampling interval. The in-flight record is
// guarded by one lock shared by all producers and the sampler; the
// active-keys staging buffer has its own finer-grained lock so key
// bookkeeping does not contend with record mutation.
type Recorder struct {
	listener device.Listener

	mu        sync.Mutex // guards recording and records
	recording bool
	records   []record.Record

	inflightMu sync.Mutex
	inflight   record.Record

	keysMu     sync.Mutex
	activeKeys []record.KeyPress

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a Recorder capturing through the given listener.
func New(l device.Listener) *Recorder {
	return &Recorder{listener: l}
}

// Start begins capturing at the given sampling rate. The previous session's
// sequence is discarded.
func (r *Recorder) Start(rateHz int) error {
	if rateHz <= 0 {
		return fmt.Errorf("sampling rate must be a positive integer, got %d", rateHz)
	}

	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.recording = true
	r.records = nil
	r.mu.Unlock()

	r.inflightMu.Lock()
	r.inflight = record.Record{}
	r.inflightMu.Unlock()

	r.keysMu.Lock()
	r.activeKeys = nil
	r.keysMu.Unlock()

	if err := r.listener.Start(); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("start input listener: %w", err)
	}

	// Fresh control channel and worker set per session; the previous
	// session's workers have already been joined by Stop.
	r.stop = make(chan struct{})
	r.wg.Add(3)
	go r.keyWorker()
	go r.mouseWorker()
	go r.sampler(time.Second / time.Duration(rateHz))

	return nil
}

// Stop ends the capture session and blocks until all three workers have
// exited. A partial interval accumulated since the last sampler tick is
// dropped rather than flushed.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return ErrNotRecording
	}
	r.recording = false
	r.mu.Unlock()

	close(r.stop)
	r.wg.Wait()

	if err := r.listener.Stop(); err != nil {
		return fmt.Errorf("stop input listener: %w", err)
	}
	return nil
}

// IsRecording reports whether a capture session is active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Records returns a copy of the captured sequence. It fails while a
// recording is active because the sequence is not yet stable. The copy is
// deep, so callers cannot corrupt a later Save by mutating it.
func (r *Recorder) Records() ([]record.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return nil, ErrRecordingActive
	}

	out := make([]record.Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

// Save writes the captured sequence to the named file. It fails while a
// recording is active or when nothing has been captured.
func (r *Recorder) Save(path string) error {
	records, err := r.Records()
	if err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return record.Save(path, records)
}

// keyWorker consumes key transitions. Presses are provisional: they sit in
// the staging buffer until the matching release, at which point they move
// into the in-flight record with their original press timestamp. A key held
// across several sampling ticks is therefore reported exactly once.
func (r *Recorder) keyWorker() {
	defer r.wg.Done()

	events := r.listener.KeyEvents()
	for {
		select {
		case <-r.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Pressed {
				r.stageKeyPress(ev)
			} else {
				r.commitKeyRelease(ev.Key)
			}
		}
	}
}

func (r *Recorder) stageKeyPress(ev device.KeyEvent) {
	r.keysMu.Lock()
	defer r.keysMu.Unlock()
	r.activeKeys = append(r.activeKeys, record.KeyPress{
		Key:       ev.Key,
		PressedAt: toSeconds(ev.Time),
	})
}

func (r *Recorder) commitKeyRelease(k device.Key) {
	r.keysMu.Lock()
	defer r.keysMu.Unlock()

	var kept []record.KeyPress
	var released []record.KeyPress
	for _, p := range r.activeKeys {
		if p.Key == k {
			released = append(released, p)
		} else {
			kept = append(kept, p)
		}
	}
	if len(released) == 0 {
		return
	}
	r.activeKeys = kept

	r.inflightMu.Lock()
	r.inflight.Keys = append(r.inflight.Keys, released...)
	r.inflightMu.Unlock()
}

// mouseWorker consumes button and scroll transitions. Within one sampling
// interval the latest transition wins.
func (r *Recorder) mouseWorker() {
	defer r.wg.Done()

	events := r.listener.MouseEvents()
	for {
		select {
		case <-r.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.applyMouseEvent(ev)
		}
	}
}

func (r *Recorder) applyMouseEvent(ev device.MouseEvent) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	switch ev.Type {
	case device.MouseClick:
		r.inflight.Button = &record.ButtonEvent{
			Button:  ev.Button,
			Pressed: ev.Pressed,
		}
	case device.MouseScroll:
		if ev.ScrollY != 0 {
			r.inflight.Scroll = &record.ScrollDelta{DX: 0, DY: ev.ScrollY}
		}
		if ev.ScrollX != 0 {
			r.inflight.Scroll = &record.ScrollDelta{DX: ev.ScrollX, DY: 0}
		}
	}
}

// sampler stamps the in-flight record with the current time and pointer
// position once per interval, deep-copies it into the sequence, and clears
// the transient fields. No final drain happens on stop.
func (r *Recorder) sampler(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			x, y, err := r.listener.CursorPosition()
			if err != nil {
				continue
			}

			r.inflightMu.Lock()
			r.inflight.Timestamp = toSeconds(time.Now())
			r.inflight.MousePos = [2]int{x, y}
			snap := r.inflight.Clone()
			r.inflight.ClearTransients()
			r.inflightMu.Unlock()

			r.mu.Lock()
			r.records = append(r.records, snap)
			r.mu.Unlock()
		}
	}
}

func toSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
