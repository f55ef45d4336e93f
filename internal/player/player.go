// Package player replays a captured sequence of records with faithful
// relative timing, supporting pause, resume, and cooperative cancellation.
package player

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
	// ErrAlreadyPlaying is returned by Start while a playback is active.
	ErrAlreadyPlaying = errors.New("playback already in progress")

	// ErrNotPlaying is returned by Pause, Stop and Wait while idle.
	ErrNotPlaying = errors.New("no playback in progress")

	// ErrNoRecords is returned by Start for an empty sequence.
	ErrNoRecords = errors.New("nothing to play back")
)

// canonical modifier keys exempt from keypress de-duplication; they are
// commonly held across multiple combos and must be re-applied every time.
func exemptFromDedup(k device.Key) bool {
	return k.Modifier()
}

// Player replays a record sequence on a dedicated goroutine.
//
// The sequence handed to Start is treated as read-only for the duration of
// playback. Stopping is cooperative: the playback goroutine observes the
// request once per record, and the final record's actions always execute
// before it exits so the devices land in the recorded end state.
type Player struct {
	ctrl device.Controller

	mu      sync.Mutex
	cond    *sync.Cond // paired with mu; signals pause state changes
	playing bool
	paused  bool
	stopReq bool
	quit    chan struct{} // closed on Stop to cut sleeps short
	done    chan struct{} // closed when the playback goroutine exits
	err     error         // playback failure, read through Wait
}

// New creates a Player injecting input through the given controller.
func New(c device.Controller) *Player {
	p := &Player{ctrl: c}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start begins asynchronous playback of the sequence. Sleeps between
// records are divided by speed, so 2.0 plays back twice as fast and 0.5 at
// half speed. onComplete, if non-nil, is invoked exactly once when playback
// finishes, whether it ran to the end or was stopped.
func (p *Player) Start(records []record.Record, speed float64, onComplete func()) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	if speed <= 0 {
		return fmt.Errorf("speed multiplier must be positive, got %v", speed)
	}

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	p.playing = true
	p.paused = false
	p.stopReq = false
	p.err = nil
	p.quit = make(chan struct{})
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.run(records, speed, onComplete)
	return nil
}

// Pause toggles the pause state. Pausing takes effect before the next
// record executes; resuming wakes the playback goroutine immediately.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return ErrNotPlaying
	}

	p.paused = !p.paused
	if !p.paused {
		p.cond.Broadcast()
	}
	return nil
}

// Stop requests cancellation and blocks until the playback goroutine has
// exited. The final record's actions still execute before exit.
func (p *Player) Stop() error {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	if !p.stopReq {
		p.stopReq = true
		close(p.quit)
		p.cond.Broadcast()
	}
	done := p.done
	p.mu.Unlock()

	<-done
	return nil
}

// Wait blocks until the most recently started playback completes, naturally
// or by cancellation, and returns its playback error if one occurred. A
// short session may finish before the caller reaches Wait, so completion is
// tracked per session rather than through the playing flag.
func (p *Player) Wait() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return ErrNotPlaying
	}

	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// IsPlaying reports whether a playback session is active.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// run walks the sequence: execute record i-1, then sleep the scaled gap to
// record i. The final record executes unconditionally unless a device
// failure already aborted playback.
func (p *Player) run(records []record.Record, speed float64, onComplete func()) {
	cache := make(map[device.Key]float64)

	var execErr error
	for i := 1; i < len(records); i++ {
		if p.awaitResume() {
			break
		}
		if execErr = p.execute(records[i-1], cache); execErr != nil {
			break
		}

		gap := records[i].Timestamp - records[i-1].Timestamp
		p.sleep(time.Duration(gap / speed * float64(time.Second)))
	}

	if execErr == nil {
		// Pause applies to the final record too. A stop request does not
		// skip it; the devices must still land in the recorded end state.
		p.awaitResume()
		execErr = p.execute(records[len(records)-1], cache)
	}

	p.mu.Lock()
	p.playing = false
	p.paused = false
	p.err = execErr
	done := p.done
	p.mu.Unlock()

	close(done)
	if onComplete != nil {
		onComplete()
	}
}

// awaitResume blocks while paused and reports whether a stop was requested.
func (p *Player) awaitResume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.paused && !p.stopReq {
		p.cond.Wait()
	}
	return p.stopReq
}

// sleep waits for d, cut short by a stop request.
func (p *Player) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-p.quit:
	}
}

// execute applies one record's device actions in fixed order: pointer
// position first, then button, then scroll, then keys. Button state depends
// on being at the destination position and key combos follow both.
func (p *Player) execute(r record.Record, cache map[device.Key]float64) error {
	if err := p.moveMouse(r.MousePos); err != nil {
		return err
	}

	if r.Button != nil {
		if r.Button.Button == device.ButtonUnknown {
			return fmt.Errorf("cannot replay unknown mouse button")
		}
		if err := p.ctrl.ToggleButton(r.Button.Button, r.Button.Pressed); err != nil {
			return fmt.Errorf("button %v: %w", r.Button.Button, err)
		}
	}

	if r.Scroll != nil && (r.Scroll.DX != 0 || r.Scroll.DY != 0) {
		if err := p.ctrl.Scroll(r.Scroll.DX, r.Scroll.DY); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
	}

	return p.pressAndReleaseCombo(r.Keys, cache)
}

// moveMouse validates the target against the current screen bounds before
// moving; an out-of-range position fails without moving the pointer.
func (p *Player) moveMouse(pos [2]int) error {
	width, height, err := p.ctrl.ScreenSize()
	if err != nil {
		return fmt.Errorf("screen size: %w", err)
	}
	if pos[0] < 0 || pos[0] >= width {
		return fmt.Errorf("mouse x coordinate %d out of range [0, %d)", pos[0], width)
	}
	if pos[1] < 0 || pos[1] >= height {
		return fmt.Errorf("mouse y coordinate %d out of range [0, %d)", pos[1], height)
	}
	return p.ctrl.MoveMouse(pos[0], pos[1])
}

// pressAndReleaseCombo replays the record's keys as one combo: press all,
// then release all. Keys whose press timestamp was already actioned are
// filtered through the de-duplication cache so a key held across several
// samples is not re-typed; the canonical modifiers are exempt.
func (p *Player) pressAndReleaseCombo(keys []record.KeyPress, cache map[device.Key]float64) error {
	if len(keys) == 0 {
		return nil
	}

	var combo []device.Key
	for _, kp := range keys {
		if kp.Key == device.KeyUnknown {
			return fmt.Errorf("cannot replay unknown key")
		}
		if exemptFromDedup(kp.Key) {
			combo = append(combo, kp.Key)
			continue
		}
		if last, ok := cache[kp.Key]; ok && kp.PressedAt <= last {
			continue
		}
		cache[kp.Key] = kp.PressedAt
		combo = append(combo, kp.Key)
	}

	for _, k := range combo {
		if err := p.ctrl.ToggleKey(k, true); err != nil {
			return fmt.Errorf("press %v: %w", k, err)
		}
	}
	for _, k := range combo {
		if err := p.ctrl.ToggleKey(k, false); err != nil {
			return fmt.Errorf("release %v: %w", k, err)
		}
	}
	return nil
}
