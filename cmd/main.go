// macro-recorder - Mouse/keyboard macro capture and playback
// Records input-device activity as timestamped snapshots and replays them
// with faithful relative timing.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ivan-guerra/macro-recorder/internal/api"
	"github.com/ivan-guerra/macro-recorder/internal/config"
	"github.com/ivan-guerra/macro-recorder/internal/device"
	"github.com/ivan-guerra/macro-recorder/internal/library"
	"github.com/ivan-guerra/macro-recorder/internal/osutils"
	"github.com/ivan-guerra/macro-recorder/internal/player"
	"github.com/ivan-guerra/macro-recorder/internal/record"
	"github.com/ivan-guerra/macro-recorder/internal/recorder"
)

var (
	version    = "0.1.0"
	recordMins = flag.Int("record", 0, "Record for the given number of minutes")
	rateHz     = flag.Int("rate", 0, "Sampling rate in Hertz (default from settings)")
	delaySec   = flag.Int("delay", 0, "Seconds to wait before recording starts")
	outFile    = flag.String("out", "", "Output file for the recording")
	playFile   = flag.String("play", "", "Play back the given recording file")
	speed      = flag.Float64("speed", 0, "Playback speed multiplier (default from settings)")
	serve      = flag.Bool("serve", false, "Run the remote-control API server")
	port       = flag.Int("port", 0, "API server port (default from settings)")
	listMacros = flag.Bool("list", false, "List stored macros")
	showVer    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("macro-recorder version %s\n", version)
		return
	}

	cfgMgr, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to initialize settings: %v", err)
	}
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load settings: %v", err)
	}

	switch {
	case *recordMins > 0:
		runRecord(cfgMgr)
	case *playFile != "":
		runPlay(cfgMgr)
	case *listMacros:
		runList(cfgMgr)
	case *serve:
		runServe(cfgMgr)
	default:
		flag.Usage()
	}
}

// sessionRate resolves the sampling rate from the flag or settings.
func sessionRate(cfgMgr *config.Manager) int {
	if *rateHz > 0 {
		return *rateHz
	}
	return cfgMgr.Get().RateHz
}

// sessionSpeed resolves the speed multiplier from the flag or settings.
func sessionSpeed(cfgMgr *config.Manager) float64 {
	if *speed > 0 {
		return *speed
	}
	return cfgMgr.Get().SpeedMultiplier
}

// keepAwake engages the platform sleep inhibitor when enabled and returns
// the matching release function.
func keepAwake(cfgMgr *config.Manager) func() {
	if !cfgMgr.Get().KeepAwake {
		return func() {}
	}
	if err := osutils.PreventSleep(); err != nil {
		log.Printf("Warning: failed to inhibit sleep: %v", err)
		return func() {}
	}
	return func() {
		if err := osutils.AllowSleep(); err != nil {
			log.Printf("Warning: failed to restore power management: %v", err)
		}
	}
}

func runRecord(cfgMgr *config.Manager) {
	if *delaySec < 0 {
		log.Fatalf("Start delay must be >= 0, got %d", *delaySec)
	}

	out := *outFile
	if out == "" {
		out = time.Now().Format("20060102-150405") + "_recording.json"
	}

	if *delaySec > 0 {
		log.Printf("Recording starts in %d seconds...", *delaySec)
		time.Sleep(time.Duration(*delaySec) * time.Second)
	}

	release := keepAwake(cfgMgr)
	defer release()

	rec := recorder.New(device.NewListener())
	rate := sessionRate(cfgMgr)
	if err := rec.Start(rate); err != nil {
		log.Fatalf("Failed to start recording: %v", err)
	}
	log.Printf("Recording at %d Hz for %d minute(s). Press Ctrl+C to stop early.", rate, *recordMins)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	select {
	case <-time.After(time.Duration(*recordMins) * time.Minute):
	case <-sigCh:
		interrupted = true
	}

	if err := rec.Stop(); err != nil {
		log.Fatalf("Failed to stop recording: %v", err)
	}

	if interrupted {
		fmt.Print("Recording interrupted, would you like to save all events [y/n]? ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != "y" {
			log.Println("Recording discarded.")
			return
		}
	}

	if err := rec.Save(out); err != nil {
		log.Fatalf("Failed to save recording: %v", err)
	}

	records, _ := rec.Records()
	log.Printf("Saved %d records to %s", len(records), out)
}

func runPlay(cfgMgr *config.Manager) {
	records, err := record.Load(*playFile)
	if err != nil {
		log.Fatalf("Failed to read recording: %v", err)
	}

	release := keepAwake(cfgMgr)
	defer release()

	pl := player.New(device.NewController())

	// Ctrl+C stops playback cooperatively; the final record still executes
	// so the devices land in the recorded end state.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Stopping playback...")
		if err := pl.Stop(); err != nil && !errors.Is(err, player.ErrNotPlaying) {
			log.Printf("Stop failed: %v", err)
		}
	}()

	mult := sessionSpeed(cfgMgr)
	if err := pl.Start(records, mult, nil); err != nil {
		log.Fatalf("Failed to start playback: %v", err)
	}
	log.Printf("Playing %d records at %vx speed", len(records), mult)

	if err := pl.Wait(); err != nil && !errors.Is(err, player.ErrNotPlaying) {
		log.Fatalf("Playback failed: %v", err)
	}
	log.Println("Playback complete.")
}

func runList(cfgMgr *config.Manager) {
	lib, err := library.Open(cfgMgr.Get().MacroDir)
	if err != nil {
		log.Fatalf("Failed to open macro library: %v", err)
	}
	defer lib.Close()

	entries := lib.List()
	if len(entries) == 0 {
		fmt.Println("No stored macros.")
		return
	}

	fmt.Println("Stored Macros:")
	fmt.Println("--------------")
	for _, e := range entries {
		fmt.Printf("%s: %d records, %.1fs, modified %s\n",
			e.Name, e.Records, e.DurationSec, e.ModTime.Format(time.RFC3339))
	}
}

func runServe(cfgMgr *config.Manager) {
	settings := cfgMgr.Get()

	lib, err := library.Open(settings.MacroDir)
	if err != nil {
		log.Fatalf("Failed to open macro library: %v", err)
	}
	defer lib.Close()

	release := keepAwake(cfgMgr)
	defer release()

	rec := recorder.New(device.NewListener())
	pl := player.New(device.NewController())
	server := api.NewServer(cfgMgr, rec, pl, lib)

	p := settings.APIPort
	if *port > 0 {
		p = *port
	}

	log.Printf("macro-recorder service running on port %d. Press Ctrl+C to stop.", p)
	if err := server.Start(p); err != nil {
		log.Fatalf("API server error: %v", err)
	}
}
