package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/itohio/abscope/pkg/device"
	"github.com/itohio/abscope/pkg/frame"
	"github.com/itohio/abscope/pkg/sample"
	"github.com/itohio/abscope/pkg/trace"
)

// acquisitionChain tracks a running acquisition for graceful shutdown.
type acquisitionChain struct {
	device device.Device
	done   chan struct{} // Closed when the acquisition goroutine exits
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		stopAcquisition(state)
		if state.useMock {
			fmt.Println("Disconnected from mocked device")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// Connect
	var dev device.Device
	if state.useMock {
		dev = device.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked device")
	} else {
		dev = device.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate)
	}

	if err := dev.Connect(); err != nil {
		// Without a byte source there is nothing to initialize; stay
		// disconnected
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev
	if state.useMock {
		fmt.Printf("Connected to mocked device\n")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	state.pauseBtn.Enable()

	chain := &acquisitionChain{
		device: dev,
		done:   make(chan struct{}),
	}
	state.chain = chain

	go runAcquisition(state, chain)
}

// stopAcquisition gracefully closes the acquisition chain. Closing the
// device unblocks the pending read; the goroutine then exits and closes
// the done channel.
func stopAcquisition(state *appState) {
	chain := state.chain
	if chain == nil {
		return
	}

	chain.device.Close()
	<-chain.done

	state.chain = nil
	state.device = nil

	state.paused.Store(false)
	updatePauseButton(state.pauseBtn, false)
	state.pauseBtn.Disable()
}

// runAcquisition is the acquisition loop: latch the channel topology
// from the first valid frame, allocate the rolling trace, then tick as
// fast as the decoder delivers. Every tick writes the trace even while
// paused, keeping the serial buffer drained; only plot updates are
// skipped.
func runAcquisition(state *appState, chain *acquisitionChain) {
	defer close(chain.done)

	dec := frame.NewDecoder(chain.device, state.cfg.Acquisition.MaxRetries)

	var topo frame.Topology
	for {
		var err error
		topo, err = dec.Topology()
		if err == nil {
			break
		}
		if errors.Is(err, frame.ErrNoValidFrame) {
			log.Printf("Still waiting for a valid frame (%d lines discarded)", dec.Mismatches())
			continue
		}
		log.Printf("Failed to detect channel topology: %v", err)
		notifyDisconnected(state, chain)
		return
	}
	log.Printf("Detected %d sensor channel(s)", topo.Channels)

	buf, err := trace.New(state.cfg.Acquisition.TraceDepth, topo.Channels)
	if err != nil {
		log.Printf("Failed to allocate trace: %v", err)
		notifyDisconnected(state, chain)
		return
	}
	axis := trace.TimeAxis(buf.Depth(), state.cfg.Interval())

	pipeline := sample.NewPipeline(dec, buf, state.cfg.Acquisition.FullScaleVolts)

	// Throttle plot updates to ~60 FPS; acquisition itself is paced by
	// the device, not by the renderer
	const updateInterval = 16 * time.Millisecond
	var lastUpdate time.Time

	for {
		if _, err := pipeline.Tick(); err != nil {
			if errors.Is(err, frame.ErrNoValidFrame) {
				log.Printf("No valid frame within retry limit (%d lines discarded so far), still reading", dec.Mismatches())
				continue
			}
			log.Printf("Acquisition stopped: %v", err)
			notifyDisconnected(state, chain)
			return
		}

		if state.paused.Load() {
			continue
		}

		now := time.Now()
		if now.Sub(lastUpdate) < updateInterval {
			continue
		}
		lastUpdate = now

		rows := buf.Snapshot()
		fyne.Do(func() {
			state.scopeWidget.UpdateData(rows, axis)
		})
	}
}

// notifyDisconnected resets the connection UI after the acquisition
// goroutine dies on its own (transport failure, unrecoverable stream).
// Scheduled on the main thread; a no-op if the user already
// disconnected this chain.
func notifyDisconnected(state *appState, chain *acquisitionChain) {
	fyne.Do(func() {
		if state.chain != chain {
			return
		}
		stopAcquisition(state)
	})
}
