package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/abscope/pkg/device"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createAcquisitionTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := device.Ports()
	portOptions := []string{}

	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Applied on submit
	})
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(fmt.Sprintf("%d", state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			portChanged := false
			if portSelect.Selected != "" && portSelect.Selected != state.cfg.Serial.Port {
				state.cfg.Serial.Port = portSelect.Selected
				portChanged = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				if baud != state.cfg.Serial.BaudRate {
					state.cfg.Serial.BaudRate = baud
					portChanged = true
				}
			}
			if err := state.cfg.Save(state.configPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
				return
			}

			// Reconnect on the new port if a link was up
			if portChanged && state.device != nil && state.device.IsConnected() && !state.useMock {
				stopAcquisition(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createAcquisitionTab creates the Acquisition configuration tab.
// Trace depth and interval take effect on the next connect; the trace
// is never resized while a link is up.
func createAcquisitionTab(state *appState) *container.TabItem {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(fmt.Sprintf("%d", state.cfg.Acquisition.IntervalMS))

	depthEntry := widget.NewEntry()
	depthEntry.SetText(fmt.Sprintf("%d", state.cfg.Acquisition.TraceDepth))

	retriesEntry := widget.NewEntry()
	retriesEntry.SetText(fmt.Sprintf("%d", state.cfg.Acquisition.MaxRetries))

	fullScaleEntry := widget.NewEntry()
	fullScaleEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Acquisition.FullScaleVolts))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sampling Interval (ms)", Widget: intervalEntry},
			{Text: "Trace Depth (samples)", Widget: depthEntry},
			{Text: "Frame Retries (0=unbounded)", Widget: retriesEntry},
			{Text: "Full Scale (V)", Widget: fullScaleEntry},
		},
		OnSubmit: func() {
			if interval, err := strconv.Atoi(intervalEntry.Text); err == nil && interval > 0 {
				state.cfg.Acquisition.IntervalMS = interval
			}
			if depth, err := strconv.Atoi(depthEntry.Text); err == nil && depth > 0 {
				state.cfg.Acquisition.TraceDepth = depth
			}
			if retries, err := strconv.Atoi(retriesEntry.Text); err == nil && retries >= 0 {
				state.cfg.Acquisition.MaxRetries = retries
			}
			if fs, err := strconv.ParseFloat(fullScaleEntry.Text, 64); err == nil && fs > 0 {
				state.cfg.Acquisition.FullScaleVolts = fs
			}
			if err := state.cfg.Save(state.configPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Acquisition", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	channelsEntry := widget.NewEntry()
	channelsEntry.SetText(fmt.Sprintf("%d", state.cfg.Mock.Channels))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.NoiseLevel))

	rateEntry := widget.NewEntry()
	rateEntry.SetText(fmt.Sprintf("%d", state.cfg.Mock.SampleRate.Milliseconds()))

	corruptEntry := widget.NewEntry()
	corruptEntry.SetText(fmt.Sprintf("%d", state.cfg.Mock.CorruptEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Channels", Widget: channelsEntry},
			{Text: "Noise Level (byte units)", Widget: noiseEntry},
			{Text: "Sample Rate (ms)", Widget: rateEntry},
			{Text: "Corrupt Every N Frames (0=never)", Widget: corruptEntry},
		},
		OnSubmit: func() {
			if ch, err := strconv.Atoi(channelsEntry.Text); err == nil && ch > 0 && ch <= 255 {
				state.cfg.Mock.Channels = ch
			}
			if noise, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil && noise >= 0 {
				state.cfg.Mock.NoiseLevel = noise
			}
			if rate, err := strconv.Atoi(rateEntry.Text); err == nil && rate > 0 {
				state.cfg.Mock.SampleRate = time.Duration(rate) * time.Millisecond
			}
			if corrupt, err := strconv.Atoi(corruptEntry.Text); err == nil && corrupt >= 0 {
				state.cfg.Mock.CorruptEvery = corrupt
			}
			if err := state.cfg.Save(state.configPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
