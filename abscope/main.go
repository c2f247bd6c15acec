package main

import (
	"flag"
	"log"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/abscope/pkg/config"
	"github.com/itohio/abscope/pkg/device"
	"github.com/itohio/abscope/pkg/scope"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM4 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked device instead of serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.abscope")

	// Create main window
	window := application.NewWindow("Absorbance Scope")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	// Create application state
	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
	}

	// Create toolbar
	toolbar := createToolbar(state)

	// Create scope widget for graph display
	scopeWidget := scope.New(cfg.Acquisition.FullScaleVolts)
	state.scopeWidget = scopeWidget

	// Create border layout with toolbar at top and scope widget as content
	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		scopeWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()

	// Window closed; tear down any running acquisition
	stopAcquisition(state)
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      device.Device
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	pauseBtn    *widget.Button
	useMock     bool

	// paused suspends plot updates only; acquisition keeps draining the
	// byte source. Atomic because the UI event path and the acquisition
	// goroutine both touch it.
	paused atomic.Bool

	// Current acquisition chain (nil if not connected)
	chain *acquisitionChain
}

// createToolbar creates the application toolbar with Connect, Pause,
// and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	// Connect button with icon
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	// Settings button with icon
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// Pause toggles live plot updates without stopping acquisition
	pauseBtn := widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), func() {
		handlePauseToggle(state)
	})
	pauseBtn.Disable()
	state.pauseBtn = pauseBtn

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		container.NewHBox(pauseBtn),                // right
		nil, // center (spacer)
	)
}

// handlePauseToggle flips the pause flag. Toggling twice restores the
// original state; the trace keeps filling either way.
func handlePauseToggle(state *appState) {
	paused := !state.paused.Load()
	state.paused.Store(paused)
	updatePauseButton(state.pauseBtn, paused)
}

// updatePauseButton updates the Pause button's visual state.
func updatePauseButton(btn *widget.Button, paused bool) {
	if paused {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
