package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/abscope/pkg/trace"
)

// palette cycles per channel, matching the plot colors of the original
// visualization tool.
var palette = []color.RGBA{
	{R: 0x37, G: 0x7e, B: 0xb8, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x00, A: 0xff},
	{R: 0x4d, G: 0xaf, B: 0x4a, A: 0xff},
	{R: 0xf7, G: 0x81, B: 0xbf, A: 0xff},
	{R: 0x5e, G: 0x4c, B: 0x5a, A: 0xff},
}

// ChannelColor returns the display color for a channel index.
func ChannelColor(ch int) color.RGBA {
	return palette[ch%len(palette)]
}

// ScopeWidget is a custom Fyne widget that displays the rolling
// multi-channel absorbance trace. The voltage range is fixed at
// [0, full scale]; the time axis comes with the data.
type ScopeWidget struct {
	widget.BaseWidget

	fullScale float64

	// Data (protected by mu)
	mu   sync.RWMutex
	rows [][]float64
	axis []float64

	// Display buffers (reused for downsampling)
	displayRows [][]float64
	displayAxis []float64

	maxDisplayPoints int
}

// New creates a new ScopeWidget with the given full-scale voltage.
func New(fullScale float64) *ScopeWidget {
	s := &ScopeWidget{
		fullScale:        fullScale,
		displayRows:      make([][]float64, 0, 1000),
		displayAxis:      make([]float64, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with a trace snapshot and its time
// axis. Must be called on the Fyne main thread (wrap in fyne.Do when
// calling from the acquisition goroutine).
func (s *ScopeWidget) UpdateData(rows [][]float64, axis []float64) {
	s.mu.Lock()

	// Downsample for display (reuse buffers)
	s.displayRows = trace.DownsampleRows(s.displayRows, rows, s.maxDisplayPoints)
	s.displayAxis = trace.DownsampleAxis(s.displayAxis, axis, s.maxDisplayPoints)

	// Store full data
	s.rows = rows
	s.axis = axis

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:    s,
		grid:     grid,
		objects:  []fyne.CanvasObject{grid},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
