package scope

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Grid lines and axis labels
	gridLines []*canvas.Line
	gridTexts []*canvas.Text

	// Legend labels, one per channel
	legendTexts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	// Background fills entire widget
	r.grid.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Size changed, redraw with new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	rows := r.scope.displayRows
	axis := r.scope.displayAxis
	fullScale := r.scope.fullScale
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}
	r.gridLines = r.gridLines[:0]
	r.gridTexts = r.gridTexts[:0]
	r.legendTexts = r.legendTexts[:0]

	// Calculate margins
	marginLeft := float32(60.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	var xMax float64
	if len(axis) > 0 {
		xMax = axis[len(axis)-1]
	}

	r.drawGrid(plotX, plotY, plotWidth, plotHeight, fullScale, xMax)

	if len(rows) > 1 && len(axis) >= len(rows) {
		width := len(rows[0])
		for ch := range width {
			r.drawChannel(plotX, plotY, plotWidth, plotHeight, rows, axis, ch, fullScale, xMax)
		}
		r.drawLegend(plotX, plotY, plotWidth, width)
	}
}

// drawGrid draws the oscilloscope-style grid with voltage and time labels.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, fullScale, xMax float64) {
	// Horizontal grid lines (voltage)
	numHLines := 8
	for i := range numHLines + 1 {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// Y-axis label
		value := fullScale - float64(i)*fullScale/float64(numHLines)
		text := canvas.NewText(fmt.Sprintf("%.2fV", value), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	for i := range numVLines + 1 {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// X-axis label in seconds
		seconds := float64(i) * xMax / float64(numVLines)
		text := canvas.NewText(fmt.Sprintf("%.1fs", seconds), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}
}

// drawChannel draws one channel's trace as connected line segments.
func (r *scopeRenderer) drawChannel(plotX, plotY, plotWidth, plotHeight float32, rows [][]float64, axis []float64, ch int, fullScale, xMax float64) {
	col := ChannelColor(ch)

	points := make([]fyne.Position, 0, len(rows))
	for i, row := range rows {
		if ch >= len(row) {
			continue
		}
		var fx float32
		if xMax > 0 {
			fx = float32(axis[i] / xMax)
		}
		fy := float32(row[ch] / fullScale)

		// Clamp into the plot rectangle; noise spikes must not draw
		// outside the grid
		fx = math32.Max(0, math32.Min(1, fx))
		fy = math32.Max(0, math32.Min(1, fy))

		x := plotX + fx*plotWidth
		y := plotY + plotHeight - fy*plotHeight
		points = append(points, fyne.NewPos(x, y))
	}

	// Draw connected line segments
	for i := range len(points) - 1 {
		line := canvas.NewLine(col)
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// drawLegend draws one "Sensor n" label per channel in the top-right
// corner of the plot area.
func (r *scopeRenderer) drawLegend(plotX, plotY, plotWidth float32, channels int) {
	for ch := range channels {
		text := canvas.NewText(fmt.Sprintf("Sensor %d", ch+1), ChannelColor(ch))
		text.TextSize = 11
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX+plotWidth-10, plotY+10+float32(ch)*14))
		r.legendTexts = append(r.legendTexts, text)
		r.objects = append(r.objects, text)
	}
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}
