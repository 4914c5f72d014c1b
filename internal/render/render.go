// Package render draws a session summary as a PNG: the drill table, a bar
// graphic of loads against the match reference, and the summary text blocks.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/meltforce/trainingload/internal/load"
	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Base geometry at DefaultWidth; everything scales with Style.Width.
const (
	baseRowHeight   = 40
	basePadding     = 40
	baseGap         = 30
	baseChartHeight = 280
	baseTextHeight  = 150
	baseMinHeight   = 800
	baseHeightStart = 600
	baseHeightRow   = 50

	bodySize    = 15
	headingSize = 16

	maxBarLabel = 14
)

// Render writes the summary as a PNG image to w.
func Render(w io.Writer, s load.SessionSummary, ref load.MatchReference, st *Style) error {
	img, err := Draw(s, ref, st)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// Draw lays out the summary onto a new RGBA image.
func Draw(s load.SessionSummary, ref load.MatchReference, st *Style) (*image.RGBA, error) {
	l, err := newLayout(st, len(s.Drills))
	if err != nil {
		return nil, err
	}
	d := load.NewDisplay(s, ref)

	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	l.drawTable(img, d)

	bars, err := renderBars(s, ref, st, l.chart.Dx(), l.chart.Dy())
	if err != nil {
		return nil, err
	}
	draw.Draw(img, l.chart, bars, bars.Bounds().Min, draw.Over)

	l.drawSummary(img, d)
	return img, nil
}

// Size returns the pixel size of the image Render produces for n drills.
func Size(st *Style, n int) (width, height int) {
	scale := float64(st.Width) / DefaultWidth
	px := func(v float64) int { return int(math.Round(v * scale)) }

	content := px(basePadding) + px(baseRowHeight)*(n+2) + px(baseGap) +
		px(baseChartHeight) + px(baseGap) + px(baseTextHeight) + px(basePadding)
	// Grows like a 12 x max(8, 6 + rows/2) inch figure at 100 dpi.
	figure := px(math.Max(baseMinHeight, baseHeightStart+baseHeightRow*float64(n+1)))
	return st.Width, max(content, figure)
}

type layout struct {
	st            *Style
	width, height int
	scale         float64

	regular, bold, heading font.Face

	rowHeight int
	table     image.Rectangle
	chart     image.Rectangle
	text      image.Rectangle
}

func newLayout(st *Style, n int) (*layout, error) {
	l := &layout{st: st, scale: float64(st.Width) / DefaultWidth}
	l.width, l.height = Size(st, n)

	var err error
	if l.regular, err = newFace(st.Regular, bodySize*l.scale); err != nil {
		return nil, fmt.Errorf("creating regular face: %w", err)
	}
	if l.bold, err = newFace(st.Bold, bodySize*l.scale); err != nil {
		return nil, fmt.Errorf("creating bold face: %w", err)
	}
	if l.heading, err = newFace(st.Bold, headingSize*l.scale); err != nil {
		return nil, fmt.Errorf("creating heading face: %w", err)
	}

	pad, gap := l.px(basePadding), l.px(baseGap)
	l.rowHeight = l.px(baseRowHeight)

	// Table spans the middle 80% of the width.
	left, right := l.width/10, l.width-l.width/10
	top := pad
	l.table = image.Rect(left, top, right, top+l.rowHeight*(n+2))

	textTop := l.height - pad - l.px(baseTextHeight)
	l.text = image.Rect(left, textTop, right, l.height-pad)
	l.chart = image.Rect(left, l.table.Max.Y+gap, right, textTop-gap)
	if l.chart.Dy() < l.px(baseChartHeight) {
		l.chart.Max.Y = l.chart.Min.Y + l.px(baseChartHeight)
	}
	return l, nil
}

func (l *layout) px(v float64) int {
	return int(math.Round(v * l.scale))
}

func (l *layout) drawTable(img *image.RGBA, d load.Display) {
	lb := l.st.Labels
	rows := make([][4]string, 0, len(d.Rows)+2)
	rows = append(rows, [4]string{lb.Drill, lb.Duration, lb.Exertion, lb.Load})
	for _, r := range d.Rows {
		rows = append(rows, [4]string{r.Name, r.Duration, r.Exertion, r.Load})
	}
	rows = append(rows, [4]string{lb.Session, d.Total.Duration, d.Total.Exertion, d.Total.Load})

	colWidth := l.table.Dx() / 4
	for i, row := range rows {
		y := l.table.Min.Y + i*l.rowHeight
		emphasised := i == 0 || i == len(rows)-1
		if emphasised {
			fill(img, image.Rect(l.table.Min.X, y, l.table.Max.X, y+l.rowHeight), l.st.Shade)
		}
		face := l.regular
		if emphasised {
			face = l.bold
		}
		for c, text := range row {
			cell := image.Rect(l.table.Min.X+c*colWidth, y, l.table.Min.X+(c+1)*colWidth, y+l.rowHeight)
			l.drawCentered(img, face, cell, text)
		}
	}

	// Grid
	for i := 0; i <= len(rows); i++ {
		y := l.table.Min.Y + i*l.rowHeight
		fill(img, image.Rect(l.table.Min.X, y, l.table.Min.X+4*colWidth+1, y+1), l.st.Grid)
	}
	for c := 0; c <= 4; c++ {
		x := l.table.Min.X + c*colWidth
		fill(img, image.Rect(x, l.table.Min.Y, x+1, l.table.Min.Y+len(rows)*l.rowHeight), l.st.Grid)
	}
}

func (l *layout) drawSummary(img *image.RGBA, d load.Display) {
	lb := l.st.Labels
	lineHeight := l.px(32)
	top := l.text.Min.Y + l.heading.Metrics().Ascent.Ceil()

	// Blocks sit at 20%, 40% and 60% of the width.
	x0, x1, x2 := l.width*2/10, l.width*4/10, l.width*6/10

	l.drawText(img, l.heading, x0, top, lb.Reference)
	l.drawText(img, l.regular, x0, top+lineHeight, d.Reference)

	l.drawText(img, l.heading, x1, top, lb.TrainingLoad)
	l.drawFigure(img, x1, top+lineHeight, lb.Absolute, d.LoadAbsolute)
	l.drawFigure(img, x1, top+2*lineHeight, lb.Relative, d.LoadRelative)

	l.drawText(img, l.heading, x2, top, lb.TrainingIntensity)
	l.drawFigure(img, x2, top+lineHeight, lb.Absolute, d.IntensityAbsolute)
	l.drawFigure(img, x2, top+2*lineHeight, lb.Relative, d.IntensityRelative)
}

// drawFigure draws "label expr" in the regular face followed by the value in bold.
func (l *layout) drawFigure(img *image.RGBA, x, y int, label string, f load.Figure) {
	prefix := label + " "
	if f.Expr != "" {
		prefix += f.Expr + " "
	}
	x = l.drawText(img, l.regular, x, y, prefix)
	l.drawText(img, l.bold, x, y, f.Value)
}

// drawText draws s with its baseline at y and returns the x after the text.
func (l *layout) drawText(img *image.RGBA, face font.Face, x, y int, s string) int {
	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(l.st.Text),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(s)
	return dr.Dot.X.Ceil()
}

func (l *layout) drawCentered(img *image.RGBA, face font.Face, cell image.Rectangle, s string) {
	s = fitText(face, s, cell.Dx()-l.px(12))
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	x := cell.Min.X + (cell.Dx()-w)/2
	y := cell.Min.Y + (cell.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	l.drawText(img, face, x, y, s)
}

// fitText shortens s with an ellipsis until it fits in width pixels.
func fitText(face font.Face, s string, width int) string {
	if font.MeasureString(face, s).Ceil() <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		t := string(r) + "…"
		if font.MeasureString(face, t).Ceil() <= width {
			return t
		}
	}
	return ""
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// renderBars draws per-drill loads next to the session total and the match
// reference load.
func renderBars(s load.SessionSummary, ref load.MatchReference, st *Style, width, height int) (image.Image, error) {
	bars := make([]chart.Value, 0, len(s.Drills)+2)
	top := math.Max(s.TotalLoad, ref.Load())
	for _, d := range s.Drills {
		v := 0.0
		if d.Load != nil {
			v = *d.Load
		}
		bars = append(bars, chart.Value{
			Label: shorten(d.Name, maxBarLabel),
			Value: v,
			Style: chart.Style{FillColor: st.DrillBar, StrokeColor: st.DrillBar, StrokeWidth: 1},
		})
	}
	bars = append(bars,
		chart.Value{
			Label: st.Labels.Session,
			Value: s.TotalLoad,
			Style: chart.Style{FillColor: st.SessionBar, StrokeColor: st.SessionBar, StrokeWidth: 1},
		},
		chart.Value{
			Label: st.Labels.Match,
			Value: ref.Load(),
			Style: chart.Style{FillColor: st.ReferenceBar, StrokeColor: st.ReferenceBar, StrokeWidth: 1},
		},
	)
	if top <= 0 {
		top = 1
	}

	barWidth := width / (len(bars)*3/2 + 2)
	barWidth = min(max(barWidth, 8), 80)

	bc := chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 8}},
		YAxis: chart.YAxis{
			Name:  st.Labels.Load + " (AU)",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering bar chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decoding bar chart: %w", err)
	}
	return img, nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
