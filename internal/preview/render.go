package preview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
)

// Screen layout: a title row, the framed field, then status and key help.
const (
	headerRows = 1
	footerRows = 2
	laneGutter = 11
	maxHotkeys = 9
)

var toneColors = map[model.Tone]tcell.Color{
	model.ToneCyan:    tcell.NewRGBColor(34, 211, 238),
	model.ToneFuchsia: tcell.NewRGBColor(232, 121, 249),
	model.ToneEmerald: tcell.NewRGBColor(52, 211, 153),
}

var (
	frameStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	titleStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	helpStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// ToneStyle returns the screen style of a marker tone.
func ToneStyle(t model.Tone) tcell.Style {
	c, ok := toneColors[t]
	if !ok {
		c = toneColors[model.ToneCyan]
	}
	return tcell.StyleDefault.Foreground(c).Bold(true)
}

// Renderer draws widget snapshots on a tcell screen.
type Renderer struct {
	screen tcell.Screen
	lanes  []string
}

// NewRenderer creates a renderer. lanes labels the rows of a waveform and
// may be empty for the other layouts.
func NewRenderer(screen tcell.Screen, lanes []string) *Renderer {
	return &Renderer{screen: screen, lanes: lanes}
}

// Cell returns the screen cell a position falls on inside a w by h screen.
// The second result is false when the screen is too small for a field.
func (r *Renderer) Cell(p model.Position, w, h int) (int, int, bool) {
	left, top, fw, fh := r.field(p.Layout, w, h)
	if fw <= 0 || fh <= 0 {
		return 0, 0, false
	}
	x, y := p.XY()
	col := left + int(clamp01(x)*float64(fw-1)+0.5)
	row := top + int(clamp01(y)*float64(fh-1)+0.5)
	return col, row, true
}

func (r *Renderer) field(layout model.Layout, w, h int) (left, top, fw, fh int) {
	left, top = 1, headerRows+1
	fw, fh = w-2, h-headerRows-footerRows-2
	if layout == model.LayoutLane && len(r.lanes) > 0 {
		left += laneGutter
		fw -= laneGutter
	}
	return left, top, fw, fh
}

// Draw repaints the whole screen for snap. note is shown next to the key
// help, typically the outcome of the last selection.
func (r *Renderer) Draw(snap types.Snapshot, note string) {
	s := r.screen
	s.Clear()
	w, h := s.Size()
	layout := snap.Kind.Layout()

	title := fmt.Sprintf(" %s  ·  %s  ·  #%d ", snap.Kind, snap.Phase, snap.Seq)
	r.text(0, 0, w, title, titleStyle)

	_, top, fw, fh := r.field(layout, w, h)
	if fw > 0 && fh > 0 {
		r.box(0, headerRows, w, fh+2)
		if layout == model.LayoutLane {
			r.drawLanes(top, fh)
		}
		for i, m := range snap.Markers {
			x, y, _ := r.Cell(m.Position, w, h)
			style := ToneStyle(m.Tone)
			if m.ID == snap.Selected {
				style = style.Reverse(true)
			}
			s.SetContent(x, y, glyph(i), nil, style)
		}
	}

	r.text(0, h-footerRows, w, snap.Status, statusStyle)
	help := "1-9 select · space random · q quit"
	if note != "" {
		help += "  ·  " + note
	}
	r.text(0, h-1, w, help, helpStyle)
	s.Show()
}

func (r *Renderer) drawLanes(top, fh int) {
	for i, name := range r.lanes {
		y := (float64(i) + 0.5) / float64(model.LaneCount)
		row := top + int(y*float64(fh-1)+0.5)
		r.text(1, row, laneGutter-1, name, frameStyle)
	}
}

func (r *Renderer) box(x, y, w, h int) {
	s := r.screen
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, tcell.RuneHLine, nil, frameStyle)
		s.SetContent(i, y+h-1, tcell.RuneHLine, nil, frameStyle)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, tcell.RuneVLine, nil, frameStyle)
		s.SetContent(x+w-1, j, tcell.RuneVLine, nil, frameStyle)
	}
	s.SetContent(x, y, tcell.RuneULCorner, nil, frameStyle)
	s.SetContent(x+w-1, y, tcell.RuneURCorner, nil, frameStyle)
	s.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, frameStyle)
	s.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, frameStyle)
}

func (r *Renderer) text(x, y, width int, str string, style tcell.Style) {
	for _, c := range str {
		if width <= 0 {
			return
		}
		r.screen.SetContent(x, y, c, nil, style)
		x++
		width--
	}
}

// glyph labels the first nine markers with their hotkey.
func glyph(i int) rune {
	if i < maxHotkeys {
		return rune('1' + i)
	}
	return '●'
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
