package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Terminal cells map onto page pixels at a fixed size.
const (
	cellWidth  = 20.0
	cellHeight = 30.0
	headerRows = 2
)

// tuiCommand drives frames from the terminal.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		cf        configFlags
		instances string
		logFile   string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Annotate frames interactively in the terminal",
		Long: `TUI shows the instances side by side. Click to place and drag features,
right-click for the context action and use the keyboard on the focused
instance:

  1 2 3     analysis, harmonics, doppler
  + - 0     zoom in, out, reset
  arrows    nudge the selection (shift for larger steps)
  del esc   delete, cancel
  tab       move focus
  q         quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cf.load(cmd)
			if err != nil {
				return err
			}

			// The alternate screen owns the terminal; logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				fh, err := os.Create(logFile)
				if err != nil {
					return err
				}
				defer fh.Close()
				w = fh
			}
			logger := newLogger(w, c.Logger.GetLevel())

			reg := focus.NewRegistry()
			frames, err := newPage(cfg, strings.Split(instances, ","), reg, logger)
			if err != nil {
				return err
			}
			defer closeAll(frames)

			p := tea.NewProgram(newTUIModel(frames, reg),
				tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cf.register(cmd)
	cmd.Flags().StringVar(&instances, "instances", "A,B", "instances to show (comma-separated)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")

	return cmd
}

// =============================================================================
// tuiModel - Interactive annotation
// =============================================================================

type tuiModel struct {
	frames   []*frame.Frame
	registry *focus.Registry
	captured string // instance that received the last press
	hovered  string
	status   string
}

func newTUIModel(frames []*frame.Frame, reg *focus.Registry) tuiModel {
	return tuiModel{frames: frames, registry: reg}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		return m.mouse(msg), nil
	}
	return m, nil
}

var tuiModes = map[string]state.Mode{
	"1": state.ModeAnalysis,
	"2": state.ModeHarmonics,
	"3": state.ModeDoppler,
}

var tuiKeys = map[string]mode.KeyEvent{
	"up":          {Key: mode.KeyArrowUp},
	"down":        {Key: mode.KeyArrowDown},
	"left":        {Key: mode.KeyArrowLeft},
	"right":       {Key: mode.KeyArrowRight},
	"shift+up":    {Key: mode.KeyArrowUp, Shift: true},
	"shift+down":  {Key: mode.KeyArrowDown, Shift: true},
	"shift+left":  {Key: mode.KeyArrowLeft, Shift: true},
	"shift+right": {Key: mode.KeyArrowRight, Shift: true},
	"delete":      {Key: mode.KeyDelete},
	"backspace":   {Key: mode.KeyBackspace},
	"esc":         {Key: mode.KeyEscape},
}

func (m tuiModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	switch s {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.cycleFocus()
		return m, nil
	}

	f := m.focused()
	if name, ok := tuiModes[s]; ok && f != nil {
		if err := f.SwitchMode(name); err != nil {
			m.status = err.Error()
		}
		return m, nil
	}
	switch s {
	case "+", "=":
		if f != nil {
			m.status = fmt.Sprintf("zoom %.2f", f.ZoomIn())
		}
		return m, nil
	case "-":
		if f != nil {
			m.status = fmt.Sprintf("zoom %.2f", f.ZoomOut())
		}
		return m, nil
	case "0":
		if f != nil {
			m.status = fmt.Sprintf("zoom %.2f", f.ResetZoom())
		}
		return m, nil
	}
	if ev, ok := tuiKeys[s]; ok {
		m.registry.DispatchKey(ev)
	}
	return m, nil
}

func (m tuiModel) mouse(msg tea.MouseMsg) tuiModel {
	p := cellToPage(msg.X, msg.Y)
	under := m.frameAt(p)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			id, hit := m.registry.RoutePointerDown(p)
			if !hit {
				m.captured = ""
				return m
			}
			m.captured = id
			f := m.frame(id)
			f.PointerDown(pointer(f, mode.PointerDown, p, msg.Shift))
		case tea.MouseButtonRight:
			if under != nil {
				under.ContextMenu(pointer(under, mode.PointerContextMenu, p, msg.Shift))
			}
		case tea.MouseButtonWheelUp:
			if under != nil {
				under.ZoomIn()
			}
		case tea.MouseButtonWheelDown:
			if under != nil {
				under.ZoomOut()
			}
		}
	case tea.MouseActionMotion:
		target := under
		if m.captured != "" {
			target = m.frame(m.captured)
		}
		if prev := m.frame(m.hovered); prev != nil && prev != target {
			prev.PointerLeave()
		}
		m.hovered = ""
		if target != nil {
			m.hovered = target.ID()
			target.PointerMove(pointer(target, mode.PointerMove, p, msg.Shift))
		}
	case tea.MouseActionRelease:
		if f := m.frame(m.captured); f != nil {
			f.PointerUp(pointer(f, mode.PointerUp, p, msg.Shift))
		}
		m.captured = ""
	}
	return m
}

func (m *tuiModel) cycleFocus() {
	if len(m.frames) == 0 {
		return
	}
	next := 0
	for i, f := range m.frames {
		if f.ID() == m.registry.Focused() {
			next = (i + 1) % len(m.frames)
		}
	}
	m.registry.Claim(m.frames[next].ID())
}

func (m tuiModel) focused() *frame.Frame { return m.frame(m.registry.Focused()) }

func (m tuiModel) frame(id string) *frame.Frame {
	for _, f := range m.frames {
		if f.ID() == id {
			return f
		}
	}
	return nil
}

func (m tuiModel) frameAt(p coords.Point) *frame.Frame {
	for _, f := range m.frames {
		if f.Bounds().Contains(p) {
			return f
		}
	}
	return nil
}

// cellToPage returns the page pixel at the center of a terminal cell.
func cellToPage(col, row int) coords.Point {
	return coords.Point{
		X: float64(col)*cellWidth + cellWidth/2,
		Y: float64(row-headerRows)*cellHeight + cellHeight/2,
	}
}

func pointer(f *frame.Frame, kind mode.PointerKind, page coords.Point, shift bool) mode.PointerEvent {
	p := f.ToLocal(page)
	ev := mode.PointerEvent{Kind: kind, X: p.X, Y: p.Y, Shift: shift}
	if kind == mode.PointerContextMenu {
		ev.Button = mode.ButtonSecondary
	}
	return ev
}

// =============================================================================
// View
// =============================================================================

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("GramFrame"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render("1/2/3 mode  +/-/0 zoom  tab focus  q quit"))
	b.WriteString("\n\n")

	cv := newCanvas(m.frames)
	for _, f := range m.frames {
		cv.drawFrame(f)
	}
	b.WriteString(cv.String())
	b.WriteString("\n")

	focusedID := m.registry.Focused()
	for _, f := range m.frames {
		b.WriteString(statusLine(f, f.ID() == focusedID))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(StyleDim.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func statusLine(f *frame.Frame, focused bool) string {
	sc := f.Scene()
	cursor := "  "
	name := StyleValue.Render(f.ID())
	if focused {
		cursor = "▸ "
		name = StyleHighlight.Render(f.ID())
	}
	parts := []string{cursor + name, modeTag(sc.Mode)}
	if sc.Degraded != "" {
		parts = append(parts, StyleError.Render(sc.Degraded))
	}
	if sc.Readout != nil {
		text := sc.Readout.Text
		if sc.Readout.Speed != "" {
			text += "  " + sc.Readout.Speed
		}
		parts = append(parts, text)
	}
	parts = append(parts, StyleDim.Render(sc.Guidance))
	return strings.Join(parts, StyleDim.Render(" · "))
}

// canvas is a grid of terminal cells covering the page.
type canvas struct {
	cols, rows int
	runes      [][]rune
	colors     [][]string
}

func newCanvas(frames []*frame.Frame) *canvas {
	var right, bottom float64
	for _, f := range frames {
		b := f.Bounds()
		right = math.Max(right, b.Right())
		bottom = math.Max(bottom, b.Bottom())
	}
	cv := &canvas{cols: int(math.Ceil(right / cellWidth)), rows: int(math.Ceil(bottom / cellHeight))}
	cv.runes = make([][]rune, cv.rows)
	cv.colors = make([][]string, cv.rows)
	for r := range cv.runes {
		cv.runes[r] = []rune(strings.Repeat(" ", cv.cols))
		cv.colors[r] = make([]string, cv.cols)
	}
	return cv
}

func (cv *canvas) set(col, row int, r rune, color string) {
	if row < 0 || row >= cv.rows || col < 0 || col >= cv.cols {
		return
	}
	cv.runes[row][col] = r
	cv.colors[row][col] = color
}

func (cv *canvas) text(col, row int, s, color string) {
	for i, r := range []rune(s) {
		cv.set(col+i, row, r, color)
	}
}

// drawFrame rasterizes the frame's scene at its page position.
func (cv *canvas) drawFrame(f *frame.Frame) {
	sc := f.Scene()
	vp := f.Viewport()
	origin := f.Bounds()
	cell := func(p coords.Point) (float64, float64) {
		s := vp.ToScreen(p)
		return (s.X + origin.Left) / cellWidth, (s.Y + origin.Top) / cellHeight
	}

	c0, r0 := cell(coords.Point{X: sc.Image.Left, Y: sc.Image.Top})
	c1, r1 := cell(coords.Point{X: sc.Image.Right(), Y: sc.Image.Bottom()})
	cv.box(int(c0), int(r0), int(c1), int(r1), "#585858")
	if sc.Degraded != "" {
		cv.text(int(c0)+1, int(r0)+1, sc.Degraded, "#d75f5f")
	}

	// The cursor goes underneath the features.
	if l, ok := sc.Layer(overlay.LayerCursor); ok {
		for _, sh := range l.Shapes {
			cv.shape(sh, cell)
		}
	}
	for _, l := range sc.Layers {
		if l.Name == overlay.LayerAxes || l.Name == overlay.LayerCursor {
			continue
		}
		for _, sh := range l.Shapes {
			cv.shape(sh, cell)
		}
	}
}

func (cv *canvas) box(c0, r0, c1, r1 int, color string) {
	for c := c0; c <= c1; c++ {
		cv.set(c, r0, '─', color)
		cv.set(c, r1, '─', color)
	}
	for r := r0; r <= r1; r++ {
		cv.set(c0, r, '│', color)
		cv.set(c1, r, '│', color)
	}
	cv.set(c0, r0, '┌', color)
	cv.set(c1, r0, '┐', color)
	cv.set(c0, r1, '└', color)
	cv.set(c1, r1, '┘', color)
}

func (cv *canvas) shape(sh overlay.Shape, cell func(coords.Point) (float64, float64)) {
	color := sh.Color
	switch sh.Kind {
	case overlay.KindLine:
		c0, r0 := cell(coords.Point{X: sh.X1, Y: sh.Y1})
		c1, r1 := cell(coords.Point{X: sh.X2, Y: sh.Y2})
		cv.line(c0, r0, c1, r1, lineRune(c1-c0, r1-r0, sh.Dashed), color)
	case overlay.KindPolyline:
		for i := 1; i < len(sh.Points); i++ {
			c0, r0 := cell(sh.Points[i-1])
			c1, r1 := cell(sh.Points[i])
			cv.line(c0, r0, c1, r1, '·', color)
		}
	case overlay.KindCrosshair:
		c, r := cell(coords.Point{X: sh.X1, Y: sh.Y1})
		cv.set(int(c), int(r), '+', color)
	case overlay.KindCircle:
		c, r := cell(coords.Point{X: sh.X1, Y: sh.Y1})
		cv.set(int(c), int(r), '◉', color)
	case overlay.KindLabel:
		c, r := cell(coords.Point{X: sh.X1, Y: sh.Y1})
		cv.text(int(c), int(r), sh.Text, color)
	}
}

func (cv *canvas) line(c0, r0, c1, r1 float64, ch rune, color string) {
	steps := int(math.Max(math.Abs(c1-c0), math.Abs(r1-r0)))
	if steps == 0 {
		cv.set(int(c0), int(r0), ch, color)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cv.set(int(c0+t*(c1-c0)), int(r0+t*(r1-r0)), ch, color)
	}
}

func lineRune(dc, dr float64, dashed bool) rune {
	switch {
	case math.Abs(dc) >= 2*math.Abs(dr):
		if dashed {
			return '╌'
		}
		return '─'
	case math.Abs(dr) >= 2*math.Abs(dc):
		if dashed {
			return '┆'
		}
		return '│'
	}
	return '·'
}

// String renders the grid, styling runs of equally colored cells.
func (cv *canvas) String() string {
	var b strings.Builder
	for r := 0; r < cv.rows; r++ {
		start := 0
		for c := 1; c <= cv.cols; c++ {
			if c < cv.cols && cv.colors[r][c] == cv.colors[r][start] {
				continue
			}
			run := string(cv.runes[r][start:c])
			if color := cv.colors[r][start]; color != "" {
				run = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run)
			}
			b.WriteString(run)
			start = c
		}
		b.WriteString("\n")
	}
	return b.String()
}
