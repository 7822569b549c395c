package cli

import (
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/component/legacy"
	"github.com/chatglass/chatglass/pkg/resolve"
)

// Preview styles
var (
	previewGlyphStyle   = lipgloss.NewStyle().Foreground(colorGray)
	previewTooltipStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

const (
	// Chrome rows around the viewport: header, separator, separator, help.
	previewChromeLines = 4

	// contentStartY is the first screen row of viewport content.
	contentStartY = 2

	// contentPadX is the left margin before content columns.
	contentPadX = 1

	// statusFadeDelay is how long a status notice stays visible.
	statusFadeDelay = 2 * time.Second
)

const (
	previewGlyphCopy    = "⧉"
	previewGlyphBlocked = "⊘"
)

// =============================================================================
// Messages
// =============================================================================

// scrambleTickMsg reports that an obfuscated segment produced a new
// value and the content needs repainting.
type scrambleTickMsg struct{}

// fileChangedMsg reports that the watched input file changed on disk.
type fileChangedMsg struct{}

// statusFadeMsg clears the status notice it was scheduled for. The id
// keeps a stale fade from wiping a newer notice.
type statusFadeMsg struct{ id int }

// =============================================================================
// Repainter - scramble timers to program messages
// =============================================================================

// repainter forwards scramble callbacks into the running program.
// Bubbletea copies models by value, so the model holds a pointer to a
// single repainter; the program's Send function is attached after
// construction. Callbacks arriving before then are dropped, which is
// fine: the first full paint picks up current values.
type repainter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (r *repainter) set(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *repainter) repaint() {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(scrambleTickMsg{})
	}
}

// =============================================================================
// previewModel - Interactive component preview
// =============================================================================

type previewParams struct {
	path    string
	legacy  bool
	resolve resolve.Options
	watch   bool
}

// gridSpan maps a column range on one content line to the run painted
// there. Ranges are half-open cell intervals, in content coordinates.
type gridSpan struct {
	x0, x1 int
	run    *resolve.Run
}

// tooltipState is a visible hover tooltip. It re-anchors to the most
// recent pointer position over the host run and disappears as soon as
// the pointer leaves it.
type tooltipState struct {
	content *resolve.Run
	x, y    int
}

type previewModel struct {
	params  previewParams
	repaint *repainter

	data []byte
	run  *resolve.Run

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	lines []string
	grid  [][]gridSpan

	tooltip  *tooltipState
	status   string
	statusID int
}

func newPreviewModel(params previewParams) previewModel {
	return previewModel{
		params:  params,
		repaint: &repainter{},
	}
}

// load reads the input, resolves it and swaps the live run tree. The
// old tree is released only after the new one resolved, so a broken
// edit keeps the last good preview on screen. Stdin is read exactly
// once; reloads re-decode the captured bytes.
func (m *previewModel) load() error {
	data := m.data
	if m.params.path != "-" || data == nil {
		d, err := readInput(m.params.path)
		if err != nil {
			return err
		}
		data = d
	}

	var root *component.Component
	if m.params.legacy {
		root = legacy.Parse(string(data))
	} else {
		decoded, err := component.Decode(data)
		if err != nil {
			return err
		}
		root = decoded
	}

	opts := m.params.resolve
	rp := m.repaint
	opts.OnScramble = func(string, string) { rp.repaint() }

	run, err := resolve.Resolve(root, opts)
	if err != nil {
		return err
	}

	if m.run != nil {
		m.run.Release()
	}
	m.data = data
	m.run = run
	m.rebuildContent()
	return nil
}

// release stops all scramble timers in the current run tree.
func (m previewModel) release() {
	m.run.Release()
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - previewChromeLines
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.content())
		return m, nil

	case scrambleTickMsg:
		m.rebuildContent()
		return m, nil

	case fileChangedMsg:
		cmd := m.reload()
		return m, cmd

	case statusFadeMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		// Any keyboard input dismisses the hover tooltip.
		m.tooltip = nil

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			cmd := m.reload()
			return m, cmd
		case "up", "k":
			m.viewport.ScrollUp(1)
		case "down", "j":
			m.viewport.ScrollDown(1)
		case "pgup", "b":
			m.viewport.ScrollUp(m.viewport.Height)
		case "pgdown", "f":
			m.viewport.ScrollDown(m.viewport.Height)
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		}
		return m, nil

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd
	}
	return m, nil
}

// reload re-resolves the input. On failure the previous preview stays
// up and the error lands in the status line.
func (m *previewModel) reload() tea.Cmd {
	m.tooltip = nil
	if err := m.load(); err != nil {
		return m.flashStatus("Reload failed: " + err.Error())
	}
	return m.flashStatus("Reloaded")
}

// flashStatus shows a transient notice in the help bar and schedules
// its fade.
func (m *previewModel) flashStatus(text string) tea.Cmd {
	m.status = text
	m.statusID++
	id := m.statusID
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{id: id}
	})
}

// =============================================================================
// Mouse handling
// =============================================================================

// handleMouse routes mouse input: bare motion drives the hover
// tooltip, the wheel scrolls, and a left press dispatches the click
// intent under the pointer.
func (m *previewModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	// Motion events with no button held: update the hover tooltip.
	// Checked first because drags also produce motion events.
	if msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonNone {
		m.updateTooltip(msg)
		return nil
	}

	// Any non-motion interaction dismisses the tooltip.
	if m.tooltip != nil {
		m.tooltip = nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.ScrollUp(3)
	case tea.MouseButtonWheelDown:
		m.viewport.ScrollDown(3)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		run := m.runAt(msg.X, msg.Y)
		if run == nil {
			return nil
		}
		return m.dispatchClick(run)
	}
	return nil
}

// runAt returns the run painted at the given screen cell, or nil for
// empty space and chrome rows.
func (m *previewModel) runAt(x, y int) *resolve.Run {
	row := y - contentStartY
	if row < 0 || row >= m.viewport.Height {
		return nil
	}
	line := row + m.viewport.YOffset
	if line < 0 || line >= len(m.grid) {
		return nil
	}
	cx := x - contentPadX
	for _, span := range m.grid[line] {
		if cx >= span.x0 && cx < span.x1 {
			return span.run
		}
	}
	return nil
}

// dispatchClick acts on a classified click intent. Link targets open
// in the browser, copy payloads go to the system clipboard, and
// actions this surface cannot honor are named in the status line.
func (m *previewModel) dispatchClick(run *resolve.Run) tea.Cmd {
	switch run.Click.Kind {
	case action.ClickOpenURL:
		if err := openBrowser(run.Click.URL); err != nil {
			return m.flashStatus("Could not open " + run.Click.URL)
		}
		return m.flashStatus("Opened " + run.Click.URL)
	case action.ClickCopy:
		if err := clipboard.WriteAll(run.Click.Text); err != nil {
			return m.flashStatus("Copy failed")
		}
		return m.flashStatus("Copied to clipboard")
	case action.ClickBlocked:
		return m.flashStatus(run.Click.Action + " is not available here")
	}
	return nil
}

// updateTooltip re-anchors the tooltip to the pointer while it rests
// on a run with hover content, and hides it everywhere else. The box
// prefers the row above the pointer and clamps to the screen.
func (m *previewModel) updateTooltip(msg tea.MouseMsg) {
	run := m.runAt(msg.X, msg.Y)
	if run == nil || run.Hover == nil {
		m.tooltip = nil
		return
	}

	lines := renderTooltip(run.Hover.Content, m.width)
	h := len(lines)
	w := 0
	if h > 0 {
		w = xansi.StringWidth(lines[0])
	}

	y := msg.Y - h - 1
	if y < 0 {
		y = msg.Y + 1
	}
	x := msg.X
	if x+w > m.width {
		x = m.width - w
	}
	if x < 0 {
		x = 0
	}

	m.tooltip = &tooltipState{content: run.Hover.Content, x: x, y: y}
}

// =============================================================================
// Content building
// =============================================================================

// lineBuilder accumulates styled content lines and the parallel hit
// grid while walking a run tree in paint order.
type lineBuilder struct {
	lines []string
	grid  [][]gridSpan
	cur   strings.Builder
	spans []gridSpan
	x     int
}

func (b *lineBuilder) writeSpan(styled string, width int, run *resolve.Run) {
	b.cur.WriteString(styled)
	if width > 0 {
		b.spans = append(b.spans, gridSpan{x0: b.x, x1: b.x + width, run: run})
		b.x += width
	}
}

func (b *lineBuilder) newline() {
	b.lines = append(b.lines, b.cur.String())
	b.grid = append(b.grid, b.spans)
	b.cur.Reset()
	b.spans = nil
	b.x = 0
}

func (b *lineBuilder) finish() ([]string, [][]gridSpan) {
	b.newline()
	return b.lines, b.grid
}

// buildLines renders a run tree into terminal lines plus the hit grid
// mapping cells back to runs. Paint order matches the batch terminal
// renderer: a run's own content, then its intent glyph, then its
// children. Obfuscated runs contribute their current scrambled value.
func buildLines(root *resolve.Run) ([]string, [][]gridSpan) {
	b := &lineBuilder{}
	root.Walk(func(run *resolve.Run) {
		if content := run.Content(); content != "" {
			style := previewStyleFor(run.Style)
			for i, piece := range strings.Split(content, "\n") {
				if i > 0 {
					b.newline()
				}
				if piece == "" {
					continue
				}
				b.writeSpan(style.Render(piece), runewidth.StringWidth(piece), run)
			}
		}

		// The glyph is part of the run's clickable region.
		switch run.Click.Kind {
		case action.ClickCopy:
			b.writeSpan(previewGlyphStyle.Render(previewGlyphCopy), runewidth.StringWidth(previewGlyphCopy), run)
		case action.ClickBlocked:
			b.writeSpan(previewGlyphStyle.Render(previewGlyphBlocked), runewidth.StringWidth(previewGlyphBlocked), run)
		}
	})
	return b.finish()
}

// previewStyleFor maps a resolved style onto lipgloss. Resolved styles
// arrive fully concrete, so every attribute is set explicitly.
func previewStyleFor(s resolve.Style) lipgloss.Style {
	st := lipgloss.NewStyle().
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underlined).
		Strikethrough(s.Strikethrough)
	if s.HasColor() {
		st = st.Foreground(lipgloss.Color(s.Color))
	}
	return st
}

func (m *previewModel) rebuildContent() {
	m.lines, m.grid = buildLines(m.run)
	if m.ready {
		m.viewport.SetContent(m.content())
	}
}

func (m previewModel) content() string {
	pad := strings.Repeat(" ", contentPadX)
	padded := make([]string, len(m.lines))
	for i, line := range m.lines {
		padded[i] = pad + line
	}
	return strings.Join(padded, "\n")
}

// =============================================================================
// View
// =============================================================================

func (m previewModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	separator := StyleDim.Render(strings.Repeat("─", m.width))
	sections = append(sections, separator)
	sections = append(sections, m.viewport.View())
	sections = append(sections, separator)
	sections = append(sections, m.renderFooter())
	output := strings.Join(sections, "\n")

	// Splice the tooltip on top. Rendered fresh each frame so
	// obfuscated tooltip text keeps animating.
	if m.tooltip != nil {
		lines := renderTooltip(m.tooltip.content, m.width)
		output = overlay(output, lines, m.width, m.height, m.tooltip.x, m.tooltip.y)
	}
	return output
}

func (m previewModel) renderHeader() string {
	path := m.params.path
	if path == "-" {
		path = "stdin"
	}
	parts := []string{StyleTitle.Render(appName), StyleDim.Render(path)}
	if m.params.watch {
		parts = append(parts, StyleHighlight.Render("watching"))
	}
	return " " + strings.Join(parts, "  ")
}

func (m previewModel) renderFooter() string {
	help := StyleDim.Render("↑/↓ scroll  r reload  g/G top/bottom  q quit")
	if m.status == "" {
		return " " + help
	}
	status := StyleHighlight.Render(m.status)
	gap := m.width - xansi.StringWidth(help) - xansi.StringWidth(status) - 2
	if gap < 1 {
		return " " + status
	}
	return " " + help + strings.Repeat(" ", gap) + status
}

// renderTooltip renders hover content into a bordered box, one string
// per screen row. All rows render to the same display width.
func renderTooltip(content *resolve.Run, maxWidth int) []string {
	lines, _ := buildLines(content)
	style := previewTooltipStyle
	if maxWidth > 4 {
		style = style.MaxWidth(maxWidth)
	}
	boxed := style.Render(strings.Join(lines, "\n"))
	return strings.Split(boxed, "\n")
}

// =============================================================================
// Overlay
// =============================================================================

// overlay splices fg lines over the background at cell position x,y,
// preserving the styled background text around the spliced region.
// Background lines are padded to full width first so the splice lands
// at the requested column even over short lines.
func overlay(bg string, fg []string, w, h, x, y int) string {
	fgW := 0
	for _, line := range fg {
		if n := xansi.StringWidth(line); n > fgW {
			fgW = n
		}
	}
	if fgW <= 0 {
		return bg
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	bgLines := splitLinesN(bg, h)
	for i := 0; i < len(fg) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		if n := xansi.StringWidth(bgLine); n < w {
			bgLine += strings.Repeat(" ", w-n)
		}
		left := xansi.Cut(bgLine, 0, x)
		right := xansi.Cut(bgLine, x+fgW, w)

		fgLine := fg[i]
		if n := xansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = xansi.Cut(fgLine, 0, fgW)
		}

		bgLines[y+i] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

func splitLinesN(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) >= n {
		return lines[:n]
	}
	out := make([]string, 0, n)
	out = append(out, lines...)
	for len(out) < n {
		out = append(out, "")
	}
	return out
}
