// Package tui is the terminal viewer: a braille-canvas orbital view of the
// active scene with a live light-curve panel, driven by the same session
// core the web stream uses.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/lightcurve"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/orbit"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/session"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/simclock"
)

const (
	canvasWidth  = 72
	canvasHeight = 22
	fluxCapacity = 200
	seekStep     = 86400 // one simulated day per arrow press
)

var (
	canvasStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	transitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

// Model drives one interactive viewing session.
type Model struct {
	sess     *session.Session
	sc       *scene.Scene
	canvas   *canvas
	frame    session.Frame
	flux     []float64
	lastTick time.Time
	selected int // index into sc.Planets, -1 when nothing selected
	showHelp bool
}

// NewModel builds the viewer around a fresh session for the scene.
func NewModel(sess *session.Session) Model {
	return Model{
		sess:     sess,
		sc:       sess.Scene(),
		canvas:   newCanvas(canvasWidth, canvasHeight),
		flux:     make([]float64, 0, fluxCapacity),
		lastTick: time.Now(),
		selected: -1,
	}
}

func (m Model) Init() tea.Cmd {
	m.sess.Clock().Play()
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles input events and advances the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		clock := m.sess.Clock()
		switch msg.String() {
		case "q", "ctrl+c":
			m.sess.Close()
			return m, tea.Quit
		case " ":
			if clock.State() == simclock.Playing {
				clock.Pause()
			} else {
				clock.Play()
			}
		case "r":
			m.sess.Seek(float64(m.sc.Epoch))
			m.flux = m.flux[:0]
		case "left", "h":
			m.sess.Seek(clock.Current() - seekStep)
			m.flux = m.flux[:0]
		case "right", "l":
			m.sess.Seek(clock.Current() + seekStep)
			m.flux = m.flux[:0]
		case "up", "k":
			clock.SetSpeed(clock.Speed() * 1.25)
		case "down", "j":
			clock.SetSpeed(clock.Speed() / 1.25)
		case "t":
			m.sess.SetTrails(!m.trailsOn())
		case "tab":
			m.selected++
			if m.selected >= len(m.sc.Planets) {
				m.selected = -1
			}
			if m.selected >= 0 {
				m.sess.Select(m.sc.Planets[m.selected].ID)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		now := time.Time(msg)
		m.frame = m.sess.Tick(now.Sub(m.lastTick))
		m.lastTick = now

		flux := 1.0
		for _, id := range m.frame.Transiting {
			if p := m.sc.PlanetByID(id); p != nil {
				flux -= lightcurve.Depth(p, m.sc.Star.Radius)
			}
		}
		m.flux = append(m.flux, flux)
		if len(m.flux) > fluxCapacity {
			m.flux = m.flux[1:]
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m Model) trailsOn() bool {
	return m.frame.Trails != nil
}

// View renders the orbital canvas beside the stats panel.
func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.sc.Star.Name)) + "\n")

	status := "PAUSED"
	if m.frame.Playing {
		status = "PLAYING"
	}
	s.WriteString(fmt.Sprintf("%s  x%.2f\n\n", status, m.frame.Speed))

	if len(m.flux) > 1 {
		chart := asciigraph.Plot(m.flux, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Relative flux"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	simTime := time.Unix(int64(m.frame.TimeUnix), 0).UTC()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(simTime.Format("2006-01-02 15:04")) + "\n")
	s.WriteString(labelStyle.Render("Planets") + valueStyle.Render(fmt.Sprintf("%d", len(m.sc.Planets))) + "\n")

	if m.frame.AnyTransiting {
		s.WriteString("\n" + transitStyle.Render("TRANSIT: "+strings.Join(m.frame.Transiting, ", ")) + "\n")
	}

	s.WriteString("\nBODIES\n")
	for i := range m.sc.Planets {
		p := &m.sc.Planets[i]
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-10s P=%.1fd  %.1f%%", marker, p.Name, p.Period, p.Probability)
		if contains(m.frame.Transiting, p.ID) {
			s.WriteString(transitStyle.Render(line) + "\n")
		} else {
			s.WriteString(valueStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\nSP:Pause R:Epoch ←→:Seek ↑↓:Speed\nT:Trails Tab:Select ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()),
	)
	if m.showHelp {
		return helpOverlay + "\n" + main
	}
	return main
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

const helpOverlay = `
  Space  pause / resume      ←/→   seek one day
  R      seek to epoch       ↑/↓   speed up / down
  T      toggle trails       Tab   cycle selection
  Q      quit                ?     toggle this help
`

// draw plots the star, orbit guides, trails, and planets. The projection
// drops Z: the terminal shows the on-sky plane the transit test uses.
func (m *Model) draw() {
	m.canvas.clear()
	cw, ch := canvasWidth*2, canvasHeight*4
	cx, cy := cw/2, ch/2

	// Scale so the widest orbit fits with a margin.
	maxExtent := 0.0
	for i := range m.sc.Planets {
		p := &m.sc.Planets[i]
		if e := p.SemiMajorAxis * (1 + p.Eccentricity); e > maxExtent {
			maxExtent = e
		}
	}
	if maxExtent == 0 {
		maxExtent = 1
	}
	pxPerUnit := float64(ch) * 0.45 / (maxExtent * orbit.VisualScale)

	m.canvas.fill(cx, cy, 3)
	for i := range m.sc.Planets {
		r := int(m.sc.Planets[i].SemiMajorAxis * orbit.VisualScale * pxPerUnit)
		m.canvas.drawCircle(cx, cy, r, 0.15)
	}

	for i := range m.sc.Planets {
		p := &m.sc.Planets[i]
		pos, ok := m.frame.Positions[p.ID]
		if !ok {
			continue
		}
		if tr, ok := m.frame.Trails[p.ID]; ok {
			for _, v := range tr {
				m.canvas.set(cx+int(v.X*pxPerUnit), cy-int(v.Y*pxPerUnit))
			}
		}
		x := cx + int(pos.X*pxPerUnit)
		y := cy - int(pos.Y*pxPerUnit)
		size := 1
		if i == m.selected {
			size = 2
		}
		m.canvas.fill(x, y, size)
	}
}
