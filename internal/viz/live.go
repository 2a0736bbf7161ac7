// Package viz renders a running scene in the terminal: a braille canvas of
// the linkage in the ground X-Y plane, a stats panel, and a chart of the
// constraint violation history.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/constraint"
	"github.com/san-kum/kinetree/internal/motion"
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/scene"
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

const (
	canvasCols      = 80
	canvasRows      = 24
	historyCapacity = 600
	stepsPerFrame   = 4
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps the scene under its configured drive and renders each frame.
type Model struct {
	sc      *scene.Scene
	name    string
	integ   motion.Integrator
	drive   motion.Drive
	rc      config.RunConfig
	canvas  *canvas
	t       float64
	running bool
	err     error

	perrHist []float64
	initQ    []float64
	initU    []float64
}

func NewModel(sc *scene.Scene, name string, rc config.RunConfig) (Model, error) {
	integ, err := motion.IntegratorFromConfig(rc.Integrator)
	if err != nil {
		return Model{}, err
	}
	drive, err := motion.DriveFromConfig(rc.Drive, sc.Sys.NumU())
	if err != nil {
		return Model{}, err
	}
	q, err := sc.State.Q()
	if err != nil {
		return Model{}, err
	}
	u, err := sc.State.U()
	if err != nil {
		return Model{}, err
	}
	return Model{
		sc:       sc,
		name:     name,
		integ:    integ,
		drive:    drive,
		rc:       rc,
		canvas:   newCanvas(canvasCols, canvasRows, 16),
		running:  true,
		perrHist: make([]float64, 0, historyCapacity),
		initQ:    append([]float64(nil), q...),
		initU:    append([]float64(nil), u...),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.canvas.zoom *= 1.25
		case "-", "_":
			m.canvas.zoom /= 1.25
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < stepsPerFrame; i++ {
		if err := m.integ.Step(m.sc.Sys, m.sc.State, m.drive, m.t, m.rc.Dt); err != nil {
			m.err = err
			return
		}
		m.t += m.rc.Dt
	}
	m.perrHist = append(m.perrHist, m.perrNorm())
	if len(m.perrHist) > historyCapacity {
		m.perrHist = m.perrHist[1:]
	}
}

func (m *Model) reset() {
	m.t = 0
	m.err = nil
	m.perrHist = m.perrHist[:0]
	if err := m.sc.State.SetQ(m.initQ); err != nil {
		m.err = err
		return
	}
	if err := m.sc.State.SetU(m.initU); err != nil {
		m.err = err
		return
	}
	m.err = m.sc.Sys.Realize(m.sc.State, stage.Velocity)
}

func (m *Model) perrNorm() float64 {
	var sum float64
	for ix := 0; ix < m.sc.Set.NumConstraints(); ix++ {
		perr, err := m.sc.Set.Constraint(constraint.Index(ix)).PositionErrors(m.sc.State)
		if err != nil {
			continue
		}
		for _, e := range perr {
			sum += e * e
		}
	}
	return math.Sqrt(sum)
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	if m.err != nil {
		status = "ERROR: " + m.err.Error()
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.perrHist) > 1 {
		chart := asciigraph.Plot(m.perrHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("constraint violation"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Integrator") + valueStyle.Render(m.integ.Name()) + "\n")
	s.WriteString(labelStyle.Render("Coordinates") + valueStyle.Render(fmt.Sprintf("%d q / %d u", m.sc.State.NumQ(), m.sc.State.NumU())) + "\n")
	if n := m.sc.Set.NumConstraints(); n > 0 {
		perr := 0.0
		if len(m.perrHist) > 0 {
			perr = m.perrHist[len(m.perrHist)-1]
		}
		s.WriteString(labelStyle.Render("Constraints") + valueStyle.Render(fmt.Sprintf("%d", n)) + "\n")
		s.WriteString(labelStyle.Render("Violation") + valueStyle.Render(fmt.Sprintf("%.2e", perr)) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit +/-:Zoom"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// draw projects the tree onto the ground X-Y plane: a segment from each
// body's mobilizer frame to its origin, a blob per body, and the closure
// constraints' station pairs.
func (m *Model) draw() {
	m.canvas.clear()
	s := m.sc.State
	if s.Stage() < stage.Position {
		if err := m.sc.Sys.Realize(s, stage.Position); err != nil {
			return
		}
	}

	m.canvas.point(0, 0)
	for _, ix := range m.sc.Sys.TraversalOrder() {
		if ix == multibody.Ground {
			continue
		}
		b := m.sc.Sys.Body(ix)
		parent := m.sc.Sys.Body(b.Parent())
		origin, err := b.OriginLocation(s)
		if err != nil {
			return
		}
		anchor, err := parent.LocatePointOnGround(s, b.InboardFrame().P)
		if err != nil {
			anchor = origin
		}
		m.canvas.segment(anchor[0], anchor[1], origin[0], origin[1])
		m.canvas.point(origin[0], origin[1])
	}

	for ix := 0; ix < m.sc.Set.NumConstraints(); ix++ {
		c := m.sc.Set.Constraint(constraint.Index(ix))
		bodies := c.ConstrainedBodies()
		switch g := c.Geometry(s).(type) {
		case constraint.RodGeometry:
			m.drawStationPair(s, bodies[0], g.Point1, bodies[1], g.Point2)
		case constraint.BallGeometry:
			m.drawStationPair(s, bodies[0], g.Point1, bodies[1], g.Point2)
		}
	}
}

func (m *Model) drawStationPair(s *multibody.State, b1 multibody.BodyIndex, p1 spatial.Vec3, b2 multibody.BodyIndex, p2 spatial.Vec3) {
	g1, err := m.sc.Sys.Body(b1).LocatePointOnGround(s, p1)
	if err != nil {
		return
	}
	g2, err := m.sc.Sys.Body(b2).LocatePointOnGround(s, p2)
	if err != nil {
		return
	}
	m.canvas.segment(g1[0], g1[1], g2[0], g2[1])
}
