// Package viz renders running simulations in the terminal: a Braille
// canvas projection of the particle configuration next to live energy
// and acceptance statistics.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clustermc/internal/mc"
	"github.com/san-kum/clustermc/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model drives a simulation from the bubbletea event loop: every tick
// runs sweepsPerTick sweeps and refreshes the view.
type Model struct {
	simulation    *sim.Simulation
	sweepsPerTick int
	totalSweeps   int

	canvas        *Canvas
	energyHistory []float64
	running       bool
	done          bool
}

func NewModel(simulation *sim.Simulation, totalSweeps, sweepsPerTick int) Model {
	if sweepsPerTick < 1 {
		sweepsPerTick = 1
	}
	return Model{
		simulation:    simulation,
		sweepsPerTick: sweepsPerTick,
		totalSweeps:   totalSweeps,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		energyHistory: make([]float64, 0, historyCapacity),
		running:       true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			m.simulation.Mover.ResetStats()
		}
	case TickMsg:
		if m.running && !m.done {
			remaining := m.totalSweeps - m.simulation.Sweeps()
			n := m.sweepsPerTick
			if n > remaining {
				n = remaining
			}
			for i := 0; i < n; i++ {
				m.simulation.Mover.Step(m.simulation.Config.Particles)
			}
			m.recordEnergy(n)
			if m.simulation.Sweeps() >= m.totalSweeps {
				m.done = true
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) recordEnergy(sweepsRun int) {
	// Sweeps() counts via Run; the live loop steps the mover directly,
	// so track progress through the same counter.
	for i := 0; i < sweepsRun; i++ {
		m.simulation.BumpSweep()
	}
	perParticle := m.simulation.Mover.Energy() / float64(m.simulation.Config.Particles)
	m.energyHistory = append(m.energyHistory, perParticle)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// draw projects particle positions onto the canvas: xy plane, box
// scaled to fit, each particle a disc at roughly its hard-core size.
func (m *Model) draw() {
	m.canvas.Clear()

	subW := canvasWidth * 2
	subH := canvasHeight * 4
	m.canvas.DrawBorder(0, 0, subW-1, subH-1)

	box := m.simulation.Box
	scaleX := float64(subW-2) / box.Size[0]
	scaleY := float64(subH-2) / box.Size[1]

	radius := int(0.5 * scaleY)
	if radius < 1 {
		radius = 1
	}

	for i := range m.simulation.Store {
		p := m.simulation.Store[i].Position
		x := 1 + int(p[0]*scaleX)
		y := 1 + int(p[1]*scaleY)
		m.canvas.DrawDisc(x, y, radius)
	}
}

// clusterStats summarises the accepted-move size histograms: mean size
// over all accepted moves and the largest size seen.
func clusterStats(v *mc.VMMC) (mean float64, max int) {
	var moves, particles uint64
	for _, hist := range [][]uint64{v.ClusterTranslations(), v.ClusterRotations()} {
		for idx, count := range hist {
			if count == 0 {
				continue
			}
			size := idx + 1
			moves += count
			particles += count * uint64(size)
			if size > max {
				max = size
			}
		}
	}
	if moves == 0 {
		return 0, 0
	}
	return float64(particles) / float64(moves), max
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.simulation.Config.Model)) + "\n")

	status := "RUNNING"
	if m.done {
		status = "DONE"
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy / particle"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Sweeps") + valueStyle.Render(fmt.Sprintf("%d / %d", m.simulation.Sweeps(), m.totalSweeps)) + "\n")

	energy := 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f", energy)) + "\n")
	s.WriteString(labelStyle.Render("Acceptance") + valueStyle.Render(fmt.Sprintf("%.3f", m.simulation.AcceptanceRate())) + "\n")
	s.WriteString(labelStyle.Render("Attempts") + valueStyle.Render(fmt.Sprintf("%d", m.simulation.Mover.Attempts())) + "\n")

	if v, ok := m.simulation.Mover.(*mc.VMMC); ok {
		mean, max := clusterStats(v)
		s.WriteString(labelStyle.Render("Mean cluster") + valueStyle.Render(fmt.Sprintf("%.2f", mean)) + "\n")
		s.WriteString(labelStyle.Render("Max cluster") + valueStyle.Render(fmt.Sprintf("%d", max)) + "\n")
	}

	progress := 0.0
	if m.totalSweeps > 0 {
		progress = float64(m.simulation.Sweeps()) / float64(m.totalSweeps)
	}
	s.WriteString("\n" + ProgressBar(progress, 30) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause S:Reset-stats Q:Quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
