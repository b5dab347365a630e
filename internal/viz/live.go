package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/quad"
)

const historyCapacity = 600

type TickMsg time.Time

// Model steps a vehicle batch in real time and renders the lead vehicle.
type Model struct {
	stepper *quad.Stepper
	state   dynamo.Batch
	initial dynamo.Batch
	action  dynamo.Batch
	t, dt   float64
	name    string
	running bool
	err     error

	altHistory []float64
}

// NewModel binds a stepper, an initial state batch and a fixed action row.
// The same action is applied to every vehicle on every tick.
func NewModel(stepper *quad.Stepper, initial dynamo.Batch, action [4]float64, dt float64, name string) Model {
	rows := make([][]float64, initial.Len())
	for i := range rows {
		rows[i] = action[:]
	}
	return Model{
		stepper:    stepper,
		state:      initial.Clone(),
		initial:    initial.Clone(),
		action:     dynamo.FromRows(rows),
		dt:         dt,
		name:       name,
		running:    true,
		altHistory: make([]float64, 0, historyCapacity),
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
		case "r":
			m.state = m.initial.Clone()
			m.t = 0
			m.altHistory = m.altHistory[:0]
			m.err = nil
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	next, err := m.stepper.Step(m.state, m.action, m.dt)
	if err != nil {
		m.err = err
		return
	}
	m.state = next
	m.t += m.dt

	m.altHistory = append(m.altHistory, m.state.At(0, quad.OffPosition+2))
	if len(m.altHistory) > historyCapacity {
		m.altHistory = m.altHistory[1:]
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(fmt.Sprintf("ERROR: %v\n", m.err))
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n")
	}

	if len(m.altHistory) > 1 {
		chart := asciigraph.Plot(m.altHistory, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("Altitude [m]"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(statsStyle.Render(m.statsPanel()) + "\n")
	s.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	return s.String() + "\n"
}

func (m Model) statsPanel() string {
	row := m.state.Row(0)
	var s strings.Builder

	line := func(label, format string, args ...any) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...)) + "\n")
	}

	line("Time", "%.2fs", m.t)
	line("Vehicles", "%d", m.state.Len())
	line("Position", "%.2f %.2f %.2f", row[quad.OffPosition], row[quad.OffPosition+1], row[quad.OffPosition+2])
	line("Attitude", "%.2f %.2f %.2f", row[quad.OffAttitude], row[quad.OffAttitude+1], row[quad.OffAttitude+2])
	line("Velocity", "%.2f %.2f %.2f", row[quad.OffVelocity], row[quad.OffVelocity+1], row[quad.OffVelocity+2])
	line("Rotors", "%.0f %.0f %.0f %.0f",
		row[quad.OffRotorSpeed], row[quad.OffRotorSpeed+1], row[quad.OffRotorSpeed+2], row[quad.OffRotorSpeed+3])
	line("Body rates", "%.2f %.2f %.2f",
		row[quad.OffAngularVelocity], row[quad.OffAngularVelocity+1], row[quad.OffAngularVelocity+2])

	return strings.TrimRight(s.String(), "\n")
}
