package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"

	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/experiment"
	"github.com/san-kum/bifsim/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// bigStep is the cursor jump of shift and page keys.
const bigStep = 10

type state int

const (
	stateMenu state = iota
	stateRunning
	stateExplore
)

type model struct {
	state    state
	cursor   int
	registry *experiment.Registry
	models   []string
	log      logr.Logger

	name   string
	res    *dynamo.SweepResult
	sample int
	err    error
	// direct is set when the explorer was opened on a finished sweep.
	direct bool

	width  int
	height int
}

type sweepDoneMsg struct {
	name string
	res  *dynamo.SweepResult
	err  error
}

// NewExplorer opens on the model menu.
func NewExplorer(logger logr.Logger) *model {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	reg := experiment.NewRegistry()
	return &model{
		state:    stateMenu,
		registry: reg,
		models:   reg.ListModels(),
		log:      logger.WithName("tui"),
		width:    80,
		height:   24,
	}
}

// NewResultExplorer opens directly on a finished sweep.
func NewResultExplorer(name string, res *dynamo.SweepResult) *model {
	m := NewExplorer(logr.Discard())
	m.state = stateExplore
	m.direct = true
	m.show(name, res)
	return m
}

func (m *model) show(name string, res *dynamo.SweepResult) {
	m.name = name
	m.res = res
	m.sample = len(res.Rs) / 2
	if len(res.Bifurcations) > 0 {
		m.sample = viz.Nearest(res.Rs, res.Bifurcations[0].R)
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case sweepDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateMenu
			return m, nil
		}
		m.err = nil
		m.state = stateExplore
		m.show(msg.name, msg.res)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateExplore:
		return m.exploreKey(msg)
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.models)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.state = stateRunning
		return m, m.sweep(m.models[m.cursor])
	}
	return m, nil
}

func (m model) exploreKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.direct {
			return m, tea.Quit
		}
		m.state = stateMenu
		m.res = nil
	case "left", "h":
		m.move(-1)
	case "right", "l":
		m.move(1)
	case "shift+left", "pgdown", "H":
		m.move(-bigStep)
	case "shift+right", "pgup", "L":
		m.move(bigStep)
	case "home", "g":
		m.sample = 0
	case "end", "G":
		m.sample = len(m.res.Rs) - 1
	case "n":
		m.jump(1)
	case "N", "p":
		m.jump(-1)
	}
	return m, nil
}

func (m *model) move(d int) {
	m.sample = min(max(m.sample+d, 0), len(m.res.Rs)-1)
}

// jump moves the cursor to the next event past the current sample in
// direction dir.
func (m *model) jump(dir int) {
	r := m.res.Rs[m.sample]
	best := -1
	for i, ev := range m.res.Bifurcations {
		if dir > 0 && ev.R > r && (best < 0 || ev.R < m.res.Bifurcations[best].R) {
			best = i
		}
		if dir < 0 && ev.R < r && (best < 0 || ev.R > m.res.Bifurcations[best].R) {
			best = i
		}
	}
	if best < 0 {
		return
	}
	i := viz.Nearest(m.res.Rs, m.res.Bifurcations[best].R)
	// The nearest sample can sit on the wrong side of the event.
	if dir > 0 && m.res.Rs[i] < m.res.Bifurcations[best].R && i+1 < len(m.res.Rs) {
		i++
	}
	if dir < 0 && m.res.Rs[i] > m.res.Bifurcations[best].R && i > 0 {
		i--
	}
	m.sample = i
}

func (m model) sweep(name string) tea.Cmd {
	reg, log := m.registry, m.log
	return func() tea.Msg {
		cfg := config.GetPreset(name, "default")
		if cfg == nil {
			mdl, err := reg.GetModel(name)
			if err != nil {
				return sweepDoneMsg{name: name, err: err}
			}
			cfg = config.DefaultConfig()
			cfg.Model, cfg.Expression = mdl.Name, mdl.Expression
		}
		exp := experiment.New(cfg, log)
		if err := exp.Setup(); err != nil {
			return sweepDoneMsg{name: name, err: err}
		}
		res, err := exp.Run(context.Background())
		return sweepDoneMsg{name: name, res: res, err: err}
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateRunning:
		return "\n      " + dim.Render("sweeping "+m.models[m.cursor]+"...") + "\n"
	case stateExplore:
		return m.viewExplore()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("b i f s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.models {
		mdl, _ := m.registry.GetModel(name)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", name)) + dim.Render(mdl.Expression) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", name)) + dimmer.Render(mdl.Expression) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter sweep   q quit") + "\n")

	return b.String()
}

func (m model) viewExplore() string {
	var b strings.Builder
	res := m.res
	r := res.Rs[m.sample]

	b.WriteString("\n")
	b.WriteString("  " + cyan.Render(m.name) + "  " + dim.Render("f = "+res.Expression) + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", max(m.width-4, 20))) + "\n")

	d := viz.NewDiagram(max(m.width-6, 40), max(m.height-14, 8))
	d.Cursor = r
	for _, line := range strings.Split(strings.TrimRight(d.Render(res), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + viz.Legend() + "\n\n")

	b.WriteString(fmt.Sprintf("  %s %s   %s\n",
		dim.Render("r ="), magenta.Render(fmt.Sprintf("%+.5f", r)),
		dimmer.Render(fmt.Sprintf("sample %d/%d", m.sample+1, len(res.Rs)))))
	b.WriteString("  " + dim.Render("x* ") + viz.EquilibriaLine(res.At(m.sample)) + "\n")
	b.WriteString("  " + dim.Render("ev ") + m.nearestEvent(r) + "\n\n")

	b.WriteString(dim.Render("  ←→ step  shift/pg ±10  n/N events  g/G ends  esc back  q quit") + "\n")
	return b.String()
}

func (m model) nearestEvent(r float64) string {
	if len(m.res.Bifurcations) == 0 {
		return dimmer.Render("no bifurcations found in range")
	}
	best := m.res.Bifurcations[0]
	for _, ev := range m.res.Bifurcations[1:] {
		if math.Abs(ev.R-r) < math.Abs(best.R-r) {
			best = ev
		}
	}
	return yellow.Render(string(best.Type)) + dim.Render(fmt.Sprintf(" at r = %+.4f  (%d -> %d -> %d)", best.R, best.Before, best.At, best.After))
}

// Run starts the explorer on the model menu.
func Run(logger logr.Logger) error {
	p := tea.NewProgram(NewExplorer(logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunResult starts the explorer on a finished sweep.
func RunResult(name string, res *dynamo.SweepResult) error {
	if len(res.Rs) == 0 {
		return fmt.Errorf("empty sweep")
	}
	p := tea.NewProgram(NewResultExplorer(name, res), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
