// Package splash implements the startup intro sequence: a progress value
// advanced on a fixed tick, mapped to a discrete step label, that signals
// completion exactly once after a short post delay.
//
// Every sequence carries a generation number. Tick and done messages from
// an older generation are ignored, so stopping or restarting a sequence
// cancels anything still in flight.
package splash

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultDuration  = 3500 * time.Millisecond
	DefaultTick      = 50 * time.Millisecond
	DefaultPostDelay = 800 * time.Millisecond

	// CreditsThreshold is the progress at which the credits line appears.
	CreditsThreshold = 70.0
)

// Step is one labelled stage of the sequence.
type Step struct {
	Icon string
	Text string
}

var DefaultSteps = []Step{
	{Icon: "✦", Text: "Initializing AI Engine..."},
	{Icon: "▣", Text: "Loading Movie Database..."},
	{Icon: "♥", Text: "Preparing Recommendations..."},
	{Icon: "★", Text: "Welcome to CineMatch!"},
}

type Options struct {
	Duration  time.Duration
	Tick      time.Duration
	PostDelay time.Duration
	Steps     []Step
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.PostDelay < 0 {
		o.PostDelay = 0
	}
	if len(o.Steps) == 0 {
		o.Steps = DefaultSteps
	}
	return o
}

// TickMsg advances the sequence by one tick.
type TickMsg struct {
	gen int64
}

type doneMsg struct {
	gen int64
}

// CompleteMsg is emitted once when the sequence has finished.
type CompleteMsg struct{}

var generations atomic.Int64

func nextGeneration() int64 {
	return generations.Add(1)
}

type Model struct {
	opts       Options
	gen        int64
	ticks      int
	totalTicks int
	elapsed    time.Duration
	progress   float64
	running    bool
	completed  bool
	bar        progress.Model
	width      int
	height     int
}

func New(opts Options) Model {
	opts = opts.withDefaults()
	total := int(math.Ceil(float64(opts.Duration) / float64(opts.Tick)))
	if total < 1 {
		total = 1
	}
	bar := progress.New(
		progress.WithGradient("#60A5FA", "#F472B6"),
		progress.WithoutPercentage(),
		progress.WithWidth(40),
	)
	return Model{opts: opts, totalTicks: total, bar: bar}
}

// Start (re)starts the sequence from zero. Messages belonging to a previous
// run are invalidated.
func (m *Model) Start() tea.Cmd {
	m.gen = nextGeneration()
	m.ticks = 0
	m.elapsed = 0
	m.progress = 0
	m.running = true
	m.completed = false
	return m.scheduleTick()
}

// Stop tears the sequence down without completing it.
func (m *Model) Stop() {
	m.gen = nextGeneration()
	m.running = false
}

// Skip ends the sequence early and completes it, unless it already
// completed.
func (m *Model) Skip() tea.Cmd {
	if m.completed {
		return nil
	}
	m.gen = nextGeneration()
	m.running = false
	m.completed = true
	m.progress = 100
	return complete
}

func complete() tea.Msg { return CompleteMsg{} }

// scheduleTick shortens the final tick so progress reaches 100 at exactly
// the configured duration.
func (m *Model) scheduleTick() tea.Cmd {
	wait := m.opts.Tick
	if remaining := m.opts.Duration - m.elapsed; remaining < wait {
		wait = remaining
	}
	gen := m.gen
	return tea.Tick(wait, func(time.Time) tea.Msg { return TickMsg{gen: gen} })
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if msg.gen != m.gen || !m.running {
			return m, nil
		}
		m.ticks++
		m.elapsed += m.opts.Tick
		if m.elapsed > m.opts.Duration {
			m.elapsed = m.opts.Duration
		}
		m.progress = math.Min(100, float64(m.ticks)*100/float64(m.totalTicks))
		if m.ticks >= m.totalTicks {
			m.progress = 100
			m.running = false
			gen := m.gen
			return m, tea.Tick(m.opts.PostDelay, func(time.Time) tea.Msg { return doneMsg{gen: gen} })
		}
		return m, m.scheduleTick()

	case doneMsg:
		if msg.gen != m.gen || m.completed {
			return m, nil
		}
		m.completed = true
		return m, complete
	}
	return m, nil
}

func (m Model) Progress() float64 { return m.progress }

// Step returns the index of the current step for the progress value.
func (m Model) Step() int {
	return StepFor(m.progress, len(m.opts.Steps))
}

// StepFor maps progress in [0,100] to floor(progress/100*count), clamped to
// the last step.
func StepFor(progress float64, count int) int {
	if count <= 0 {
		return 0
	}
	idx := int(math.Floor(progress / 100 * float64(count)))
	if idx < 0 {
		idx = 0
	}
	if idx > count-1 {
		idx = count - 1
	}
	return idx
}

func (m Model) CurrentStep() Step { return m.opts.Steps[m.Step()] }

func (m Model) ShowCredits() bool { return m.progress >= CreditsThreshold }

func (m Model) Running() bool { return m.running }

func (m Model) Completed() bool { return m.completed }

// Elapsed is the sequence time consumed by ticks so far.
func (m Model) Elapsed() time.Duration { return m.elapsed }

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A78BFA")).
			Bold(true)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DBEAFE"))

	blurbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#93C5FD")).
			Italic(true)

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	creditsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F472B6")).
			Faint(true)

	stripStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#334155"))
)

var LogoLines = []string{
	"  ___ _          __  __      _      _    ",
	" / __(_)_ _  ___|  \\/  |__ _| |_ __| |_  ",
	"| (__| | ' \\/ -_) |\\/| / _` |  _/ _| ' \\ ",
	" \\___|_|_||_\\___|_|  |_\\__,_|\\__\\__|_||_|",
}

func (m Model) View() string {
	strip := stripStyle.Render(strings.Repeat("▮ ", 22))

	logo := make([]string, len(LogoLines))
	for i, l := range LogoLines {
		logo[i] = logoStyle.Render(l)
	}

	step := m.CurrentStep()
	rows := []string{
		strip,
		"",
		lipgloss.JoinVertical(lipgloss.Center, logo...),
		"",
		taglineStyle.Render("Your Personal Movie Companion"),
		blurbStyle.Render("Discover films tailored to your taste"),
		"",
		m.bar.ViewAs(m.progress / 100),
		percentStyle.Render(percentLabel(m.progress)),
		"",
		stepStyle.Render(step.Icon + "  " + step.Text),
		"",
	}
	if m.ShowCredits() {
		rows = append(rows, creditsStyle.Render("Powered by content-based similarity"))
	} else {
		rows = append(rows, "")
	}
	rows = append(rows, "", strip)

	content := lipgloss.JoinVertical(lipgloss.Center, rows...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func percentLabel(p float64) string {
	return strconv.Itoa(int(math.Round(p))) + "%"
}
