// Package tui plays an animation in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bbhexp/internal/anim"
	"github.com/san-kum/bbhexp/internal/scene"
)

const (
	// Interval between frames, matching the saved animations.
	Interval = 50 * time.Millisecond

	canvasWidth  = 60
	canvasHeight = 26
	graphWidth   = 40
	graphHeight  = 6

	rotateStep = 5.0
)

// Source renders frames for the player.
type Source interface {
	Render(num int, view scene.View) scene.Frame
	View(num int, view scene.View) scene.View
}

type TickMsg time.Time

// Model is the Bubble Tea model of the player.
type Model struct {
	source  Source
	player  *anim.Player
	painter *Painter
	palette Palette
	canvas  *Canvas
	view    scene.View
	frame   scene.Frame
	title   string
	help    bool
}

func NewModel(src Source, player *anim.Player, p Palette, title string) Model {
	m := Model{
		source:  src,
		player:  player,
		painter: NewPainter(p),
		palette: p,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		view:    scene.DefaultView,
		title:   title,
	}
	m.draw()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(Interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Frame is the frame currently on screen.
func (m Model) Frame() scene.Frame { return m.frame }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.player.Handle(anim.TogglePause)
		case "left", "h":
			m.view.Azim -= rotateStep
		case "right", "l":
			m.view.Azim += rotateStep
		case "up", "k":
			m.view.Elev = clampElev(m.view.Elev + rotateStep)
		case "down", "j":
			m.view.Elev = clampElev(m.view.Elev - rotateStep)
		case "0":
			m.view = scene.DefaultView
		case "[":
			m.step(-1)
		case "]":
			m.step(1)
		case "?":
			m.help = !m.help
		}
		m.draw()
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.player.Handle(anim.Click)
		}
	case TickMsg:
		if m.player.Handle(anim.Tick) {
			m.draw()
		}
		return m, tick()
	}
	return m, nil
}

// step moves one frame while paused.
func (m *Model) step(dir int) {
	if !m.player.Paused {
		return
	}
	m.player.Seek(m.player.Frame() + dir)
}

func (m *Model) draw() {
	num := m.player.Frame()
	view := m.source.View(num, m.view)
	m.frame = m.source.Render(num, view)
	m.painter.Paint(m.canvas, &m.frame)
}

func clampElev(e float64) float64 {
	if e > 90 {
		return 90
	}
	if e < -90 {
		return -90
	}
	return e
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(m.title) + "\n")

	status := statusPlaying.Render("PLAYING")
	if m.player.Paused {
		status = statusPaused.Render("PAUSED")
	}
	s.WriteString(fmt.Sprintf("%s  frame %d/%d\n\n", status, m.player.Position()+1, m.player.Len()))

	s.WriteString(labelStyle.Render("phase") + valueStyle.Render(m.frame.Phase.String()) + "\n")
	s.WriteString(labelStyle.Render("view") + valueStyle.Render(fmt.Sprintf("elev %.0f azim %.0f", m.frame.View.Elev, m.frame.View.Azim)) + "\n\n")

	for _, slot := range []scene.TextSlot{scene.SlotTime, scene.SlotProperties} {
		if t := m.text(slot); t != "" {
			s.WriteString(t + "\n\n")
		}
	}
	for _, slot := range []scene.TextSlot{scene.SlotFreeze, scene.SlotTimestep} {
		if t := m.frame.Text(slot); t != "" {
			s.WriteString(noticeStyle.Render(t) + "\n")
		}
	}

	if sp := m.frame.Series; sp != nil && len(sp.Times) > 1 {
		chart := asciigraph.PlotMany([][]float64{sp.Plus, sp.Cross},
			asciigraph.Height(graphHeight), asciigraph.Width(graphWidth),
			asciigraph.LowerBound(-sp.YLim), asciigraph.UpperBound(sp.YLim),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption(fmt.Sprintf("h+ / hx   t=%.1f M", sp.Cursor)))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.help {
		s.WriteString(helpStyle.Render("SP:Pause  [ ]:Step  Q:Quit\n←→:Azimuth  ↑↓:Elevation  0:Reset view\nClick:Pause (no time series)"))
	} else {
		s.WriteString(helpStyle.Render("?:Help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.Render()), sideStyle.Render(s.String()))
}

func (m Model) text(slot scene.TextSlot) string {
	for _, t := range m.frame.Texts {
		if t.Slot == slot && t.Content != "" {
			return textStyle(m.palette.Hex(t.Role)).Render(t.Content)
		}
	}
	return ""
}

// Run plays frames until the user quits or ctx is done.
func Run(ctx context.Context, src Source, player *anim.Player, p Palette, title string) error {
	prog := tea.NewProgram(NewModel(src, player, p, title),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	return nil
}
