// Command hapctl is a terminal transport control for a single Hap
// movie: play/pause, seek, volume and loop-mode, driven entirely
// through the player package's public API. It renders no video itself
// — a real consumer would pair the Player's GetTexture with its own
// window — this is a control-surface demo.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bangnoise/gohap/config"
	"github.com/bangnoise/gohap/player"
)

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

const tickInterval = 33 * time.Millisecond

type tickMsg time.Time

type model struct {
	p    *player.Player
	path string
	quit bool
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), func() tea.Msg {
		m.p.Load(m.path)
		return nil
	})
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.p.Shutdown()
			m.quit = true
			return m, tea.Quit
		case " ":
			m.p.SetPaused(!m.p.IsPaused())
		case "left":
			m.p.PreviousFrame()
		case "right":
			m.p.NextFrame()
		case "up":
			m.p.SetVolume(m.p.GetVolume() + 0.05)
		case "down":
			m.p.SetVolume(m.p.GetVolume() - 0.05)
		case "l":
			m.p.SetLoopState((m.p.GetLoopState() + 1) % 3)
		case "0":
			m.p.FirstFrame()
		}
		return m, nil
	case tickMsg:
		m.p.Update()
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	if m.quit {
		return ""
	}
	if err := m.p.GetError(); err != "" {
		return errorStyle.Render("error: "+err) + "\n"
	}
	if !m.p.IsLoaded() {
		return labelStyle.Render("loading " + m.path + " ...")
	}

	pos := m.p.GetPosition()
	width := 40
	filled := int(pos * float64(width))
	if filled > width {
		filled = width
	}
	bar := barStyle.Render(repeat("=", filled)) + repeat(" ", width-filled)

	state := "playing"
	if m.p.IsPaused() {
		state = "paused"
	}
	loopNames := [...]string{"none", "loop", "palindrome"}

	return fmt.Sprintf(
		"%s\n\n[%s] %5.1f%%  %s\n%s vol %.0f%%  loop %s  %dx%d  %s total\n\n%s\n",
		headerStyle.Render("hapctl — "+m.path),
		bar, pos*100, state,
		labelStyle.Render("state:"), m.p.GetVolume()*100, loopNames[m.p.GetLoopState()],
		m.p.GetWidth(), m.p.GetHeight(),
		humanize.RelTime(time.Now(), time.Now().Add(time.Duration(m.p.GetDuration())*time.Microsecond), "", ""),
		labelStyle.Render("space play/pause · ←/→ step · ↑/↓ volume · l loop · 0 first frame · q quit"),
	)
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func main() {
	cfgPath := flag.String("config", "", "path to a gohap config YAML file")
	hapLib := flag.String("hapdecode", "libhapdecode.so", "path to the native Hap block-decoder library")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: hapctl [-config FILE] [-hapdecode PATH] <movie>")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("hapctl: load config: %v", err)
	}

	p, err := player.New(cfg, *hapLib)
	if err != nil {
		log.Fatalf("hapctl: create player: %v", err)
	}

	m := model{p: p, path: flag.Arg(0)}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatalf("hapctl: %v", err)
	}
}
