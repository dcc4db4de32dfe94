package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/knobscope/internal/config"
	"github.com/olivier-w/knobscope/internal/knob"
	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/player"
	"github.com/olivier-w/knobscope/internal/tap"
	"github.com/olivier-w/knobscope/internal/util"
	"github.com/olivier-w/knobscope/internal/visualizer"
)

const (
	doubleClick = 400 * time.Millisecond
	nudgeStep   = 0.05
	seekStep    = 5 * time.Second
	statusTTL   = 5 * time.Second

	headerLines   = 6              // blank, header, blank, title, subtitle, blank
	footerLines   = 6 + knobHeight // blank, progress, blank, knob rows, blank, status, help
	minSpectrum   = 4
	unsizedHeight = 12
)

// Options wires a Model to its collaborators.
type Options struct {
	Player   *player.Player // nil runs the visualizer without playback
	Metadata player.Metadata
	Source   tap.Source
	Tree     *param.Tree
	Config   config.Config
	Logger   *slog.Logger
}

// Model is the Bubbletea model for the knobscope TUI.
type Model struct {
	player   *player.Player
	metadata player.Metadata
	source   tap.Source
	tree     *param.Tree
	log      *slog.Logger

	modes      []visualizer.Visualizer
	mode       int
	vcfg       visualizer.Config
	rejected   [2]float64
	frameEvery time.Duration

	dials     []*dial
	selected  int
	dragging  int
	lastPress time.Time
	lastDial  int
	sched     *programScheduler
	now       func() time.Time

	progress   progress.Model
	elapsed    time.Duration
	duration   time.Duration
	paused     bool
	repeatMode RepeatMode
	width      int
	height     int
	quitting   bool

	status     string
	statusTime time.Time
}

// New builds the model. The tree should hold the player and display groups;
// knobs are created for whichever of their parameters it has.
func New(opts Options) (Model, error) {
	if opts.Source == nil {
		return Model{}, errors.New("ui: no frame source")
	}
	if opts.Tree == nil {
		return Model{}, errors.New("ui: no parameter tree")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vcfg, err := opts.Config.Visualizer.Build()
	if err != nil {
		return Model{}, err
	}

	sched := newProgramScheduler()
	dials, err := newDials(opts.Tree, opts.Config, sched)
	if err != nil {
		return Model{}, err
	}
	log := logger.With("component", "ui")
	for _, d := range dials {
		name := d.name
		d.ctrl.Subscribe(func(ev knob.Event) {
			if ev.Kind == knob.InteractionEnded {
				log.Debug("knob released", "knob", name, "value", ev.Value, "canceled", ev.Canceled)
			}
		})
	}

	modes := visualizer.Modes()
	mode := 0
	for i, v := range modes {
		if v.Name() == opts.Config.Layout {
			mode = i
		}
	}

	frameEvery := opts.Config.FrameInterval()
	if _, ok := opts.Source.(*tap.Mock); ok {
		frameEvery = tap.MockInterval
	}

	m := Model{
		player:     opts.Player,
		metadata:   opts.Metadata,
		source:     opts.Source,
		tree:       opts.Tree,
		log:        log,
		modes:      modes,
		mode:       mode,
		vcfg:       vcfg,
		frameEvery: frameEvery,
		dials:      dials,
		dragging:   -1,
		lastDial:   -1,
		sched:      sched,
		now:        time.Now,
		progress:   progress.New(progress.WithGradient("#3267DE", "#E85D75"), progress.WithoutPercentage()),
	}
	if m.player != nil {
		m.duration = m.player.Duration()
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		frameCmd(m.frameEvery),
		waitForGlide(m.sched),
		tea.SetWindowTitle(windowTitle(m.title(), false)),
	}
	if m.player != nil {
		cmds = append(cmds, tickCmd(), checkDone(m.player))
	}
	return tea.Batch(cmds...)
}

func checkDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case glideStepMsg:
		msg()
		return m, waitForGlide(m.sched)

	case frameMsg:
		m = m.syncBounds()
		bars := visualizer.Bars(m.source.Frame(), m.vcfg)
		m.modes[m.mode].Update(bars, m.contentWidth(), m.spectrumHeight())
		return m, frameCmd(m.frameEvery)

	case tickMsg:
		if m.player != nil {
			m.elapsed = m.player.Position()
			m.paused = m.player.Paused()
		}
		if m.status != "" && m.now().Sub(m.statusTime) > statusTTL {
			m.status = ""
		}
		return m, tickCmd()

	case playbackEndedMsg:
		if m.player == nil {
			return m, nil
		}
		if m.repeatMode == RepeatOne {
			m.player.Restart()
			m.elapsed = 0
			return m, checkDone(m.player)
		}
		m.elapsed = m.duration
		cmd := m.quit()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		cmd := m.quit()
		return m, cmd
	}
	switch msg.String() {
	case " ":
		if m.player == nil {
			return m, nil
		}
		m.player.TogglePause()
		m.paused = m.player.Paused()
		return m, tea.SetWindowTitle(windowTitle(m.title(), m.paused))
	case "[":
		if m.player != nil {
			m.player.Seek(-seekStep)
		}
	case "]":
		if m.player != nil {
			m.player.Seek(seekStep)
		}
	case "r":
		m.repeatMode = m.repeatMode.Next()
	case "v":
		m.mode = (m.mode + 1) % len(m.modes)
		m.setStatus("layout " + m.modes[m.mode].Name())
	case "tab":
		if len(m.dials) > 0 {
			m.selected = (m.selected + 1) % len(m.dials)
		}
	case "shift+tab":
		if len(m.dials) > 0 {
			m.selected = (m.selected + len(m.dials) - 1) % len(m.dials)
		}
	case "left", "h":
		if d := m.selectedDial(); d != nil {
			d.nudge(-nudgeStep)
		}
	case "right", "l":
		if d := m.selectedDial(); d != nil {
			d.nudge(nudgeStep)
		}
	case "enter":
		if d := m.selectedDial(); d != nil {
			d.ctrl.ActivatePreset()
		}
	case "p":
		if d := m.selectedDial(); d != nil {
			d.ctrl.SetPreset(d.ctrl.Value())
			m.setStatus(fmt.Sprintf("%s preset stored at %s", d.name, d.display()))
		}
	case "0":
		if d := m.selectedDial(); d != nil {
			d.reset()
			m.setStatus(fmt.Sprintf("%s reset to %s", d.name, d.display()))
		}
	}
	return m, nil
}

// handleMouse routes left button gestures to the knob under the pointer.
// A second press on the same knob within doubleClick glides it to its preset
// instead of starting a drag.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	pt := knob.Point{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		if m.dragging >= 0 {
			// The release never arrived.
			m.dials[m.dragging].ctrl.CancelDrag()
			m.dragging = -1
		}
		i := dialAt(len(m.dials), m.knobTop(), msg.X, msg.Y)
		if i < 0 {
			return m
		}
		m.selected = i
		now := m.now()
		if i == m.lastDial && now.Sub(m.lastPress) <= doubleClick {
			m.lastDial = -1
			m.dials[i].ctrl.ActivatePreset()
			return m
		}
		m.lastDial, m.lastPress = i, now
		m.dragging = i
		m.dials[i].ctrl.BeginDrag(pt)

	case tea.MouseActionMotion:
		if m.dragging >= 0 {
			m.dials[m.dragging].ctrl.MoveDrag(pt)
		}

	case tea.MouseActionRelease:
		if m.dragging >= 0 {
			m.dials[m.dragging].ctrl.EndDrag()
			m.dragging = -1
		}
	}
	return m
}

// syncBounds rebuilds the visualizer config from the floor and ceiling
// parameters. A floor at or above the ceiling keeps the previous config.
func (m Model) syncBounds() Model {
	lo, hi := m.tree.Get(Floor), m.tree.Get(Ceiling)
	if lo == nil || hi == nil {
		return m
	}
	minDB, maxDB := lo.Value(), hi.Value()
	if sameDB(minDB, m.vcfg.MinAmplitudeDB()) && sameDB(maxDB, m.vcfg.MaxAmplitudeDB()) {
		return m
	}
	cfg, err := m.vcfg.WithBounds(minDB, maxDB)
	if err != nil {
		if m.rejected != [2]float64{minDB, maxDB} {
			m.rejected = [2]float64{minDB, maxDB}
			m.log.Debug("spectrum bounds rejected", "min_db", minDB, "max_db", maxDB, "err", err)
			m.setStatus("floor must stay below ceiling")
		}
		return m
	}
	m.vcfg = cfg
	m.rejected = [2]float64{}
	return m
}

// sameDB ignores the rounding a parameter adds when it stores a bound
// normalized.
func sameDB(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusTime = m.now()
}

func (m Model) selectedDial() *dial {
	if m.selected < 0 || m.selected >= len(m.dials) {
		return nil
	}
	return m.dials[m.selected]
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	if m.dragging >= 0 {
		m.dials[m.dragging].ctrl.CancelDrag()
		m.dragging = -1
	}
	m.sched.close()
	if m.player != nil {
		m.player.Close()
	}
	return tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) title() string {
	if m.player == nil && m.metadata.Title == "" {
		return "mock input"
	}
	return m.metadata.Title
}

func (m Model) contentWidth() int {
	if m.width < 30 {
		return 50
	}
	return m.width - 4
}

func (m Model) spectrumHeight() int {
	if m.height == 0 {
		return unsizedHeight
	}
	h := m.height - headerLines - footerLines
	if h < minSpectrum {
		h = minSpectrum
	}
	return h
}

// knobTop is the screen row of the first knob line.
func (m Model) knobTop() int {
	return headerLines + m.spectrumHeight() + 3
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	w := m.contentWidth()

	var b strings.Builder
	line := func(s string) {
		if s != "" {
			b.WriteString("  " + s)
		}
		b.WriteString("\n")
	}

	line("")
	line(headerStyle.Render("knobscope"))
	line("")
	line(titleStyle.Render(m.title()))
	line(artistStyle.Render(m.metadata.Line()))
	line("")

	rows := strings.Split(m.modes[m.mode].View(), "\n")
	for i := range m.spectrumHeight() {
		if i < len(rows) {
			line(rows[i])
		} else {
			line("")
		}
	}

	line("")
	line(m.progressLine(w))
	line("")
	for _, r := range renderKnobs(m.dials, m.selected) {
		line(r)
	}
	line("")
	line(m.statusLine(w))
	line(helpStyle.Render(helpText(m.player != nil)))
	return b.String()
}

func (m Model) progressLine(w int) string {
	elapsed := util.FormatDuration(m.elapsed)
	total := util.FormatDuration(m.duration)
	bar := m.progress
	bar.Width = w - len(elapsed) - len(total) - 2
	if bar.Width < 10 {
		bar.Width = 10
	}
	var ratio float64
	if m.duration > 0 {
		ratio = m.elapsed.Seconds() / m.duration.Seconds()
	}
	return fmt.Sprintf("%s %s %s", timeStyle.Render(elapsed), bar.ViewAs(ratio), timeStyle.Render(total))
}

func (m Model) statusLine(w int) string {
	icon, text := "▶", "playing"
	switch {
	case m.player == nil:
		icon, text = "◌", "mock"
	case m.paused:
		icon, text = "❚❚", "paused"
	}
	left := fmt.Sprintf("%s  %s  %s", icon, text, m.modes[m.mode].Name())
	if r := m.repeatMode.Icon(); r != "" {
		left += "  " + r
	}
	if m.status != "" {
		left += "  " + m.status
	}
	right := fmt.Sprintf("%d bars  %.0f..%.0f dB", m.vcfg.BarCount(), m.vcfg.MinAmplitudeDB(), m.vcfg.MaxAmplitudeDB())
	gap := w - len([]rune(left)) - len(right)
	if gap < 2 {
		gap = 2
	}
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " - knobscope"
	}
	return "▶ " + title + " - knobscope"
}
