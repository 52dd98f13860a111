package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pascal-r/glyphcast/internal/capture"
	"github.com/pascal-r/glyphcast/internal/playback"
	"github.com/pascal-r/glyphcast/internal/render"
	"github.com/pascal-r/glyphcast/internal/source"
	"github.com/pascal-r/glyphcast/internal/termview"
	"github.com/pascal-r/glyphcast/internal/util"
)

// chromeLines is how many terminal rows the header, progress and status
// chrome take away from the frame area.
const chromeLines = 7

var colorAccuracySteps = []float64{1, 0.5, 0}

// Model is the Bubbletea model for the glyphcast TUI.
type Model struct {
	ctrl  *playback.Controller
	conv  *render.Converter
	view  *termview.View
	title string

	interval time.Duration
	frame    string
	width    int
	height   int

	elapsed  time.Duration
	duration time.Duration
	volume   float64
	hasAudio bool
	paused   bool
	quitting bool

	bar         smoothBar
	barPos      float64
	spin        spinner.Model
	accuracyIdx int

	saveMsg     string
	saveMsgTime time.Time
}

// New creates the playback model. title names saved recordings.
func New(ctrl *playback.Controller, conv *render.Converter, view *termview.View, title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	volume, hasAudio := ctrl.Volume()
	fps := ctrl.FPS()

	return Model{
		ctrl:     ctrl,
		conv:     conv,
		view:     view,
		title:    title,
		interval: source.TickInterval(fps),
		duration: ctrl.Duration(),
		volume:   volume,
		hasAudio: hasAudio,
		bar:      newSmoothBar(fps),
		spin:     s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.interval), m.spin.Tick, tea.SetWindowTitle(m.title+" — glyphcast"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		alive := m.ctrl.Tick()
		m.elapsed = m.ctrl.Position()
		m.paused = m.ctrl.Paused()
		if m.hasAudio {
			m.volume, _ = m.ctrl.Volume()
		}
		if m.saveMsg != "" && time.Since(m.saveMsgTime) > 5*time.Second {
			m.saveMsg = ""
		}
		if m.duration > 0 {
			m.barPos = m.bar.step(float64(m.elapsed) / float64(m.duration))
		}
		m.renderFrame()

		if !alive {
			m.quitting = true
			m.ctrl.Close()
			cmds := []tea.Cmd{tea.SetWindowTitle("")}
			if res := m.ctrl.TakeExportResult(); res != nil {
				cmds = append(cmds, tea.Println(m.finishExport(res)))
			}
			return m, tea.Sequence(append(cmds, tea.Quit)...)
		}
		return m, tickCmd(m.interval)

	case exportDoneMsg:
		m.setSaveMsg(m.finishExport(&playback.ExportResult{Blob: msg.blob, Err: msg.err}))
		return m, nil

	case blobSavedMsg:
		if msg.err != nil {
			m.setSaveMsg(fmt.Sprintf("Save failed: %v", msg.err))
		} else {
			m.setSaveMsg(fmt.Sprintf("Saved to %s", msg.destName))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderFrame()
		return m, nil
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.ctrl.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		m.ctrl.TogglePause()
		m.paused = m.ctrl.Paused()

	case "left", "h":
		if err := m.ctrl.Seek(-5 * time.Second); err != nil {
			m.setSaveMsg(fmt.Sprintf("Seek failed: %v", err))
		}

	case "right", "l":
		if err := m.ctrl.Seek(5 * time.Second); err != nil {
			m.setSaveMsg(fmt.Sprintf("Seek failed: %v", err))
		}

	case "up", "k":
		m.ctrl.AdjustVolume(0.05)

	case "down", "j":
		m.ctrl.AdjustVolume(-0.05)

	case "e":
		return m.toggleExport()

	case "c":
		m.accuracyIdx = (m.accuracyIdx + 1) % len(colorAccuracySteps)
		acc := colorAccuracySteps[m.accuracyIdx]
		m.patchSettings(render.Patch{ColorAccuracy: &acc})

	case "[":
		if size := m.conv.Settings().CellSize - 1; size >= 1 {
			m.patchSettings(render.Patch{CellSize: &size})
		}

	case "]":
		if size := m.conv.Settings().CellSize + 1; size <= 32 {
			m.patchSettings(render.Patch{CellSize: &size})
		}

	case "g":
		next := render.PreferAccelerated
		if m.conv.Settings().Path == render.PreferAccelerated {
			next = render.CPUOnly
		}
		m.patchSettings(render.Patch{Path: &next})
	}

	return m, nil
}

func (m *Model) toggleExport() (tea.Model, tea.Cmd) {
	if m.ctrl.Exporting() {
		ctrl := m.ctrl
		return *m, func() tea.Msg {
			blob, err := ctrl.StopExport()
			return exportDoneMsg{blob: blob, err: err}
		}
	}
	if err := m.ctrl.StartExport(); err != nil {
		m.setSaveMsg(fmt.Sprintf("Recording failed: %v", err))
	} else {
		m.setSaveMsg("Recording...")
	}
	return *m, nil
}

// finishExport persists an artifact and returns the status line for it.
func (m *Model) finishExport(res *playback.ExportResult) string {
	if res.Err != nil {
		return fmt.Sprintf("Recording failed: %v", res.Err)
	}
	if res.Blob == nil {
		return "Recording discarded"
	}
	destName, err := SaveBlob(res.Blob, m.title)
	if err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	return fmt.Sprintf("Saved to %s", destName)
}

func (m *Model) setSaveMsg(s string) {
	m.saveMsg = s
	m.saveMsgTime = time.Now()
}

func (m *Model) patchSettings(p render.Patch) {
	if err := m.conv.UpdateSettings(p); err != nil {
		m.setSaveMsg(fmt.Sprintf("Settings rejected: %v", err))
	}
}

// renderFrame refreshes the cached terminal frame from the render surface.
func (m *Model) renderFrame() {
	if m.width <= 0 || m.height <= chromeLines {
		return
	}
	m.frame = m.view.Render(m.conv.Surface().Snapshot(), m.width-2, m.height-chromeLines)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	header := headerStyle.Render("glyphcast") + "  " + titleStyle.Render(m.title)

	elapsedStr := timeStyle.Render(util.FormatDuration(m.elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.duration))
	barWidth := w - len(util.FormatDuration(m.elapsed)) - len(util.FormatDuration(m.duration)) - 6
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, renderProgressBar(m.barPos, barWidth), durationStr)

	statusIcon, statusText := "▶", "playing"
	if m.paused {
		statusIcon, statusText = "❚❚", "paused"
	}
	leftText := fmt.Sprintf("%s  %s", statusIcon, statusText)
	if m.ctrl.Exporting() {
		leftText += "  " + recordStyle.Render("● REC "+m.ctrl.ExportState().String())
	} else if m.ctrl.ExportState() == capture.StateFinalizing {
		leftText += "  " + m.spin.View() + statusStyle.Render("finalizing")
	}

	right := ""
	if m.hasAudio {
		right = renderVolumePercent(m.volume)
	}
	gap := w - lipgloss.Width(leftText) - len(right) - 4
	statusLine := statusStyle.Render(leftText) + spaces(gap) + statusStyle.Render(right)

	out := " " + header + "\n"
	out += m.frame + "\n"
	out += " " + progressLine + "\n"
	out += " " + statusLine + "\n"
	if m.saveMsg != "" {
		out += " " + helpStyle.Render(m.saveMsg) + "\n"
	}
	out += " " + helpStyle.Render(helpText(m.hasAudio, m.ctrl.Exporting())) + "\n"
	return out
}
