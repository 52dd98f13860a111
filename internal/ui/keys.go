package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasAudio, exporting bool) string {
	s := "space pause  ←/→ seek"
	if hasAudio {
		s += "  ↑/↓ volume"
	}
	if exporting {
		s += "  e stop rec"
	} else {
		s += "  e record"
	}
	s += "  c color  [/] cell  g path  q quit"
	return s
}
