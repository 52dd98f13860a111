package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pascal-r/glyphcast/internal/capture"
)

type tickMsg time.Time

type exportDoneMsg struct {
	blob *capture.Blob
	err  error
}

type blobSavedMsg struct {
	destName string
	err      error
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
