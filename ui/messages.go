package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lepinkainen/audioconcat/mixer"
)

// EventMsg carries one event from the running task into the update loop
type EventMsg struct {
	Event mixer.Event
}

// EventsClosedMsg is sent when the task's event channel has been closed
type EventsClosedMsg struct{}

// waitForEvent reads the next event from a running task
func waitForEvent(events <-chan mixer.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}
