package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/screwctl/internal/devicelink"
)

const feedBuffer = 64

// linkStatusMsg carries a status change from the device link
type linkStatusMsg struct {
	status devicelink.Status
}

// receivedMsg carries text read from the device
type receivedMsg struct {
	port string
	text string
}

type received struct {
	port string
	text string
}

// Feed moves device link callbacks, which arrive on the link's read
// goroutine, into the bubbletea update loop. Deliveries never block; when
// the program falls behind the oldest pending messages win.
type Feed struct {
	statuses chan devicelink.Status
	rx       chan received
}

// NewFeed creates an empty feed. Wire it with
//
//	link := devicelink.New(cfg, devicelink.WithHandler(feed.Received))
//	link.OnStatus(feed.Status)
func NewFeed() *Feed {
	return &Feed{
		statuses: make(chan devicelink.Status, feedBuffer),
		rx:       make(chan received, feedBuffer),
	}
}

// Status queues a link status change
func (f *Feed) Status(s devicelink.Status) {
	select {
	case f.statuses <- s:
	default:
	}
}

// Received queues device text. It matches devicelink.Handler.
func (f *Feed) Received(port, text string) {
	select {
	case f.rx <- received{port: port, text: text}:
	default:
	}
}

func (f *Feed) waitForStatus() tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		return linkStatusMsg{status: <-f.statuses}
	}
}

func (f *Feed) waitForText() tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		r := <-f.rx
		return receivedMsg{port: r.port, text: r.text}
	}
}
