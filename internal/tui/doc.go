// Package tui implements the interactive terminal control panel using
// Bubbletea.
//
// The panel shows the live torque and speed gauges with their value
// buttons, the list of screws, the lock state and the device link. A port
// picker lists serial ports and accepts a typed name.
//
// All session calls happen on the bubbletea update loop. Link callbacks
// arrive on the link's own goroutine and are forwarded through a Feed.
//
// Usage:
//
//	feed := tui.NewFeed()
//	link := devicelink.New(settings.Serial, devicelink.WithHandler(feed.Received))
//	link.OnStatus(feed.Status)
//	s := session.New(settings, link)
//	err := tui.Run(ctx, s, tui.Options{Feed: feed})
package tui
