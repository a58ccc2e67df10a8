package main

import (
	"fmt"
	"io"
	"sync"
)

// terminalEffects renders session effects as lines of text.
type terminalEffects struct {
	mu        sync.Mutex
	out       io.Writer
	attending bool
	decline   bool
	started   bool
}

func (e *terminalEffects) Celebrate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, "🎉 Yay! We can't wait to celebrate with you!")
}

func (e *terminalEffects) Notify(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, message)
}

func (e *terminalEffects) ScrollToSecondary() {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, "----")
}

func (e *terminalEffects) SetButtons(attending, decline bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attending, e.decline, e.started = attending, decline, true
}

// prompt prints the actions that are currently enabled.
func (e *terminalEffects) prompt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	attending, decline := e.attending, e.decline
	if !e.started {
		attending, decline = true, true
	}

	switch {
	case attending && decline:
		fmt.Fprint(e.out, "\nWill you attend? [attend/decline/quit]: ")
	case decline:
		fmt.Fprint(e.out, "\n[decline/quit]: ")
	default:
		fmt.Fprint(e.out, "\n[quit]: ")
	}
}
