package tui

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program. Messages sent before Run starts the
// program are dropped.
type App struct {
	program atomic.Pointer[tea.Program]
	opts    []tea.ProgramOption
}

// NewApp creates an App. Without options the program runs in the alternate
// screen.
func NewApp(opts ...tea.ProgramOption) *App {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &App{opts: opts}
}

// Sink returns a loader sink that forwards to the running program.
func (a *App) Sink() Sink {
	return Sink{Send: a.Send}
}

// Send delivers msg to the running program.
func (a *App) Send(msg tea.Msg) {
	if p := a.program.Load(); p != nil {
		p.Send(msg)
	}
}

// Run starts the program and blocks until it exits.
func (a *App) Run(model Model) error {
	program := tea.NewProgram(model, a.opts...)
	a.program.Store(program)
	defer a.program.Store(nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			program.Send(tea.Quit())
		case <-done:
		}
	}()

	_, err := program.Run()
	return err
}
