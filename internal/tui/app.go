package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/buildview/internal/config"
	"github.com/Iron-Ham/buildview/internal/tui/msg"
	"github.com/Iron-Ham/buildview/internal/watch"
)

// AppOptions configure the terminal application.
type AppOptions struct {
	Options

	// AltScreen runs the UI in the alternate screen buffer.
	AltScreen bool

	// Watch, when set, rebuilds when a matching file is saved.
	Watch *watch.Options

	// ReloadConfig applies config file edits while running.
	ReloadConfig bool
}

// App is the terminal application.
type App struct {
	opts    AppOptions
	model   Model
	program *tea.Program
	cancel  context.CancelFunc
}

// New creates the application. Builds run until Run returns.
func New(opts AppOptions) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{opts: opts, cancel: cancel}
	a.model = NewModel(ctx, opts.Options, a.post)
	return a
}

// post hands fn to the Bubbletea loop.
func (a *App) post(fn func()) {
	if a.program != nil {
		a.program.Send(msg.LoopMsg{Fn: fn})
	}
}

// Run starts the UI and blocks until the user quits.
func (a *App) Run() error {
	defer a.cancel()
	defer a.model.Close()

	programOpts := []tea.ProgramOption{}
	if a.opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if a.opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	a.program = tea.NewProgram(a.model, programOpts...)

	// Set up signal handling so a running build is stopped on exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	if a.opts.Watch != nil {
		w, err := a.watcher(*a.opts.Watch)
		if err != nil {
			signal.Stop(sigChan)
			return err
		}
		w.Start()
		defer w.Stop()
	}

	if a.opts.ReloadConfig {
		config.Watch(func(cfg *config.Config, err error) {
			a.program.Send(msg.ConfigReloadedMsg{Config: cfg, Err: err})
		})
	}

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	return err
}

func (a *App) watcher(opts watch.Options) (*watch.Watcher, error) {
	opts.OnChange = func(paths []string) {
		a.program.Send(msg.FilesChangedMsg{Paths: paths})
	}
	if opts.Logger == nil {
		opts.Logger = a.opts.Logger
	}
	return watch.New(opts)
}
