package view

import (
	"context"

	"github.com/Iron-Ham/buildview/internal/build/process"
	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/logging"
)

// Factory creates the process of one build.
type Factory func(process.Config) (process.Process, error)

// Controller connects a Session to process backends. Every method must be
// called on the session's event loop; process callbacks are handed to post,
// which must run them on that same loop in the order given.
type Controller struct {
	session *Session
	config  process.Config
	factory Factory
	post    func(func())
	logger  *logging.Logger

	proc   process.Process
	cancel context.CancelFunc
	gen    uint64
}

// NewController creates a Controller. A nil factory uses process.New.
func NewController(s *Session, cfg process.Config, factory Factory, post func(func()), logger *logging.Logger) *Controller {
	if factory == nil {
		factory = process.New
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{
		session: s,
		config:  cfg,
		factory: factory,
		post:    post,
		logger:  logger,
	}
}

// Session returns the controlled session.
func (c *Controller) Session() *Session { return c.session }

// Config returns the process configuration of the next build.
func (c *Controller) Config() process.Config { return c.config }

// SetConfig replaces the process configuration from the next build on.
func (c *Controller) SetConfig(cfg process.Config) { c.config = cfg }

// Trigger starts a new build. A running build is stopped first. When the
// process cannot be created no build starts; when it cannot be started the
// build ends in Error with the reason as its last line.
func (c *Controller) Trigger(ctx context.Context) (string, error) {
	proc, err := c.factory(c.config)
	if err != nil {
		return "", errors.NewBuildError("cannot create build process", err).WithCommand(c.config.CommandLine())
	}

	c.release()
	c.gen++
	gen := c.gen
	logger := c.logger

	id := c.session.Trigger(c.config.CommandLine(), func() {
		if err := proc.Kill(); err != nil {
			logger.LogError("kill failed", err)
		}
	})

	pctx, cancel := context.WithCancel(ctx)
	current := func() bool { return c.gen == gen }
	h := process.Handlers{
		OnData: func(b []byte) {
			c.post(func() {
				if current() {
					c.session.OnData(b)
				}
			})
		},
		OnStderr: func(b []byte) {
			c.post(func() {
				if current() {
					c.session.OnStderr(b)
				}
			})
		},
		OnExit: func(code int) {
			c.post(func() {
				if current() {
					c.session.OnExit(code)
				}
				cancel()
			})
		},
	}

	if err := proc.Start(pctx, h); err != nil {
		cancel()
		c.logger.WithBuild(id).LogError("build process failed to start", err)
		c.session.StartFailed(err)
		return id, errors.NewBuildError("cannot start build", err).WithBuildID(id).WithCommand(c.config.CommandLine())
	}
	c.proc = proc
	c.cancel = cancel
	c.logger.WithBuild(id).Debug("build process started", "pid", proc.PID())
	return id, nil
}

// Stop stops the running build. It reports false when nothing was running.
func (c *Controller) Stop() bool {
	return c.session.Stop()
}

// Close stops the running build and drops any in-flight callbacks.
func (c *Controller) Close() {
	c.session.Stop()
	c.release()
	c.gen++
}

func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.proc = nil
}
