// Package server hosts a build view in the browser. It serves the panel
// markup, a JSON API to trigger and stop builds and resolve links, and a
// server-sent event stream of build events.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/browser"

	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/panel"
	"github.com/Iron-Ham/buildview/internal/view"
)

// Options configure a Server.
type Options struct {
	Addr   string
	Runner *view.Runner
	Bus    *event.Bus
	Logger *logging.Logger
	Title  string
}

// Server is the web host of a build view.
type Server struct {
	addr   string
	title  string
	runner *view.Runner
	stream *Stream
	logger *logging.Logger
	engine *gin.Engine
}

// New creates a Server and subscribes its event stream to the bus.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Title == "" {
		opts.Title = "buildview"
	}
	s := &Server{
		addr:   opts.Addr,
		title:  opts.Title,
		runner: opts.Runner,
		stream: NewStream(opts.Bus, opts.Logger),
		logger: opts.Logger.WithPhase("http"),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.logRequests())

	r.GET("/", s.handleIndex)

	api := r.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/events", s.handleEvents)
	api.GET("/transcript", s.handleTranscript)
	api.POST("/build", s.handleBuild)
	api.POST("/stop", s.handleStop)
	api.POST("/links/:id", s.handleLink)
	api.PUT("/placement", s.handlePlacement)
	api.PUT("/patterns", s.handlePatterns)
	return r
}

// logRequests logs every request at debug level.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// URL returns the address to open in a browser.
func (s *Server) URL() string {
	host, port, err := net.SplitHostPort(s.addr)
	if err != nil {
		return "http://" + s.addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

const shutdownTimeout = 5 * time.Second

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		s.stream.Close()
		shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			s.logger.LogError("web view shutdown incomplete",
				errors.NewTimeoutError("server shutdown", shutdownTimeout).WithCause(err))
		}
	}()
	s.logger.Info("web view listening", "addr", s.addr, "url", s.URL())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close detaches the event stream from the bus and ends open streams.
func (s *Server) Close() {
	s.stream.Close()
}

// OpenBrowser opens url in the system browser.
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := renderPage(c.Writer, s.title, s.runner.Snapshot()); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.Snapshot())
}

func (s *Server) handleTranscript(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", s.runner.Transcript())
}

func (s *Server) handleBuild(c *gin.Context) {
	id, err := s.runner.Trigger()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"build_id": id})
}

func (s *Server) handleStop(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stopped": s.runner.Stop()})
}

func (s *Server) handleLink(c *gin.Context) {
	act, err := s.runner.Activate(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       act.ID,
		"pattern":  act.Pattern,
		"text":     act.Text,
		"groups":   act.Groups,
		"location": act.Location(),
	})
}

type placementRequest struct {
	Placement string `json:"placement" binding:"required"`
}

func (s *Server) handlePlacement(c *gin.Context) {
	var req placementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := panel.ParsePlacement(req.Placement)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.runner.SetPlacement(p)
	c.JSON(http.StatusOK, gin.H{"placement": p.Slug()})
}

type patternsRequest struct {
	Patterns []string `json:"patterns"`
}

func (s *Server) handlePatterns(c *gin.Context) {
	var req patternsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	errs := s.runner.SetPatterns(req.Patterns)
	invalid := make([]string, 0, len(errs))
	for _, err := range errs {
		invalid = append(invalid, err.Error())
	}
	c.JSON(http.StatusOK, gin.H{"patterns": len(req.Patterns) - len(errs), "errors": invalid})
}

// fail maps an error to a status code and a JSON body.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrUnknownLink), errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, view.ErrRunnerClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrNoCommand), errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.LogError("request failed", err, "path", c.Request.URL.Path)
		if !errors.IsUserFacing(err) {
			msg = http.StatusText(status)
		}
	}
	c.JSON(status, gin.H{"error": msg, "retryable": errors.IsRetryable(err)})
}
