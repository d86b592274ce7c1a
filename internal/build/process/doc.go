// Package process runs build commands and streams their output.
//
// A [Process] is a narrow capability: it starts a command, reports output
// chunks and the exit code through [Handlers], and can be killed. The
// build view never waits on a process; it only reacts to callbacks.
//
// Implementations:
//   - [ExecProcess]: separate stdout and stderr pipes
//   - [PTYProcess]: one pseudo-terminal, so tools keep their colours
//
// Handlers are called from backend goroutines. OnData and OnStderr are each
// called in the order the bytes were read, and OnExit is called exactly
// once, after all output has been delivered. Hosts marshal these calls onto
// their own event loop.
//
// # Basic Usage
//
//	cfg := process.DefaultConfig()
//	cfg.Command = "make"
//	cfg.Args = []string{"test"}
//
//	proc, err := process.New(cfg)
//	if err != nil {
//	    return err
//	}
//	err = proc.Start(ctx, process.Handlers{
//	    OnData: func(b []byte) { ... },
//	    OnExit: func(code int) { ... },
//	})
package process
