package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/buildview/internal/config"
	"github.com/Iron-Ham/buildview/internal/view"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render captured build output as HTML",
	Long: `Render build output with ANSI escapes as escaped, colored HTML.

Reads the file, or standard input when no file is given, and writes one
HTML line per output line. Error-match patterns from the configuration
and --pattern flags become links.

Examples:
  # Render a saved log
  buildview render build.log > build.html

  # Render the output of a command as a complete panel
  make 2>&1 | buildview render --full --pattern '(?<file>[\w/.]+):(?<line>\d+)'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	renderPatterns []string
	renderFull     bool
	renderExitCode int
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringArrayVar(&renderPatterns, "pattern", nil, "Error-match pattern (repeatable, highest priority first)")
	renderCmd.Flags().BoolVar(&renderFull, "full", false, "Render the whole panel instead of bare lines")
	renderCmd.Flags().IntVar(&renderExitCode, "exit-code", 0, "Exit code to show in the panel title with --full")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	in := cmd.InOrStdin()
	label := "stdin"
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
		label = args[0]
	}

	session, warnings := view.NewSession(view.Options{
		Patterns:  append(append([]string(nil), renderPatterns...), cfg.Build.ErrorMatch...),
		Placement: cfg.Panel.Placement(),
	})
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
	}

	session.Trigger(label, nil)
	if err := feed(session, in); err != nil {
		return err
	}
	session.OnExit(renderExitCode)

	out := bufio.NewWriter(cmd.OutOrStdout())
	if renderFull {
		fmt.Fprintln(out, session.HTML())
	} else {
		// The first line announces the command and is not part of the input
		for _, l := range session.Lines()[1:] {
			fmt.Fprintln(out, l.HTML)
		}
	}
	return out.Flush()
}

// feed delivers r to the session in chunks, as a build process would.
func feed(s *view.Session, r io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.OnData(append([]byte(nil), buf[:n]...))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}
