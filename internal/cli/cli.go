// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/graphdeps/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("graphdeps", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
graphdeps - inserts control dependencies into dataflow graph programs.

Usage:
  graphdeps [options] PROGRAM_PATH

Arguments:
  PROGRAM_PATH
    Path to a single .hcl program file.

Options:
`)
		flagSet.PrintDefaults()
	}

	kindsFlag := flagSet.String("kinds", "", "Path to a directory of op-kind manifest files.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	reportFlag := flagSet.String("report", "yaml", "Report format. Options: 'yaml' or 'text'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected exactly one program path"}
	}

	report := strings.ToLower(*reportFlag)
	if report != "yaml" && report != "text" {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid report format %q", *reportFlag)}
	}

	return &app.Config{
		ProgramPath:  flagSet.Arg(0),
		KindsPath:    *kindsFlag,
		LogLevel:     *logLevelFlag,
		LogFormat:    *logFormatFlag,
		ReportFormat: report,
	}, false, nil
}
