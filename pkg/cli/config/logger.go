package config

import (
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
)

// Logger holds CLI flags for logging configuration
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("UCONTROL_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Sources:     cli.EnvVars("UCONTROL_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination (stdout, stderr or a file path)",
			Value:       "stderr",
			Sources:     cli.EnvVars("UCONTROL_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

// Configure installs the default logger and returns a closer for the log
// output, if one was opened.
func (l *Logger) Configure() (func(), error) {
	level, err := logging.ParseLevel(l.level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(l.format)
	if err != nil {
		return nil, err
	}

	var w io.Writer
	closer := func() {}
	switch l.output {
	case "stdout", "-":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	default:
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	logging.Configure(w, level, format)
	return closer, nil
}

func (l Logger) String() string {
	return l.format + "/" + l.level + " -> " + l.output
}
