package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33

	colorMagenta = 35

	colorBold = 1
)

var log = zerolog.New(os.Stderr).Level(zerolog.InfoLevel)

func Log() *zerolog.Logger {
	return &log
}

// SetConsoleWriter switches to human readable output on stderr.
func SetConsoleWriter(noColor bool) {
	log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.NoColor = noColor
		w.FormatLevel = consoleFormatLevel(noColor)
		w.TimeFormat = "15:04:05.000"
	})).Level(log.GetLevel()).With().Timestamp().Logger()
}

func SetJsonWriter() {
	SetWriter(os.Stderr)
}

func SetWriter(w io.Writer) {
	log = zerolog.New(w).Level(log.GetLevel()).With().Timestamp().Logger()
}

func SetLevel(level zerolog.Level) {
	log = log.Level(level)
}

// colorize returns the string s wrapped in ANSI code c, unless disabled is true.
func colorize(s interface{}, c int, disabled bool) string {
	if disabled {
		return fmt.Sprintf("%s", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

func consoleFormatLevel(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		ll, ok := i.(string)
		if !ok {
			if i == nil {
				return colorize("???", colorBold, noColor)
			}
			return strings.ToUpper(fmt.Sprintf("%s", i))[0:3]
		}

		switch strings.ToLower(ll) {
		case "trace":
			return colorize("TRC", colorMagenta, noColor)
		case "debug":
			return colorize("DBG", colorYellow, noColor)
		case "info":
			return colorize("[+]", colorGreen, noColor)
		case "warn":
			return colorize("[!]", colorYellow, noColor)
		case "error":
			return colorize(colorize("[-]", colorRed, noColor), colorBold, noColor)
		case "fatal":
			return colorize(colorize("[-]", colorRed, noColor), colorBold, noColor)
		case "panic":
			return colorize(colorize("PNC", colorRed, noColor), colorBold, noColor)
		default:
			return colorize("???", colorBold, noColor)
		}
	}
}
