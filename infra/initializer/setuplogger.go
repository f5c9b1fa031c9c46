package initializer

import (
	"io"
	"log/slog"

	"github.com/amirasaad/fxrate/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

func setupLogger(cfg *config.Log, out io.Writer) *slog.Logger {
	styles := log.DefaultStyles()
	infoTxtColor := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor := lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugTxtColor := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}

	levelStyle := func(label string, color lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().SetString(label).Bold(true).Padding(0, 1).Foreground(color)
	}
	styles.Levels[log.ErrorLevel] = levelStyle("ERROR", errorTxtColor)
	styles.Levels[log.WarnLevel] = levelStyle("WARN", warnTxtColor)
	styles.Levels[log.InfoLevel] = levelStyle("INFO", infoTxtColor)
	styles.Levels[log.DebugLevel] = levelStyle("DEBUG", debugTxtColor)

	// Keys that carry provenance get highlighted.
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(errorTxtColor)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["source"] = lipgloss.NewStyle().Foreground(infoTxtColor)
	styles.Keys["defaulted"] = lipgloss.NewStyle().Foreground(warnTxtColor)
	styles.Keys["request_id"] = lipgloss.NewStyle().Foreground(debugTxtColor)

	formatters := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"text":   log.TextFormatter,
		"logfmt": log.LogfmtFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
