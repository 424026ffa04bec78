package internal

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, verbose output,
// status messages).
type UIManager interface {
	// NewProgressBar creates a counting bar, e.g. items in a batch.
	NewProgressBar(total int, description string) ProgressBar

	// NewByteProgressBar creates a byte-denominated bar for transfers. A
	// negative total means the size is unknown and the bar runs in spinner
	// mode.
	NewByteProgressBar(total int64, description string) ProgressBar

	// Verbose output
	Verbose(format string, args ...any)

	// Status messages
	Printf(format string, args ...any)
	Println(args ...any)
}

// ProgressBar abstracts progress bar operations. It implements io.Writer so
// a byte bar can sit in an io.MultiWriter during a download.
type ProgressBar interface {
	Set(current int)
	Write(p []byte) (int, error)
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations. Bars render only when
// stdout is a terminal.
type StandardUIManager struct {
	verbose bool
	quiet   bool
	tty     bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
		tty:     isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.quiet || !ui.tty {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(int64(total))}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) NewByteProgressBar(total int64, description string) ProgressBar {
	if ui.quiet || !ui.tty {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(total)}
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Println(args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Set(current int) {
	v.bar.Set(current)
}

func (v *VisibleProgressBar) Write(p []byte) (int, error) {
	return v.bar.Write(p)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	v.bar.Finish()
}

// SilentProgressBar implements a no-output progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Set(current int) {
	s.bar.Set(current)
}

func (s *SilentProgressBar) Write(p []byte) (int, error) {
	return s.bar.Write(p)
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {
	s.bar.Finish()
}
