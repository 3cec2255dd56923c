// Package console shows toggle prompts and errors on a terminal.
package console

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Prompter writes login prompts and error reports as plain text lines.
// It implements rsvptoggle.LoginPrompter and rsvptoggle.ErrorReporter.
type Prompter struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

func NewPrompter(out io.Writer, logger *slog.Logger) *Prompter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prompter{out: out, logger: logger}
}

func (p *Prompter) PromptLogin(message string) {
	p.println("login required: " + plain(message))
}

func (p *Prompter) ReportError(message string) {
	p.logger.Warn("rsvp failed", "message", message)
	p.println("error: " + plain(message))
}

func (p *Prompter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.out, line); err != nil {
		p.logger.Error("console write failed", "error", err)
	}
}

// plain drops markup and collapses whitespace.
func plain(s string) string {
	s = html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
	return strings.Join(strings.Fields(s), " ")
}
