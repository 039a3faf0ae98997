package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"timed-quiz-platform/internal/client"
	"timed-quiz-platform/internal/config"
)

// console reads answers line by line and prints notifications.
type console struct {
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewScanner(in), out: out}
}

func (c *console) Success(msg string) { fmt.Fprintln(c.out, "✔ "+msg) }
func (c *console) Error(msg string)   { fmt.Fprintln(c.out, "✖ "+msg) }

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ask prints prompt and returns the trimmed reply; ok is false at EOF.
func (c *console) ask(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// newAPIClient builds a client for the configured API, with the --api-url
// flag taking precedence.
func newAPIClient(configPath, urlFlag string) (*client.Client, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	base := cfg.Client.APIURL
	if urlFlag != "" {
		base = urlFlag
	}
	return client.New(base, config.TTLDuration(cfg.Client.Timeout, 15*time.Second)), cfg, nil
}
