package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	Text Format = "text"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case JSON, YAML, Text:
		return f, nil
	default:
		return "", errors.NotValidf("output format %q", s)
	}
}

// Reporter writes outcomes to out. It is safe for concurrent use; each
// outcome is written whole.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	format Format

	okStyle      lipgloss.Style
	changedStyle lipgloss.Style
	failedStyle  lipgloss.Style
}

func New(out io.Writer, format Format) *Reporter {
	renderer := lipgloss.NewRenderer(out)
	return &Reporter{
		out:          out,
		format:       format,
		okStyle:      renderer.NewStyle().Foreground(lipgloss.Color("2")),
		changedStyle: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		failedStyle:  renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Succeed reports a completed reconciliation.
func (r *Reporter) Succeed(o Outcome) error {
	o.Failed = false
	return r.write(o)
}

// Fail reports a reconciliation that aborted with err.
func (r *Reporter) Fail(host string, err error) error {
	return r.write(Outcome{Host: host, Failed: true, Msg: err.Error()})
}

func (r *Reporter) write(o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.format {
	case YAML:
		b, err := yaml.Marshal(o)
		if err != nil {
			return errors.Trace(err)
		}
		_, err = fmt.Fprintf(r.out, "---\n%s", b)
		return errors.Trace(err)
	case Text:
		_, err := fmt.Fprintln(r.out, r.textLine(o))
		return errors.Trace(err)
	default:
		return errors.Trace(json.NewEncoder(r.out).Encode(o))
	}
}

func (r *Reporter) textLine(o Outcome) string {
	style := r.okStyle
	switch o.Status() {
	case "failed":
		style = r.failedStyle
	case "changed":
		style = r.changedStyle
	}
	host := o.Host
	if host == "" {
		host = "localhost"
	}
	line := fmt.Sprintf("%s: [%s] => %s", style.Render(o.Status()), host, o.Msg)
	if o.CheckMode {
		line += " (check mode)"
	}
	return line
}
