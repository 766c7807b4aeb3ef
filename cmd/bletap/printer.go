package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/srg/bletap/pkg/blelog"
	"golang.org/x/term"
)

const timeLayout = "15:04:05.000"

// Printer writes events to the terminal
type Printer interface {
	Print(ev blelog.Event) error
}

// newPrinter returns a printer for format ("text" or "json")
func newPrinter(w io.Writer, format string, colored bool) (Printer, error) {
	switch format {
	case "text":
		return newTextPrinter(w, colored), nil
	case "json":
		return &jsonPrinter{enc: json.NewEncoder(w), clock: time.Now}, nil
	default:
		return nil, fmt.Errorf("invalid format '%s': must be one of [text json]", format)
	}
}

// colorEnabled resolves the color mode; "auto" colors only terminals
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
}

type textPrinter struct {
	w      io.Writer
	clock  func() time.Time
	colors map[blelog.Flags]*color.Color
	plain  *color.Color
}

func newTextPrinter(w io.Writer, colored bool) *textPrinter {
	p := &textPrinter{
		w:     w,
		clock: time.Now,
		colors: map[blelog.Flags]*color.Color{
			blelog.AdapterStatus:            color.New(color.FgMagenta, color.Bold),
			blelog.AdapterScanResults:       color.New(color.FgMagenta),
			blelog.AdapterScanStatus:        color.New(color.FgMagenta),
			blelog.DeviceStatus:             color.New(color.FgYellow, color.Bold),
			blelog.ServiceDiscovered:        color.New(color.FgBlue),
			blelog.CharacteristicDiscovered: color.New(color.FgBlue),
			blelog.DescriptorDiscovered:     color.New(color.FgBlue),
			blelog.CharacteristicRead:       color.New(color.FgGreen),
			blelog.CharacteristicWrite:      color.New(color.FgRed),
			blelog.CharacteristicNotify:     color.New(color.FgCyan),
			blelog.DescriptorRead:           color.New(color.FgGreen),
			blelog.DescriptorWrite:          color.New(color.FgRed),
		},
		plain: color.New(color.Reset),
	}
	for _, c := range p.colors {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	p.plain.DisableColor()
	return p
}

func (p *textPrinter) Print(ev blelog.Event) error {
	c, ok := p.colors[ev.Category]
	if !ok {
		c = p.plain
	}

	var sb strings.Builder
	sb.WriteString(p.clock().Format(timeLayout))
	sb.WriteByte(' ')
	sb.WriteString(c.Sprintf("[%s]", ev.Category))
	if ev.HasSubject() {
		sb.WriteByte(' ')
		sb.WriteString(ev.Subject)
	}
	if ev.Payload != "" {
		sb.WriteByte(' ')
		sb.WriteString(ev.Payload)
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(p.w, sb.String())
	return err
}

type jsonRecord struct {
	Time     string `json:"time"`
	Category string `json:"category"`
	Subject  string `json:"subject,omitempty"`
	Payload  string `json:"payload"`
}

type jsonPrinter struct {
	enc   *json.Encoder
	clock func() time.Time
}

func (p *jsonPrinter) Print(ev blelog.Event) error {
	return p.enc.Encode(jsonRecord{
		Time:     p.clock().Format(time.RFC3339Nano),
		Category: ev.Category.String(),
		Subject:  ev.Subject,
		Payload:  ev.Payload,
	})
}
