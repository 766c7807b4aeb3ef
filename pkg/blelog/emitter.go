package blelog

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const valuePrefix = "Value: "

// emitter turns tapped values into Events and pushes them downstream.
// It holds no mutable state; the same emitter is shared by every tap of a session.
type emitter struct {
	next   func(Event)
	tracer Tracer
	logger *logrus.Logger
}

// text emits a status or discovery message as-is
func (e *emitter) text(category Flags, subject, message string) {
	e.emit(Event{Category: category, Subject: subject, Payload: message})
}

// bytes emits a data value. A nil buffer produces an empty payload.
func (e *emitter) bytes(category Flags, subject string, data []byte) {
	payload := ""
	if data != nil {
		payload = valuePrefix + HexDump(data)
	}
	e.emit(Event{Category: category, Subject: subject, Payload: payload})
}

func (e *emitter) emit(ev Event) {
	e.trace(ev)
	if e.next != nil {
		e.next(ev)
	}
}

// trace writes to the side channel. Failures never reach the caller.
func (e *emitter) trace(ev Event) {
	if e.tracer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"category": ev.Category.String(),
				"panic":    fmt.Sprint(r),
			}).Debug("Trace side channel failed")
		}
	}()
	e.tracer.Trace(ev)
}

// HexDump renders data as uppercase, hyphen-separated hex pairs, e.g. "01-A0-FF".
func HexDump(data []byte) string {
	const digits = "0123456789ABCDEF"

	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(data)*3 - 1)
	for i, b := range data {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(digits[b>>4])
		sb.WriteByte(digits[b&0x0f])
	}
	return sb.String()
}
