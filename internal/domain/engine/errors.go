package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for fatal run errors. Match them with errors.Is.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownSwimmer   = errors.New("unknown swimmer")
	ErrUnknownSlot      = errors.New("unknown event slot")
	ErrIneligible       = errors.New("swimmer not eligible")
	ErrConflict         = errors.New("conflicting pre-assignment")
	ErrCapacity         = errors.New("individual event capacity exhausted")
	ErrDeadlineExceeded = errors.New("optimization deadline exceeded")
)

// Error is a fatal run error that names what the caller has to fix.
type Error struct {
	Kind      error
	SwimmerID string
	Slot      string
	Team      int
	Leg       int
	Msg       string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	var ctx []string
	if e.SwimmerID != "" {
		ctx = append(ctx, "swimmer="+e.SwimmerID)
	}
	if e.Slot != "" {
		ctx = append(ctx, fmt.Sprintf("slot=%q", e.Slot))
	}
	if e.Team > 0 {
		ctx = append(ctx, fmt.Sprintf("team=%s", teamName(e.Team)))
	}
	if e.Leg > 0 {
		ctx = append(ctx, fmt.Sprintf("leg=%d", e.Leg))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, " "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// teamName maps 1 -> "A", 2 -> "B", ...
func teamName(team int) string {
	if team < 1 {
		return ""
	}
	if team <= 26 {
		return string(rune('A' + team - 1))
	}
	return fmt.Sprintf("%d", team)
}
