package verification

import (
	"strings"
	"time"

	dErrors "zirrmi/pkg/domain-errors"
)

const (
	CodeLength      = 6
	DefaultCooldown = 60 * time.Second
)

// Channel is how the one-time code is delivered.
type Channel int

const (
	ChannelEmail Channel = iota
	ChannelSMS
)

func (c Channel) String() string {
	if c == ChannelSMS {
		return "sms"
	}
	return "email"
}

func (c Channel) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func ParseChannel(s string) (Channel, error) {
	switch s {
	case "email":
		return ChannelEmail, nil
	case "sms":
		return ChannelSMS, nil
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown verification channel: "+s)
}

type Status int

const (
	StatusIdle Status = iota
	StatusSending
	StatusCodeSent
	StatusVerifying
	StatusVerified
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSending:
		return "sending"
	case StatusCodeSent:
		return "code_sent"
	case StatusVerifying:
		return "verifying"
	case StatusVerified:
		return "verified"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Code is the digit entry. A zero byte marks an empty position.
type Code [CodeLength]byte

// Complete reports whether every position holds a digit.
func (c Code) Complete() bool {
	for _, d := range c {
		if d == 0 {
			return false
		}
	}
	return true
}

func (c Code) String() string {
	var b strings.Builder
	for _, d := range c {
		if d != 0 {
			b.WriteByte(d)
		}
	}
	return b.String()
}

// Digits returns each position as a string, empty where nothing was entered.
func (c Code) Digits() []string {
	out := make([]string, CodeLength)
	for i, d := range c {
		if d != 0 {
			out[i] = string(d)
		}
	}
	return out
}

// Destination carries the contact details collected at signup.
type Destination struct {
	Email string
	Phone string
}

func (d Destination) For(ch Channel) string {
	if ch == ChannelSMS {
		return strings.TrimSpace(d.Phone)
	}
	return strings.TrimSpace(d.Email)
}

// Notifier receives presentation hints, such as which code position to focus.
type Notifier interface {
	Focus(index int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(index int)

func (fn NotifierFunc) Focus(index int) { fn(index) }

type nopNotifier struct{}

func (nopNotifier) Focus(int) {}

// Result is reported once the code is confirmed.
type Result struct {
	Channel     Channel
	Destination string
}
