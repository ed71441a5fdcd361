// Package inbox polls a provisioned mailbox for verification codes
// and confirmation links.
package inbox

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/zarlcorp/zpersona/internal/mailtm"
)

// Defaults mirror the most common verification-email shapes: a
// six-digit code, any link, five attempts two seconds apart.
const (
	DefaultCodePattern = `\b\d{6}\b`
	DefaultLinkPattern = `https?://[^\s]+`
	DefaultAttempts    = 5
	DefaultInterval    = 2 * time.Second
)

// Mailbox lists the messages of one provisioned mailbox.
type Mailbox interface {
	Messages(ctx context.Context) ([]mailtm.Message, error)
}

// Query holds the parameters of one poll. It carries no state beyond
// the call.
type Query struct {
	Code        *regexp.Regexp // matched first, across all messages
	Link        *regexp.Regexp // matched only when no code matched
	MaxAttempts int
	Interval    time.Duration
}

// Kind classifies what a poll matched.
type Kind int

const (
	KindCode Kind = iota
	KindLink
)

func (k Kind) String() string {
	if k == KindLink {
		return "link"
	}
	return "code"
}

// Result is the outcome of a poll. An exhausted budget is a normal
// result, not an error: "no message yet" is expected and the caller
// may simply retry later.
type Result struct {
	Matched  bool
	Kind     Kind
	Value    string
	Attempts int   // attempts consumed
	LastErr  error // last transport/auth failure, if any attempt failed
}

// Poller runs bounded fixed-interval polls against a mailbox.
type Poller struct {
	box   Mailbox
	sleep func(time.Duration)
}

// New creates a poller for the given mailbox.
func New(box Mailbox) *Poller {
	return &Poller{box: box, sleep: time.Sleep}
}

// Poll queries the mailbox up to q.MaxAttempts times, sleeping
// q.Interval between attempts. Each attempt scans all message bodies,
// newest first, for the code pattern; the link pattern is consulted
// only when no message matched a code. A transport or auth failure
// counts as a failed attempt and polling continues — external inboxes
// are flaky, and only full exhaustion is worth reporting.
func (p *Poller) Poll(ctx context.Context, q Query) Result {
	result := Result{}

	for attempt := 1; attempt <= q.MaxAttempts; attempt++ {
		if attempt > 1 {
			p.sleep(q.Interval)
		}
		result.Attempts = attempt

		msgs, err := p.box.Messages(ctx)
		if err != nil {
			result.LastErr = err
			continue
		}

		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].ReceivedAt.After(msgs[j].ReceivedAt)
		})

		if q.Code != nil {
			if v, ok := scan(msgs, q.Code); ok {
				result.Matched = true
				result.Kind = KindCode
				result.Value = v
				return result
			}
		}

		if q.Link != nil {
			if v, ok := scan(msgs, q.Link); ok {
				result.Matched = true
				result.Kind = KindLink
				result.Value = v
				return result
			}
		}
	}

	return result
}

func scan(msgs []mailtm.Message, re *regexp.Regexp) (string, bool) {
	for _, m := range msgs {
		if v := re.FindString(m.Body); v != "" {
			return v, true
		}
	}
	return "", false
}
