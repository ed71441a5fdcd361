package inbox

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/zarlcorp/zpersona/internal/mailtm"
)

// fakeMailbox replays one canned response per attempt; the last entry
// repeats if polled beyond the script.
type fakeMailbox struct {
	script []func() ([]mailtm.Message, error)
	calls  int
}

func (f *fakeMailbox) Messages(context.Context) ([]mailtm.Message, error) {
	i := f.calls
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	f.calls++
	return f.script[i]()
}

func messages(bodies ...string) func() ([]mailtm.Message, error) {
	return func() ([]mailtm.Message, error) {
		msgs := make([]mailtm.Message, len(bodies))
		base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
		for i, b := range bodies {
			// earlier entries are newer
			msgs[i] = mailtm.Message{Body: b, ReceivedAt: base.Add(-time.Duration(i) * time.Minute)}
		}
		return msgs, nil
	}
}

func failure(err error) func() ([]mailtm.Message, error) {
	return func() ([]mailtm.Message, error) { return nil, err }
}

func testQuery(attempts int) Query {
	return Query{
		Code:        regexp.MustCompile(DefaultCodePattern),
		Link:        regexp.MustCompile(DefaultLinkPattern),
		MaxAttempts: attempts,
		Interval:    time.Second,
	}
}

func newTestPoller(box Mailbox) (*Poller, *[]time.Duration) {
	p := New(box)
	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }
	return p, &slept
}

func TestPollMatchesCode(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("Your code is 482913"),
	}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(5))

	if !r.Matched || r.Kind != KindCode {
		t.Fatalf("result: %+v, want matched code", r)
	}
	if r.Value != "482913" {
		t.Errorf("value: got %q, want 482913", r.Value)
	}
	if r.Attempts != 1 {
		t.Errorf("attempts: got %d, want 1", r.Attempts)
	}
	if box.calls != 1 {
		t.Errorf("no further queries after a match: got %d calls", box.calls)
	}
}

func TestPollCodeWinsOverLink(t *testing.T) {
	// the link arrives in a newer message than the code; the code
	// still wins because code scanning covers all messages first
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("Confirm at https://svc.test/confirm/abc", "Your code is 482913"),
	}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(5))

	if !r.Matched || r.Kind != KindCode || r.Value != "482913" {
		t.Fatalf("result: %+v, want the code, not the link", r)
	}
}

func TestPollLinkWhenNoCode(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("Welcome aboard", "Confirm at https://svc.test/confirm/abc now"),
	}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(5))

	if !r.Matched || r.Kind != KindLink {
		t.Fatalf("result: %+v, want matched link", r)
	}
	if r.Value != "https://svc.test/confirm/abc" {
		t.Errorf("value: got %q", r.Value)
	}
}

func TestPollNewestMessageFirst(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("new code 111111", "old code 222222"),
	}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(5))

	if r.Value != "111111" {
		t.Errorf("value: got %q, want the newest message's code", r.Value)
	}
}

func TestPollExhaustsAfterMaxAttempts(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("nothing to see"),
	}}
	p, slept := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(3))

	if r.Matched {
		t.Fatalf("result: %+v, want exhausted", r)
	}
	if r.Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", r.Attempts)
	}
	if box.calls != 3 {
		t.Errorf("queries: got %d, want exactly 3", box.calls)
	}
	// sleeps happen between attempts only
	if len(*slept) != 2 {
		t.Errorf("sleeps: got %d, want 2", len(*slept))
	}
	for _, d := range *slept {
		if d != time.Second {
			t.Errorf("sleep duration: got %v, want 1s", d)
		}
	}
}

func TestPollTransportErrorIsAFailedAttempt(t *testing.T) {
	boom := errors.New("connection reset")
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		failure(boom),
		messages("Your code is 482913"),
	}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(5))

	if !r.Matched || r.Value != "482913" {
		t.Fatalf("result: %+v, want recovery on second attempt", r)
	}
	if r.Attempts != 2 {
		t.Errorf("attempts: got %d, want 2", r.Attempts)
	}
	if !errors.Is(r.LastErr, boom) {
		t.Errorf("LastErr: got %v, want the transport error", r.LastErr)
	}
}

func TestPollAllAttemptsFail(t *testing.T) {
	boom := errors.New("401 unauthorized")
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){failure(boom)}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(4))

	if r.Matched {
		t.Fatalf("result: %+v, want exhausted", r)
	}
	if !errors.Is(r.LastErr, boom) {
		t.Errorf("LastErr: got %v", r.LastErr)
	}
	if box.calls != 4 {
		t.Errorf("queries: got %d, want 4", box.calls)
	}
}

func TestPollEmptyInboxKeepsPolling(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages(),
		messages(),
		messages("Your code is 777000"),
	}}
	p, _ := newTestPoller(box)

	r := p.Poll(context.Background(), testQuery(5))

	if !r.Matched || r.Value != "777000" {
		t.Fatalf("result: %+v", r)
	}
	if r.LastErr != nil {
		t.Errorf("empty inbox is not an error, got %v", r.LastErr)
	}
	if r.Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", r.Attempts)
	}
}

func TestPollNilLinkPattern(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("Confirm at https://svc.test/x"),
	}}
	p, _ := newTestPoller(box)

	q := testQuery(2)
	q.Link = nil
	r := p.Poll(context.Background(), q)

	if r.Matched {
		t.Fatalf("result: %+v, want no match without a link pattern", r)
	}
}

func TestPollCustomCodePattern(t *testing.T) {
	box := &fakeMailbox{script: []func() ([]mailtm.Message, error){
		messages("Enter PIN 4321 to continue"),
	}}
	p, _ := newTestPoller(box)

	q := testQuery(2)
	q.Code = regexp.MustCompile(`\b\d{4}\b`)
	r := p.Poll(context.Background(), q)

	if !r.Matched || r.Value != "4321" {
		t.Fatalf("result: %+v", r)
	}
}

func TestKindString(t *testing.T) {
	if KindCode.String() != "code" || KindLink.String() != "link" {
		t.Error("kind strings wrong")
	}
}
