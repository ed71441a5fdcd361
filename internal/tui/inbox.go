package tui

import (
	"context"
	"fmt"
	"regexp"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpersona/internal/codes"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/inbox"
	"github.com/zarlcorp/zpersona/internal/mailtm"
)

// openInboxMsg opens the inbox view for a mailbox token.
type openInboxMsg struct {
	token string
}

// pollDoneMsg carries the outcome of a background poll.
type pollDoneMsg struct {
	result     inbox.Result
	candidates []codes.Candidate
	msgCount   int
}

// inboxModel polls a provisioned mailbox and shows what it found.
type inboxModel struct {
	input   textinput.Model
	spin    spinner.Model
	polling bool
	done    bool
	result  inbox.Result

	// heuristic candidates shown when the strict patterns missed
	candidates []codes.Candidate
	msgCount   int
}

func newInboxModel(token string) inboxModel {
	ti := textinput.New()
	ti.Placeholder = "mailbox token"
	ti.SetValue(token)
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	return inboxModel{input: ti, spin: sp}
}

func (m inboxModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inboxModel) Update(msg tea.Msg) (inboxModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// the token input is focused, so plain q must keep typing
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if key.Matches(msg, zstyle.KeyBack) {
			return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
		}
		if key.Matches(msg, zstyle.KeyEnter) && !m.polling {
			token := m.input.Value()
			if token == "" {
				return m, nil
			}
			m.polling = true
			m.done = false
			m.candidates = nil
			return m, tea.Batch(m.spin.Tick, pollCmd(token))
		}

	case pollDoneMsg:
		m.polling = false
		m.done = true
		m.result = msg.result
		m.candidates = msg.candidates
		m.msgCount = msg.msgCount
		return m, nil

	case spinner.TickMsg:
		if !m.polling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// pollCmd runs a full poll in the background, then lists the inbox one
// final time so the view can show heuristic candidates even when the
// strict patterns matched nothing.
func pollCmd(token string) tea.Cmd {
	return func() tea.Msg {
		box := boundMailbox{client: mailtm.NewClient(), token: token}
		p := inbox.New(box)

		result := p.Poll(context.Background(), inbox.Query{
			Code:        regexp.MustCompile(inbox.DefaultCodePattern),
			Link:        regexp.MustCompile(inbox.DefaultLinkPattern),
			MaxAttempts: inbox.DefaultAttempts,
			Interval:    inbox.DefaultInterval,
		})

		var cands []codes.Candidate
		msgs, err := box.Messages(context.Background())
		if err == nil {
			for _, msg := range msgs {
				cands = append(cands, codes.Scan(msg.Body)...)
			}
			if len(cands) > 5 {
				cands = cands[:5]
			}
		}

		return pollDoneMsg{result: result, candidates: cands, msgCount: len(msgs)}
	}
}

// boundMailbox binds a mail.tm client to one account token.
type boundMailbox struct {
	client *mailtm.Client
	token  string
}

func (b boundMailbox) Messages(ctx context.Context) ([]mailtm.Message, error) {
	return b.client.Messages(ctx, b.token)
}

// mailboxComposer builds a composer wired to mail.tm provisioning.
func mailboxComposer() *identity.Composer {
	return identity.New(mailtm.NewClient())
}

func (m inboxModel) View() string {
	s := "\n  " + zstyle.MutedText.Render("token:") + "\n  " + m.input.View() + "\n\n"

	switch {
	case m.polling:
		s += "  " + m.spin.View() + " polling mailbox...\n"

	case m.done && m.result.Matched:
		kind := zstyle.StatusOK.Render(m.result.Kind.String())
		s += fmt.Sprintf("  %s  %s\n", kind, m.result.Value)
		s += "  " + zstyle.MutedText.Render(fmt.Sprintf("matched on attempt %d", m.result.Attempts)) + "\n"

	case m.done:
		s += "  " + zstyle.StatusWarn.Render(fmt.Sprintf("no match after %d attempts", m.result.Attempts)) + "\n"
		if m.result.LastErr != nil {
			s += "  " + zstyle.StatusErr.Render("last error: "+m.result.LastErr.Error()) + "\n"
		}
		if m.msgCount > 0 {
			s += "  " + zstyle.MutedText.Render(fmt.Sprintf("%d message(s) in the mailbox", m.msgCount)) + "\n"
		}

	default:
		s += "  " + zstyle.MutedText.Render("enter to poll") + "\n"
	}

	if m.done && len(m.candidates) > 0 {
		s += "\n  " + zstyle.MutedText.Render("possible codes and links:") + "\n"
		for _, c := range m.candidates {
			s += fmt.Sprintf("    %-4s %s\n", c.Kind, truncate(c.Value, 60))
		}
	}

	s += "\n"
	return s
}
