package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// recordField is a labeled field for display and selection.
type recordField struct {
	label string
	value string
}

// generateModel displays a freshly composed record with actions.
type generateModel struct {
	record    identity.Record
	fields    []recordField
	cursor    int
	composing bool
	flash     string
}

// keepRecordMsg requests storing the current record.
type keepRecordMsg struct {
	record identity.Record
}

// recordKeptMsg confirms the record was stored.
type recordKeptMsg struct{}

// composedMsg carries a record composed in the background.
type composedMsg struct {
	record identity.Record
}

// composeErrMsg signals a failed background composition.
type composeErrMsg struct {
	err error
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func newGenerateModel(rec identity.Record) generateModel {
	return generateModel{record: rec, fields: recordFields(rec)}
}

// recordFields lists the record's populated fields in display order.
func recordFields(rec identity.Record) []recordField {
	var out []recordField
	add := func(label, value string) {
		if value != "" {
			out = append(out, recordField{label, value})
		}
	}

	add("name", rec.FullName)
	add("email", rec.Email)
	add("token", rec.EmailToken)
	add("phone", rec.Phone)
	if a := rec.Address; a != nil {
		add("street", a.Street)
		add("city", a.City)
		add("state", a.State)
		add("country", a.Country)
	}
	add("username", rec.Username)
	add("birthdate", rec.Birthdate)
	add("password", rec.Password)
	return out
}

func (m generateModel) Init() tea.Cmd {
	return nil
}

func (m generateModel) Update(msg tea.Msg) (generateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case recordKeptMsg:
		return m.setFlash("kept"), clearFlashAfter()

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m generateModel) handleKey(msg tea.KeyMsg) (generateModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if m.composing {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		if len(m.fields) == 0 {
			return m, nil
		}
		val := m.fields[m.cursor].value
		if err := copyToClipboard(val); err != nil {
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied!"), clearFlashAfter()
	}

	switch msg.String() {
	case "s":
		return m, func() tea.Msg { return keepRecordMsg{record: m.record} }

	case "c":
		if err := copyToClipboard(m.allFieldsText()); err != nil {
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied all!"), clearFlashAfter()

	case "n":
		return m, func() tea.Msg { return navigateMsg{view: viewGenerate} }

	case "m":
		m.composing = true
		return m.setFlash("provisioning mailbox..."), composeWithMailboxCmd()

	case "i":
		if m.record.EmailToken == "" {
			return m.setFlash("no mailbox on this record (press m)"), clearFlashAfter()
		}
		token := m.record.EmailToken
		return m, func() tea.Msg { return openInboxMsg{token: token} }
	}

	return m, nil
}

// composeWithMailboxCmd composes a record with a provisioned mailbox
// in the background; provisioning is a network round-trip.
func composeWithMailboxCmd() tea.Cmd {
	return func() tea.Msg {
		cfg := defaultConfig()
		cfg.TempEmail = true
		rec, err := mailboxComposer().Compose(context.Background(), cfg)
		if err != nil {
			return composeErrMsg{err: err}
		}
		return composedMsg{record: rec}
	}
}

func (m generateModel) setFlash(msg string) generateModel {
	m.flash = msg
	return m
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

func (m generateModel) allFieldsText() string {
	var b strings.Builder
	for _, f := range m.fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func (m generateModel) View() string {
	s := "\n"

	for i, f := range m.fields {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", f.label))
		if i == m.cursor {
			s += zstyle.ActiveBorder.Render(fmt.Sprintf("  > %s %s", label, f.value)) + "\n"
		} else {
			s += fmt.Sprintf("    %s %s\n", label, f.value)
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
