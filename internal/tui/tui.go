// Package tui implements the root Bubble Tea model for zpersona.
package tui

import (
	"context"
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// accent is zpersona's interface color.
var accent = lipgloss.Color("#5fd7af")

type viewID int

const (
	viewPassword viewID = iota
	viewMenu
	viewGenerate
	viewList
	viewDetail
	viewInbox
)

// Model is the root TUI model.
type Model struct {
	version  string
	dataDir  string
	composer *identity.Composer
	store    *zstore.Store
	records  *zstore.Collection[identity.Record]
	firstRun bool

	active   viewID
	password passwordModel
	menu     menuModel
	generate generateModel
	list     listModel
	detail   detailModel
	inbox    inboxModel

	width  int
	height int
}

// New creates the root TUI model. composer must be able to provision
// mailboxes if the user asks for one from the generate view.
func New(version, dataDir string, composer *identity.Composer, firstRun bool) Model {
	return Model{
		version:  version,
		dataDir:  dataDir,
		composer: composer,
		firstRun: firstRun,
		active:   viewPassword,
		password: newPasswordModel(firstRun),
		menu:     newMenuModel(version),
	}
}

func (m Model) Init() tea.Cmd {
	return m.password.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case passwordSubmitMsg:
		return m.openStore(msg.password)

	case navigateMsg:
		return m.navigate(msg.view)

	case composedMsg:
		m.generate = newGenerateModel(msg.record)
		m.active = viewGenerate
		return m, nil

	case composeErrMsg:
		m.generate.composing = false
		m.generate.flash = "generate: " + msg.err.Error()
		return m, clearFlashAfter()

	case keepRecordMsg:
		return m.handleKeep(msg.record)

	case forgetRecordMsg:
		return m.handleForget(msg.username)

	case viewRecordMsg:
		m.detail = newDetailModel(msg.record)
		m.active = viewDetail
		return m, nil

	case openInboxMsg:
		m.inbox = newInboxModel(msg.token)
		m.active = viewInbox
		return m, m.inbox.Init()
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password and menu include the logo — render directly
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewMenu:
		return m.menu.View()
	}

	var content string
	switch m.active {
	case viewGenerate:
		content = m.generate.View()
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	case viewInbox:
		content = m.inbox.View()
	}

	header := zstyle.RenderHeader("zpersona", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func viewTitle(id viewID) string {
	switch id {
	case viewGenerate:
		return "Generate Record"
	case viewList:
		return "Kept Records"
	case viewDetail:
		return "Record Details"
	case viewInbox:
		return "Inbox"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewGenerate:
		return []zstyle.HelpPair{
			{Key: "s", Desc: "keep"},
			{Key: "c", Desc: "copy all"},
			{Key: "enter", Desc: "copy field"},
			{Key: "n", Desc: "new"},
			{Key: "m", Desc: "new+mailbox"},
			{Key: "i", Desc: "inbox"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewList:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "d", Desc: "forget"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy field"},
			{Key: "c", Desc: "copy all"},
			{Key: "i", Desc: "inbox"},
			{Key: "d", Desc: "forget"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewInbox:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "poll"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewGenerate:
		m.generate, cmd = m.generate.Update(msg)
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	}

	return m, cmd
}

func (m Model) openStore(password string) (tea.Model, tea.Cmd) {
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	fsys := zfilesystem.NewOSFileSystem(m.dataDir)
	s, err := zstore.Open(fsys, []byte(password))
	if err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	col, err := zstore.NewCollection[identity.Record](s, "identities")
	if err != nil {
		s.Close()
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	m.store = s
	m.records = col
	m.active = viewMenu
	return m, nil
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		mm := newMenuModel(m.version)
		if m.records != nil {
			if recs, err := m.records.List(); err == nil {
				mm.recordCount = len(recs)
			}
		}
		m.menu = mm
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewGenerate:
		rec, err := m.composer.Compose(context.Background(), defaultConfig())
		if err != nil {
			m.generate = newGenerateModel(identity.Record{})
			m.generate.flash = "generate: " + err.Error()
			m.active = viewGenerate
			return m, tea.Batch(tea.ClearScreen, clearFlashAfter())
		}
		m.generate = newGenerateModel(rec)
		m.active = viewGenerate
		return m, tea.ClearScreen

	case viewList:
		m, cmd := m.loadList()
		return m, tea.Batch(cmd, tea.ClearScreen)

	case viewDetail:
		m.active = viewDetail
		return m, tea.ClearScreen

	case viewInbox:
		m.inbox = newInboxModel("")
		m.active = viewInbox
		return m, tea.Batch(m.inbox.Init(), tea.ClearScreen)
	}

	return m, nil
}

// defaultConfig is what the generate view composes with; the CLI is
// the place for fine-grained control.
func defaultConfig() identity.Config {
	return identity.Config{Country: "US", Gender: identity.GenderAny, MinAge: 18, MaxAge: 65}
}

func (m Model) loadList() (Model, tea.Cmd) {
	recs, err := m.records.List()
	if err != nil {
		m.list = newListModel(nil)
		m.list.flash = "load: " + err.Error()
		m.active = viewList
		return m, clearFlashAfter()
	}

	// sort newest first — zstore.List does not guarantee order, and
	// Created is formatted so string order is time order
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Created > recs[j].Created
	})

	m.list = newListModel(recs)
	m.active = viewList
	return m, nil
}

func (m Model) handleKeep(rec identity.Record) (tea.Model, tea.Cmd) {
	if rec.Username == "" {
		m.generate.flash = "keep: record has no username"
		return m, clearFlashAfter()
	}
	if err := m.records.Put(rec.Username, rec); err != nil {
		m.generate.flash = "keep: " + err.Error()
		return m, clearFlashAfter()
	}

	m.generate, _ = m.generate.Update(recordKeptMsg{})
	return m, clearFlashAfter()
}

func (m Model) handleForget(username string) (tea.Model, tea.Cmd) {
	if err := m.records.Delete(username); err != nil {
		if m.active == viewDetail {
			m.detail.flash = "forget: " + err.Error()
		} else {
			m.list.flash = "forget: " + err.Error()
		}
		return m, clearFlashAfter()
	}

	mm, cmd := m.loadList()
	return mm, cmd
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.store != nil {
		m.store.Close()
	}
}
