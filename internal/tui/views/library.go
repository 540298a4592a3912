package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"animehub/internal/client"
	"animehub/internal/tui/styles"
	"animehub/pkg/models"
)

// libraryTabs is the category order shown across the top of the view.
var libraryTabs = []models.StatusTag{
	models.TagWatching,
	models.TagCompleted,
	models.TagOnHold,
	models.TagDropped,
	models.TagPlanToWatch,
	models.TagFavourites,
	models.TagLikes,
	models.TagDislikes,
}

// LibraryModel shows the user's per-category lists and summary counts
type LibraryModel struct {
	apiClient *client.Client
	userID    int64

	// Data
	summary *models.StatusSummary
	entries []models.Status
	titles  map[int64]string

	// State
	tab     int
	cursor  int
	loading bool
	err     error

	// Window size
	width  int
	height int
}

// NewLibraryModel creates a new library model
func NewLibraryModel(apiClient *client.Client) LibraryModel {
	return LibraryModel{
		apiClient: apiClient,
		titles:    make(map[int64]string),
	}
}

// SetUserID sets the user whose library is shown
func (m *LibraryModel) SetUserID(userID int64) {
	m.userID = userID
}

// Init initializes and loads data
func (m LibraryModel) Init() tea.Cmd {
	if m.userID == 0 {
		return nil
	}
	m.loading = true
	return tea.Batch(m.loadSummary(), m.loadList(libraryTabs[m.tab]))
}

// Update handles messages
func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("tab", "l", "right"))):
			m.tab = (m.tab + 1) % len(libraryTabs)
			m.cursor = 0
			m.loading = true
			return m, m.loadList(libraryTabs[m.tab])

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+tab", "h", "left"))):
			m.tab--
			if m.tab < 0 {
				m.tab = len(libraryTabs) - 1
			}
			m.cursor = 0
			m.loading = true
			return m, m.loadList(libraryTabs[m.tab])

		case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.loading = true
			return m, tea.Batch(m.loadSummary(), m.loadList(libraryTabs[m.tab]))

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if len(m.entries) > 0 {
				id := m.entries[m.cursor].AnimeID
				return m, func() tea.Msg {
					return SelectAnimeMsg{AnimeID: id}
				}
			}
			return m, nil
		}

	case SummaryLoadedMsg:
		m.summary = msg.Summary
		return m, nil

	case LibraryListLoadedMsg:
		if msg.Tag != libraryTabs[m.tab] {
			return m, nil
		}
		m.loading = false
		m.entries = msg.Entries
		for id, title := range msg.Titles {
			m.titles[id] = title
		}
		return m, nil

	case LibraryErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// View renders the library view
func (m LibraryModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("📚 My Library"))
	if m.summary != nil {
		b.WriteString("  ")
		b.WriteString(styles.SubtitleStyle.Render(
			fmt.Sprintf("%d entries • %d episodes watched", m.summary.TotalEntries, m.summary.Episodes)))
	}
	b.WriteString("\n\n")

	// Category tabs
	for i, tag := range libraryTabs {
		label := string(tag)
		if m.summary != nil {
			label = fmt.Sprintf("%s %d", tag, m.summary.Counts[tag])
		}
		if i == m.tab {
			b.WriteString(styles.BadgePrimaryStyle.Render(label))
		} else {
			b.WriteString(styles.HelpStyle.Render(label))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n")
	b.WriteString(styles.RenderDivider(60))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(styles.SpinnerStyle.Render("⟳ "))
		b.WriteString(styles.InfoStyle.Render("Loading..."))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("Press 'r' to retry"))
		return b.String()
	}

	if len(m.entries) == 0 {
		b.WriteString(styles.InfoStyle.Render("Nothing here yet"))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("Tab switch category • r refresh"))
		return b.String()
	}

	for i, entry := range m.entries {
		prefix := "  "
		style := styles.ListItemStyle
		if i == m.cursor {
			prefix = "▸ "
			style = styles.ListItemSelectedStyle
		}

		title := m.titles[entry.AnimeID]
		if title == "" {
			title = fmt.Sprintf("anime %d", entry.AnimeID)
		}

		line := fmt.Sprintf("%s%s  %s", prefix,
			styles.ListItemTitleStyle.Render(styles.Truncate(title, 40)),
			styles.ListItemDescStyle.Render(entry.CreatedAt.Format("2006-01-02")))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ navigate • Enter open • Tab switch category • r refresh"))

	return b.String()
}

// loadSummary loads the per-category counts
func (m LibraryModel) loadSummary() tea.Cmd {
	userID := m.userID
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := m.apiClient.GetSummary(ctx, userID)
		if err != nil {
			return LibraryErrorMsg{Err: err}
		}
		return SummaryLoadedMsg{Summary: summary}
	}
}

// loadList loads one category, resolving titles for display
func (m LibraryModel) loadList(tag models.StatusTag) tea.Cmd {
	userID := m.userID
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := m.apiClient.GetUserList(ctx, userID, tag)
		if err != nil {
			return LibraryErrorMsg{Err: err}
		}

		titles := make(map[int64]string, len(entries))
		for _, e := range entries {
			if a, err := m.apiClient.GetAnime(ctx, e.AnimeID); err == nil {
				titles[e.AnimeID] = a.Title
			}
		}
		return LibraryListLoadedMsg{Tag: tag, Entries: entries, Titles: titles}
	}
}

// Messages

// SummaryLoadedMsg is sent when the summary is loaded
type SummaryLoadedMsg struct {
	Summary *models.StatusSummary
}

// LibraryListLoadedMsg is sent when one category list is loaded
type LibraryListLoadedMsg struct {
	Tag     models.StatusTag
	Entries []models.Status
	Titles  map[int64]string
}

// LibraryErrorMsg is sent on library errors
type LibraryErrorMsg struct {
	Err error
}
