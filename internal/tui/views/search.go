package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"animehub/internal/client"
	"animehub/internal/tui/styles"
	"animehub/pkg/models"
)

const searchDebounce = 300 * time.Millisecond

// SearchModel handles incremental anime search. Each keystroke bumps a
// sequence number; the query fires only after the debounce window, and
// responses carrying an old sequence are dropped so a slow early request can
// never overwrite the results of a newer one.
type SearchModel struct {
	apiClient *client.Client

	// Input
	searchInput textinput.Model
	seq         int64

	// Results
	results []models.Anime

	// State
	loading      bool
	err          error
	hasSearched  bool
	cursor       int
	inputFocused bool

	// Window size
	width  int
	height int
}

// NewSearchModel creates a new search model
func NewSearchModel(apiClient *client.Client) SearchModel {
	searchInput := textinput.New()
	searchInput.Placeholder = "Type to search..."
	searchInput.CharLimit = 100
	searchInput.Width = 50
	searchInput.Focus()

	return SearchModel{
		apiClient:    apiClient,
		searchInput:  searchInput,
		inputFocused: true,
	}
}

// Init initializes the model
func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.inputFocused {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				// Enter skips the debounce window.
				if m.searchInput.Value() != "" {
					m.seq++
					m.loading = true
					m.hasSearched = true
					return m, m.doSearch(m.seq, m.searchInput.Value())
				}
				return m, nil

			case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
				if len(m.results) > 0 {
					m.inputFocused = false
					m.searchInput.Blur()
				}
				return m, nil
			}

			var cmd tea.Cmd
			oldValue := m.searchInput.Value()
			m.searchInput, cmd = m.searchInput.Update(msg)
			cmds = append(cmds, cmd)

			if newQuery := m.searchInput.Value(); newQuery != oldValue {
				m.seq++
				if newQuery == "" {
					m.results = nil
					m.hasSearched = false
					m.loading = false
				} else {
					seq := m.seq
					cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
						return searchDebounceMsg{Seq: seq}
					}))
				}
			}
		} else {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("/"))):
				m.inputFocused = true
				m.searchInput.Focus()
				return m, textinput.Blink

			case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
				if m.cursor < len(m.results)-1 {
					m.cursor++
				}
				return m, nil

			case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
				if m.cursor > 0 {
					m.cursor--
				} else {
					m.inputFocused = true
					m.searchInput.Focus()
				}
				return m, nil

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.results) > 0 {
					id := m.results[m.cursor].ID
					return m, func() tea.Msg {
						return SelectAnimeMsg{AnimeID: id}
					}
				}
				return m, nil
			}
		}

	case searchDebounceMsg:
		// A newer keystroke superseded this timer.
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = true
		m.hasSearched = true
		return m, m.doSearch(msg.Seq, m.searchInput.Value())

	case SearchResultsMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.results = msg.Results
		m.cursor = 0
		return m, nil

	case SearchErrorMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the search view
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("🔍 Search Anime"))
	b.WriteString("\n\n")

	inputStyle := styles.InputStyle
	if m.inputFocused {
		inputStyle = styles.InputFocusedStyle
	}
	b.WriteString(inputStyle.Render("Search: "))
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(styles.SpinnerStyle.Render("⟳ "))
		b.WriteString(styles.InfoStyle.Render("Searching..."))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		return b.String()
	}

	if !m.hasSearched {
		b.WriteString(styles.HelpStyle.Render("Start typing to search the catalog"))
		return b.String()
	}

	if len(m.results) == 0 {
		b.WriteString(styles.InfoStyle.Render("No results found for: "))
		b.WriteString(styles.HighlightStyle.Render(m.searchInput.Value()))
		return b.String()
	}

	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Found %d results", len(m.results))))
	b.WriteString("\n")
	b.WriteString(styles.RenderDivider(40))
	b.WriteString("\n\n")

	for i, anime := range m.results {
		prefix := "  "
		style := styles.ListItemStyle
		if i == m.cursor && !m.inputFocused {
			prefix = "▸ "
			style = styles.ListItemSelectedStyle
		}

		title := styles.ListItemTitleStyle.Render(styles.Truncate(anime.Title, 40))
		episodes := styles.BadgePrimaryStyle.Render(fmt.Sprintf("%d ep", anime.Episodes))

		line := fmt.Sprintf("%s%s %s", prefix, title, episodes)
		b.WriteString(style.Render(line))

		if i == m.cursor && !m.inputFocused && anime.Description != "" {
			desc := styles.Truncate(anime.Description, 60)
			b.WriteString("\n    ")
			b.WriteString(styles.ListItemDescStyle.Render(desc))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("/ focus search • ↑/↓ navigate • Enter select"))

	return b.String()
}

// doSearch performs the search API call, tagged with its sequence number
func (m SearchModel) doSearch(seq int64, query string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		results, err := m.apiClient.SearchAnimes(ctx, query)
		if err != nil {
			return SearchErrorMsg{Seq: seq, Err: err}
		}
		return SearchResultsMsg{Seq: seq, Results: results}
	}
}

// Messages

type searchDebounceMsg struct {
	Seq int64
}

// SearchResultsMsg is sent when search completes
type SearchResultsMsg struct {
	Seq     int64
	Results []models.Anime
}

// SearchErrorMsg is sent on search errors
type SearchErrorMsg struct {
	Seq int64
	Err error
}
