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

// BrowseModel displays the anime catalog with genre filtering
type BrowseModel struct {
	apiClient *client.Client

	// Data
	animes   []models.Anime
	filtered []models.Anime
	genres   []string

	// Filters
	selectedGenre string

	// Pagination (client side, the catalog endpoint returns everything)
	page  int
	limit int

	// State
	loading     bool
	err         error
	cursor      int
	genreMode   bool
	genreCursor int

	// Window size
	width  int
	height int
}

// NewBrowseModel creates a new browse model
func NewBrowseModel(apiClient *client.Client, pageSize int) BrowseModel {
	if pageSize <= 0 {
		pageSize = 20
	}
	return BrowseModel{
		apiClient: apiClient,
		page:      1,
		limit:     pageSize,
		genres:    []string{"All"},
	}
}

// Init initializes and loads data
func (m BrowseModel) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadAnimes(), m.loadGenres())
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (BrowseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.genreMode {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc", "g"))):
				m.genreMode = false
				return m, nil

			case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
				if m.genreCursor < len(m.genres)-1 {
					m.genreCursor++
				}
				return m, nil

			case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
				if m.genreCursor > 0 {
					m.genreCursor--
				}
				return m, nil

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if m.genreCursor == 0 {
					m.selectedGenre = ""
				} else {
					m.selectedGenre = m.genres[m.genreCursor]
				}
				m.genreMode = false
				m.page = 1
				m.cursor = 0
				m.applyFilter()
				return m, nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("g"))):
			m.genreMode = true
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
			if m.cursor < len(m.pageItems())-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("n", "pgdown"))):
			if m.hasNextPage() {
				m.page++
				m.cursor = 0
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("p", "pgup"))):
			if m.page > 1 {
				m.page--
				m.cursor = 0
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.loading = true
			return m, tea.Batch(m.loadAnimes(), m.loadGenres())

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			items := m.pageItems()
			if len(items) > 0 {
				id := items[m.cursor].ID
				return m, func() tea.Msg {
					return SelectAnimeMsg{AnimeID: id}
				}
			}
			return m, nil
		}

	case AnimeListLoadedMsg:
		m.loading = false
		m.animes = msg.Animes
		m.applyFilter()
		return m, nil

	case GenresLoadedMsg:
		names := []string{"All"}
		names = append(names, msg.Names...)
		m.genres = names
		return m, nil

	case BrowseErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// applyFilter recomputes the filtered slice for the selected genre.
func (m *BrowseModel) applyFilter() {
	if m.selectedGenre == "" {
		m.filtered = m.animes
		return
	}
	filtered := make([]models.Anime, 0, len(m.animes))
	for _, a := range m.animes {
		for _, g := range a.Genres {
			if strings.EqualFold(g, m.selectedGenre) {
				filtered = append(filtered, a)
				break
			}
		}
	}
	m.filtered = filtered
}

// pageItems returns the slice of the current page.
func (m BrowseModel) pageItems() []models.Anime {
	start := (m.page - 1) * m.limit
	if start >= len(m.filtered) {
		return nil
	}
	end := start + m.limit
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	return m.filtered[start:end]
}

// View renders the browse view
func (m BrowseModel) View() string {
	var b strings.Builder

	if m.genreMode {
		return m.renderGenreSelection()
	}

	pageInfo := fmt.Sprintf("Page %d/%d", m.page, m.totalPages())
	b.WriteString(styles.TitleStyle.Render("📺 Browse Anime"))
	b.WriteString("  ")
	b.WriteString(styles.SubtitleStyle.Render(pageInfo))

	if m.selectedGenre != "" {
		b.WriteString("  ")
		b.WriteString(styles.BadgePrimaryStyle.Render(m.selectedGenre))
	}
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(styles.SpinnerStyle.Render("⟳ "))
		b.WriteString(styles.InfoStyle.Render("Loading anime..."))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("Press 'r' to retry"))
		return b.String()
	}

	items := m.pageItems()
	if len(items) == 0 {
		b.WriteString(styles.InfoStyle.Render("No anime found"))
		return b.String()
	}

	for i, anime := range items {
		prefix := "  "
		style := styles.ListItemStyle
		if i == m.cursor {
			prefix = "▸ "
			style = styles.ListItemSelectedStyle
		}

		title := styles.ListItemTitleStyle.Render(styles.Truncate(anime.Title, 40))
		episodes := styles.BadgePrimaryStyle.Render(fmt.Sprintf("%d ep", anime.Episodes))

		line := fmt.Sprintf("%s%s %s", prefix, title, episodes)
		b.WriteString(style.Render(line))

		if i == m.cursor && anime.Description != "" {
			desc := styles.Truncate(anime.Description, 60)
			b.WriteString("\n    ")
			b.WriteString(styles.ListItemDescStyle.Render(desc))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.RenderDivider(40))
	b.WriteString("\n")

	navHelp := "↑/↓ navigate • Enter select • g genre"
	if m.page > 1 {
		navHelp += " • p prev"
	}
	if m.hasNextPage() {
		navHelp += " • n next"
	}
	navHelp += " • r refresh"
	b.WriteString(styles.HelpStyle.Render(navHelp))

	return b.String()
}

// renderGenreSelection renders the genre selection overlay
func (m BrowseModel) renderGenreSelection() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("🎭 Select Genre"))
	b.WriteString("\n\n")

	for i, genre := range m.genres {
		prefix := "  "
		style := styles.ListItemStyle
		if i == m.genreCursor {
			prefix = "▸ "
			style = styles.ListItemSelectedStyle
		}

		if (i == 0 && m.selectedGenre == "") || genre == m.selectedGenre {
			genre = "✓ " + genre
		}

		b.WriteString(style.Render(prefix + genre))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ navigate • Enter select • ESC cancel"))

	return b.String()
}

// hasNextPage returns true if there are more pages
func (m BrowseModel) hasNextPage() bool {
	return m.page < m.totalPages()
}

// totalPages calculates total pages
func (m BrowseModel) totalPages() int {
	if len(m.filtered) == 0 {
		return 1
	}
	pages := len(m.filtered) / m.limit
	if len(m.filtered)%m.limit > 0 {
		pages++
	}
	return pages
}

// loadAnimes loads the catalog from the API
func (m BrowseModel) loadAnimes() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		animes, err := m.apiClient.ListAnimes(ctx)
		if err != nil {
			return BrowseErrorMsg{Err: err}
		}
		return AnimeListLoadedMsg{Animes: animes}
	}
}

// loadGenres loads category names for the genre filter
func (m BrowseModel) loadGenres() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		categories, err := m.apiClient.ListCategories(ctx)
		if err != nil {
			// The filter overlay just stays empty; browsing still works.
			return GenresLoadedMsg{}
		}
		names := make([]string, 0, len(categories))
		for _, c := range categories {
			names = append(names, c.Name)
		}
		return GenresLoadedMsg{Names: names}
	}
}

// Messages

// SelectAnimeMsg requests navigation to the detail view
type SelectAnimeMsg struct {
	AnimeID int64
}

// AnimeListLoadedMsg is sent when the catalog is loaded
type AnimeListLoadedMsg struct {
	Animes []models.Anime
}

// GenresLoadedMsg is sent when category names are loaded
type GenresLoadedMsg struct {
	Names []string
}

// BrowseErrorMsg is sent on browse errors
type BrowseErrorMsg struct {
	Err error
}
