// Package tui is the terminal client: browse and search the catalog, open an
// anime, and manage reactions, favourites, watch states and episode progress
// with optimistic updates.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"animehub/internal/client"
	"animehub/internal/tui/config"
	"animehub/internal/tui/styles"
	"animehub/internal/tui/views"
)

// View represents different screens in the TUI
type View int

const (
	ViewAuth View = iota
	ViewBrowse
	ViewSearch
	ViewDetail
	ViewLibrary
)

// Model is the root Bubble Tea model
type Model struct {
	// Configuration
	config *config.Config

	// API client and the per-user reconciliation store
	apiClient *client.Client
	store     *client.Store

	// Current view
	currentView  View
	previousView View

	// Key bindings
	keys KeyMap

	// Window dimensions
	width  int
	height int

	// User state
	isAuthenticated bool
	currentUser     string
	currentUserID   int64

	// View models
	authModel    views.AuthModel
	browseModel  views.BrowseModel
	searchModel  views.SearchModel
	detailModel  views.DetailModel
	libraryModel views.LibraryModel

	// Error state
	err error
}

// New creates a new TUI application
func New(cfg *config.Config) *Model {
	apiClient := client.NewClient(cfg.GetHTTPBaseURL())

	m := &Model{
		config:      cfg,
		apiClient:   apiClient,
		currentView: ViewAuth,
		keys:        DefaultKeyMap(),
	}

	m.authModel = views.NewAuthModel(apiClient)
	m.browseModel = views.NewBrowseModel(apiClient, cfg.UI.PageSize)
	m.searchModel = views.NewSearchModel(apiClient)
	m.detailModel = views.NewDetailModel(apiClient, cfg.GetWebSocketURL())
	m.libraryModel = views.NewLibraryModel(apiClient)

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.authModel.Init()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.authModel, _ = m.authModel.Update(msg)
		m.browseModel, _ = m.browseModel.Update(msg)
		m.searchModel, _ = m.searchModel.Update(msg)
		m.detailModel, _ = m.detailModel.Update(msg)
		m.libraryModel, _ = m.libraryModel.Update(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.currentView == ViewSearch && msg.String() == "q" {
				break // typing in the search box
			}
			m.detailModel.Close()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Browse):
			if m.isAuthenticated && m.currentView != ViewAuth && m.currentView != ViewSearch {
				m.previousView = m.currentView
				m.currentView = ViewBrowse
				return m, m.browseModel.Init()
			}

		case key.Matches(msg, m.keys.Search):
			if m.isAuthenticated && m.currentView != ViewAuth && m.currentView != ViewSearch {
				m.previousView = m.currentView
				m.currentView = ViewSearch
				return m, m.searchModel.Init()
			}

		case key.Matches(msg, m.keys.Library):
			if m.isAuthenticated && m.currentView != ViewAuth && m.currentView != ViewSearch {
				m.previousView = m.currentView
				m.currentView = ViewLibrary
				return m, m.libraryModel.Init()
			}

		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewDetail {
				m.detailModel.Close()
				m.currentView = m.previousView
				return m, nil
			}
			if m.currentView == ViewSearch {
				m.currentView = ViewBrowse
				return m, nil
			}
		}

	case views.AuthSuccessMsg:
		m.isAuthenticated = true
		m.apiClient.SetToken(msg.Token)
		if msg.User != nil {
			m.currentUser = msg.User.Name
			m.currentUserID = msg.User.ID
			m.libraryModel.SetUserID(msg.User.ID)
			m.store = client.NewStore(m.apiClient, msg.User.ID, nil)
			m.detailModel.SetStore(m.store)
		}
		m.currentView = ViewBrowse
		return m, m.browseModel.Init()

	case views.AuthErrorMsg:
		m.err = msg.Err
		return m, nil

	case views.SelectAnimeMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, m.detailModel.SetAnime(msg.AnimeID)
	}

	return m.updateCurrentView(msg)
}

// updateCurrentView routes updates to the active view
func (m Model) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.authModel, cmd = m.authModel.Update(msg)
	case ViewBrowse:
		m.browseModel, cmd = m.browseModel.Update(msg)
	case ViewSearch:
		m.searchModel, cmd = m.searchModel.Update(msg)
	case ViewDetail:
		m.detailModel, cmd = m.detailModel.Update(msg)
	case ViewLibrary:
		m.libraryModel, cmd = m.libraryModel.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewAuth:
		content = m.authModel.View()
	case ViewBrowse:
		content = m.browseModel.View()
	case ViewSearch:
		content = m.searchModel.View()
	case ViewDetail:
		content = m.detailModel.View()
	case ViewLibrary:
		content = m.libraryModel.View()
	default:
		content = "Unknown view"
	}

	var statusBar string
	if m.isAuthenticated {
		statusBar = m.renderStatusBar()
	}

	return styles.AppStyle.Render(content + "\n\n" + statusBar)
}

// renderStatusBar renders the bottom status bar
func (m Model) renderStatusBar() string {
	viewName := ""
	switch m.currentView {
	case ViewBrowse:
		viewName = "Browse"
	case ViewSearch:
		viewName = "Search"
	case ViewDetail:
		viewName = "Detail"
	case ViewLibrary:
		viewName = "Library"
	}

	left := styles.StatusBarActiveStyle.Render("● " + viewName)
	right := styles.StatusBarStyle.Render("User: " + m.currentUser + " | 1-3 views | q quit")

	spacing := m.width - len(left) - len(right) - 4
	if spacing < 0 {
		spacing = 0
	}
	spaces := strings.Repeat(" ", spacing)

	return left + spaces + right
}
