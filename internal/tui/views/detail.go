package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"animehub/internal/client"
	"animehub/internal/core"
	"animehub/internal/tui/styles"
	"animehub/pkg/models"
)

// DetailModel displays one anime with its episodes and the user's engagement
// panel. Mutations go through the reconciliation store, so the panel shows
// the optimistic state and snaps back if the server rejects a change. Live
// like/dislike tallies stream in over the reactions websocket.
type DetailModel struct {
	apiClient *client.Client
	store     *client.Store
	wsBaseURL string

	// Current anime
	animeID  int64
	anime    *models.Anime
	episodes []models.Episode

	// State
	loading   bool
	saving    bool
	err       error
	watchMode bool
	watchCur  int

	// Live counts connection. connGen increments on every (re)connect so
	// reads belonging to an abandoned connection are ignored.
	conn      *websocket.Conn
	connGen   int64
	connected bool

	// Window size
	width  int
	height int
}

// watchChoices is the picker order; the last entry clears the slot.
var watchChoices = []models.StatusTag{
	models.TagWatching,
	models.TagCompleted,
	models.TagOnHold,
	models.TagDropped,
	models.TagPlanToWatch,
	models.TagSelect,
}

// NewDetailModel creates a new detail model
func NewDetailModel(apiClient *client.Client, wsBaseURL string) DetailModel {
	return DetailModel{
		apiClient: apiClient,
		wsBaseURL: wsBaseURL,
	}
}

// SetStore installs the per-user reconciliation store after login.
func (m *DetailModel) SetStore(store *client.Store) {
	m.store = store
}

// SetAnime sets the anime to display and starts loading
func (m *DetailModel) SetAnime(animeID int64) tea.Cmd {
	m.animeID = animeID
	m.anime = nil
	m.episodes = nil
	m.err = nil
	m.loading = true
	m.closeConn()

	m.connGen++
	return tea.Batch(m.loadAnime(), m.loadState(), m.connect(m.connGen))
}

// Close shuts the live counts connection down.
func (m *DetailModel) Close() {
	m.closeConn()
}

func (m *DetailModel) closeConn() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.connected = false
}

// Init initializes the model
func (m DetailModel) Init() tea.Cmd {
	if m.animeID != 0 {
		return tea.Batch(m.loadAnime(), m.loadState())
	}
	return nil
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.watchMode {
			return m.updateWatchPicker(msg)
		}

		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("l"))):
			return m.mutate(func(ctx context.Context) error {
				return m.store.React(ctx, m.animeID, models.TagLikes)
			})

		case key.Matches(msg, key.NewBinding(key.WithKeys("d"))):
			return m.mutate(func(ctx context.Context) error {
				return m.store.React(ctx, m.animeID, models.TagDislikes)
			})

		case key.Matches(msg, key.NewBinding(key.WithKeys("f"))):
			return m.mutate(func(ctx context.Context) error {
				return m.store.Favourite(ctx, m.animeID)
			})

		case key.Matches(msg, key.NewBinding(key.WithKeys("w"))):
			m.watchMode = true
			m.watchCur = 0
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("+", "="))):
			return m.adjustProgress(1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("-"))):
			return m.adjustProgress(-1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.loadAnime(), m.loadState())
		}

	case AnimeDetailLoadedMsg:
		m.loading = false
		m.anime = msg.Anime
		m.episodes = msg.Episodes
		return m, nil

	case AnimeStateLoadedMsg:
		if m.store != nil && msg.AnimeID == m.animeID {
			m.store.Seed(msg.AnimeID, msg.State, msg.Counts)
		}
		return m, nil

	case EngagementDoneMsg:
		m.saving = false
		return m, nil

	case EngagementErrorMsg:
		m.saving = false
		m.err = msg.Err
		return m, nil

	case CountsConnectedMsg:
		if msg.Gen != m.connGen {
			msg.Conn.Close()
			return m, nil
		}
		m.conn = msg.Conn
		m.connected = true
		return m, m.listenForCounts(msg.Gen, msg.Conn)

	case CountsFrameMsg:
		if msg.Gen != m.connGen {
			return m, nil
		}
		if m.store != nil {
			m.store.SetCounts(msg.AnimeID, models.ReactionCounts{Likes: msg.Likes, Dislikes: msg.Dislikes})
		}
		return m, m.listenForCounts(msg.Gen, m.conn)

	case CountsDisconnectedMsg:
		if msg.Gen != m.connGen {
			return m, nil
		}
		m.connected = false
		m.conn = nil
		return m, nil

	case DetailErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// updateWatchPicker handles keys while the watch-state overlay is open
func (m DetailModel) updateWatchPicker(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	switch {
	case key.Matches(msg, key.NewBinding(key.WithKeys("esc", "w"))):
		m.watchMode = false
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
		if m.watchCur < len(watchChoices)-1 {
			m.watchCur++
		}
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
		if m.watchCur > 0 {
			m.watchCur--
		}
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
		tag := watchChoices[m.watchCur]
		m.watchMode = false
		return m.mutate(func(ctx context.Context) error {
			return m.store.WatchState(ctx, m.animeID, tag)
		})
	}
	return m, nil
}

// mutate runs one engagement mutation through the store
func (m DetailModel) mutate(fn func(ctx context.Context) error) (DetailModel, tea.Cmd) {
	if m.store == nil {
		m.err = fmt.Errorf("login required")
		return m, nil
	}
	m.saving = true
	m.err = nil
	return m, func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return EngagementErrorMsg{Err: err}
		}
		return EngagementDoneMsg{}
	}
}

// adjustProgress moves the watched-episode count by delta within bounds
func (m DetailModel) adjustProgress(delta int) (DetailModel, tea.Cmd) {
	if m.store == nil || m.anime == nil {
		return m, nil
	}
	current := 0
	if st := m.store.State(m.animeID); st.Progress != nil {
		current = st.Progress.Episodes
	}
	next := current + delta
	if next < 0 || next > m.anime.Episodes {
		return m, nil
	}
	return m.mutate(func(ctx context.Context) error {
		return m.store.Progress(ctx, m.animeID, next)
	})
}

// View renders the detail view
func (m DetailModel) View() string {
	var b strings.Builder

	if m.anime == nil {
		if m.loading {
			b.WriteString(styles.SpinnerStyle.Render("⟳ "))
			b.WriteString(styles.InfoStyle.Render("Loading..."))
		} else if m.err != nil {
			b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		} else {
			b.WriteString(styles.InfoStyle.Render("No anime selected"))
		}
		return b.String()
	}

	if m.watchMode {
		return m.renderWatchPicker()
	}

	b.WriteString(styles.TitleStyle.Render("📺 " + m.anime.Title))
	b.WriteString("\n\n")

	// Info block
	if m.anime.Description != "" {
		b.WriteString(styles.CardContentStyle.Render(styles.Truncate(m.anime.Description, 200)))
		b.WriteString("\n\n")
	}
	if len(m.anime.Genres) > 0 {
		b.WriteString(styles.RenderKeyValue("Genres", strings.Join(m.anime.Genres, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(styles.RenderKeyValue("Episodes", fmt.Sprintf("%d", m.anime.Episodes)))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Added", m.anime.CreatedAt.Format("Jan 2, 2006")))
	b.WriteString("\n\n")

	b.WriteString(m.renderEngagement())

	// Episode list
	if len(m.episodes) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.RenderDivider(50))
		b.WriteString("\n")
		b.WriteString(styles.CardTitleStyle.Render("Episodes"))
		b.WriteString("\n")
		for _, ep := range m.episodes {
			b.WriteString(styles.ListItemStyle.Render(fmt.Sprintf("%s. %s", ep.EpisodeNumber, styles.Truncate(ep.Title, 50))))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("l like • d dislike • f favourite • w watch state • +/- progress • r refresh"))

	return b.String()
}

// renderEngagement renders the reaction tallies and the user's slots
func (m DetailModel) renderEngagement() string {
	var b strings.Builder

	var state core.AnimeState
	var counts models.ReactionCounts
	if m.store != nil {
		state = m.store.State(m.animeID)
		counts = m.store.Counts(m.animeID)
	}

	// Tally line with live indicator
	live := ""
	if m.connected {
		live = "  " + styles.SuccessStyle.Render("● live")
	}
	b.WriteString(fmt.Sprintf("👍 %d   👎 %d%s", counts.Likes, counts.Dislikes, live))
	if m.saving {
		b.WriteString("  " + styles.SpinnerStyle.Render("⟳ saving"))
	}
	b.WriteString("\n\n")

	// Reaction and favourite badges
	reaction := "none"
	if state.Reaction != nil {
		reaction = string(state.Reaction.Status)
	}
	favourite := "no"
	if state.Favourite != nil {
		favourite = "yes ⭐"
	}
	b.WriteString(styles.RenderKeyValue("Reaction", reaction))
	b.WriteString("   ")
	b.WriteString(styles.RenderKeyValue("Favourite", favourite))
	b.WriteString("\n")

	// Watch state and progress
	watch := "not tracked"
	if state.Watch != nil {
		watch = string(state.Watch.Status)
	}
	b.WriteString(styles.RenderKeyValue("Watch state", watch))
	b.WriteString("\n")

	watched := 0
	if state.Progress != nil {
		watched = state.Progress.Episodes
	}
	if m.anime.Episodes > 0 {
		bar := styles.RenderProgressBar(watched, m.anime.Episodes, 20)
		b.WriteString(fmt.Sprintf("%s %s %d/%d\n",
			styles.MetaKeyStyle.Render("Progress:"), bar, watched, m.anime.Episodes))
	}

	return b.String()
}

// renderWatchPicker renders the watch-state overlay
func (m DetailModel) renderWatchPicker() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("📌 Watch State"))
	b.WriteString("\n\n")

	for i, tag := range watchChoices {
		label := string(tag)
		if tag == models.TagSelect {
			label = "Clear (remove from lists)"
		}
		prefix := "  "
		style := styles.ListItemStyle
		if i == m.watchCur {
			prefix = "▸ "
			style = styles.ListItemSelectedStyle
		}
		b.WriteString(style.Render(prefix + label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ navigate • Enter select • ESC cancel"))
	return b.String()
}

// loadAnime loads the anime and its episodes
func (m DetailModel) loadAnime() tea.Cmd {
	animeID := m.animeID
	return func() tea.Msg {
		ctx := context.Background()
		anime, err := m.apiClient.GetAnime(ctx, animeID)
		if err != nil {
			return DetailErrorMsg{Err: err}
		}
		episodes, err := m.apiClient.ListEpisodes(ctx, animeID)
		if err != nil {
			episodes = nil
		}
		return AnimeDetailLoadedMsg{Anime: anime, Episodes: episodes}
	}
}

// loadState loads the user's engagement state and the public tallies
func (m DetailModel) loadState() tea.Cmd {
	animeID := m.animeID
	authed := m.store != nil
	return func() tea.Msg {
		ctx := context.Background()

		counts, err := m.apiClient.GetReactions(ctx, animeID)
		if err != nil {
			counts = &models.ReactionCounts{}
		}

		var state *core.AnimeState
		if authed {
			if s, err := m.apiClient.GetAnimeState(ctx, animeID); err == nil {
				state = s
			}
		}

		return AnimeStateLoadedMsg{AnimeID: animeID, State: state, Counts: counts}
	}
}

// connect dials the reaction counts feed for this anime
func (m DetailModel) connect(gen int64) tea.Cmd {
	animeID := m.animeID
	wsBase := m.wsBaseURL
	return func() tea.Msg {
		url := fmt.Sprintf("%s/%d", strings.TrimRight(wsBase, "/"), animeID)

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		headers := map[string][]string{
			"Origin":     {"http://localhost"},
			"User-Agent": {"animehub-tui/1.0"},
		}

		conn, _, err := dialer.Dial(url, headers)
		if err != nil {
			// The detail view works without live tallies.
			return CountsDisconnectedMsg{Gen: gen}
		}
		return CountsConnectedMsg{Gen: gen, Conn: conn}
	}
}

// listenForCounts reads the next tally frame
func (m DetailModel) listenForCounts(gen int64, conn *websocket.Conn) tea.Cmd {
	return func() tea.Msg {
		if conn == nil {
			return CountsDisconnectedMsg{Gen: gen}
		}

		var frame struct {
			Type     string `json:"type"`
			AnimeID  int64  `json:"anime_id"`
			Likes    int64  `json:"likes"`
			Dislikes int64  `json:"dislikes"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			return CountsDisconnectedMsg{Gen: gen}
		}
		return CountsFrameMsg{
			Gen:      gen,
			AnimeID:  frame.AnimeID,
			Likes:    frame.Likes,
			Dislikes: frame.Dislikes,
		}
	}
}

// Messages

// AnimeDetailLoadedMsg is sent when anime details are loaded
type AnimeDetailLoadedMsg struct {
	Anime    *models.Anime
	Episodes []models.Episode
}

// AnimeStateLoadedMsg carries the user's server-side engagement state
type AnimeStateLoadedMsg struct {
	AnimeID int64
	State   *core.AnimeState
	Counts  *models.ReactionCounts
}

// EngagementDoneMsg is sent when a mutation reconciles cleanly
type EngagementDoneMsg struct{}

// EngagementErrorMsg is sent when a mutation fails and was rolled back
type EngagementErrorMsg struct {
	Err error
}

// CountsConnectedMsg is sent when the live tally feed connects
type CountsConnectedMsg struct {
	Gen  int64
	Conn *websocket.Conn
}

// CountsFrameMsg is one live tally update
type CountsFrameMsg struct {
	Gen      int64
	AnimeID  int64
	Likes    int64
	Dislikes int64
}

// CountsDisconnectedMsg is sent when the feed drops
type CountsDisconnectedMsg struct {
	Gen int64
}

// DetailErrorMsg is sent on detail errors
type DetailErrorMsg struct {
	Err error
}
