package client

import (
	"context"
	"sync"
	"time"

	"animehub/internal/core"
	"animehub/pkg/models"
)

// Mutator is the slice of the API client the store needs. *Client satisfies it.
type Mutator interface {
	SetReaction(ctx context.Context, animeID int64, tag models.StatusTag) (*models.EngagementResult, error)
	SetFavourite(ctx context.Context, animeID int64) (*models.EngagementResult, error)
	SetWatchState(ctx context.Context, animeID int64, tag models.StatusTag) (*models.EngagementResult, error)
	SetProgress(ctx context.Context, animeID int64, episodes int) (*models.EngagementResult, error)
}

// Store keeps the user's engagement state for the animes the UI is showing
// and reconciles optimistic edits against server responses.
//
// Every mutation applies locally first so the UI updates without waiting on
// the network, then calls the server. On success the server's row (with its
// real id) replaces the optimistic one. On failure the pre-mutation snapshot
// is restored and the error handler is invoked; reaction tallies are left
// alone because the server tally frames correct them anyway.
type Store struct {
	mu      sync.Mutex
	api     Mutator
	userID  int64
	states  map[int64]*core.AnimeState
	counts  map[int64]models.ReactionCounts
	tempID  int64
	onError func(animeID int64, err error)
}

// NewStore creates a new reconciliation store. onError may be nil.
func NewStore(api Mutator, userID int64, onError func(animeID int64, err error)) *Store {
	return &Store{
		api:     api,
		userID:  userID,
		states:  make(map[int64]*core.AnimeState),
		counts:  make(map[int64]models.ReactionCounts),
		onError: onError,
	}
}

// Seed installs server-fetched state for an anime, replacing anything local.
func (s *Store) Seed(animeID int64, state *core.AnimeState, counts *models.ReactionCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		state = &core.AnimeState{}
	}
	s.states[animeID] = cloneState(state)
	if counts != nil {
		s.counts[animeID] = *counts
	}
}

// State returns a copy of the current (possibly optimistic) state.
func (s *Store) State(animeID int64) core.AnimeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *cloneState(s.stateLocked(animeID))
}

// Counts returns the current reaction tally for an anime.
func (s *Store) Counts(animeID int64) models.ReactionCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[animeID]
}

// SetCounts installs a server-pushed tally, e.g. from a websocket frame.
func (s *Store) SetCounts(animeID int64, counts models.ReactionCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[animeID] = counts
}

// React toggles a like or dislike. The local slot and tally update
// immediately; the server response then becomes authoritative.
func (s *Store) React(ctx context.Context, animeID int64, tag models.StatusTag) error {
	s.mu.Lock()
	state := s.stateLocked(animeID)
	snapshot := cloneState(state)

	counts := s.counts[animeID]
	switch {
	case state.Reaction != nil && state.Reaction.Status == tag:
		adjustCount(&counts, tag, -1)
		state.Reaction = nil
	case state.Reaction != nil:
		adjustCount(&counts, state.Reaction.Status, -1)
		adjustCount(&counts, tag, +1)
		state.Reaction = s.tempStatusLocked(animeID, tag)
	default:
		adjustCount(&counts, tag, +1)
		state.Reaction = s.tempStatusLocked(animeID, tag)
	}
	s.counts[animeID] = counts
	s.mu.Unlock()

	result, err := s.api.SetReaction(ctx, animeID, tag)
	if err != nil {
		s.rollback(animeID, snapshot, err)
		return err
	}

	s.mu.Lock()
	cur := s.stateLocked(animeID)
	cur.Reaction = result.Status
	if result.Counts != nil {
		s.counts[animeID] = *result.Counts
	}
	s.mu.Unlock()
	return nil
}

// Favourite toggles the favourite mark.
func (s *Store) Favourite(ctx context.Context, animeID int64) error {
	s.mu.Lock()
	state := s.stateLocked(animeID)
	snapshot := cloneState(state)

	if state.Favourite != nil {
		state.Favourite = nil
	} else {
		state.Favourite = s.tempStatusLocked(animeID, models.TagFavourites)
	}
	s.mu.Unlock()

	result, err := s.api.SetFavourite(ctx, animeID)
	if err != nil {
		s.rollback(animeID, snapshot, err)
		return err
	}

	s.mu.Lock()
	s.stateLocked(animeID).Favourite = result.Status
	s.mu.Unlock()
	return nil
}

// WatchState replaces the watch state. "Select" clears it.
func (s *Store) WatchState(ctx context.Context, animeID int64, tag models.StatusTag) error {
	s.mu.Lock()
	state := s.stateLocked(animeID)
	snapshot := cloneState(state)

	if tag == models.TagSelect {
		state.Watch = nil
		state.Progress = nil
	} else {
		state.Watch = s.tempStatusLocked(animeID, tag)
	}
	s.mu.Unlock()

	result, err := s.api.SetWatchState(ctx, animeID, tag)
	if err != nil {
		s.rollback(animeID, snapshot, err)
		return err
	}

	s.mu.Lock()
	cur := s.stateLocked(animeID)
	cur.Watch = result.Status
	if result.Effect == models.EffectCleared {
		cur.Progress = nil
	} else if result.Progress != nil {
		cur.Progress = result.Progress
	}
	s.mu.Unlock()
	return nil
}

// Progress records watched episodes. The derived watch state comes back from
// the server, so locally only the episode count moves.
func (s *Store) Progress(ctx context.Context, animeID int64, episodes int) error {
	s.mu.Lock()
	state := s.stateLocked(animeID)
	snapshot := cloneState(state)

	if state.Progress != nil {
		state.Progress.Episodes = episodes
	} else {
		s.tempID--
		state.Progress = &models.EpisodeProgress{
			ID:       s.tempID,
			UserID:   s.userID,
			AnimeID:  animeID,
			Episodes: episodes,
		}
	}
	s.mu.Unlock()

	result, err := s.api.SetProgress(ctx, animeID, episodes)
	if err != nil {
		s.rollback(animeID, snapshot, err)
		return err
	}

	s.mu.Lock()
	cur := s.stateLocked(animeID)
	cur.Progress = result.Progress
	if result.Status != nil {
		cur.Watch = result.Status
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) stateLocked(animeID int64) *core.AnimeState {
	state, ok := s.states[animeID]
	if !ok {
		state = &core.AnimeState{}
		s.states[animeID] = state
	}
	return state
}

// tempStatusLocked builds an optimistic row. Ids are negative so they can
// never collide with sequence-issued server ids.
func (s *Store) tempStatusLocked(animeID int64, tag models.StatusTag) *models.Status {
	s.tempID--
	return &models.Status{
		ID:        s.tempID,
		UserID:    s.userID,
		AnimeID:   animeID,
		Kind:      models.KindForTag(tag),
		Status:    tag,
		CreatedAt: time.Now(),
	}
}

func (s *Store) rollback(animeID int64, snapshot *core.AnimeState, err error) {
	s.mu.Lock()
	s.states[animeID] = snapshot
	s.mu.Unlock()
	if s.onError != nil {
		s.onError(animeID, err)
	}
}

func adjustCount(counts *models.ReactionCounts, tag models.StatusTag, delta int64) {
	switch tag {
	case models.TagLikes:
		counts.Likes += delta
		if counts.Likes < 0 {
			counts.Likes = 0
		}
	case models.TagDislikes:
		counts.Dislikes += delta
		if counts.Dislikes < 0 {
			counts.Dislikes = 0
		}
	}
}

func cloneState(state *core.AnimeState) *core.AnimeState {
	out := &core.AnimeState{}
	if state.Reaction != nil {
		v := *state.Reaction
		out.Reaction = &v
	}
	if state.Favourite != nil {
		v := *state.Favourite
		out.Favourite = &v
	}
	if state.Watch != nil {
		v := *state.Watch
		out.Watch = &v
	}
	if state.Progress != nil {
		v := *state.Progress
		out.Progress = &v
	}
	return out
}
