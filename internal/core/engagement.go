// Package core - Engagement Business Logic
//
// All engagement state lives in single-occupancy slots keyed by
// (user, anime, kind): one reaction, one favourite mark, one watch state.
// Writes are toggles or replacements expressed as atomic upserts and
// conditional deletes, so concurrent requests from the same user converge
// on one row per slot instead of racing a delete against an insert.
package core

import (
	"context"
	"errors"
	"fmt"

	"animehub/internal/repository"
	"animehub/pkg/models"
)

// ReactionCache caches per-anime reaction tallies. A miss falls through to
// a storage rescan, so the cache is read-through and safe to lose.
type ReactionCache interface {
	Get(ctx context.Context, animeID int64) (models.ReactionCounts, bool)
	Set(ctx context.Context, animeID int64, counts models.ReactionCounts)
	Invalidate(ctx context.Context, animeID int64)
}

// ReactionNotifier receives fresh reaction tallies after each mutation.
// The websocket hub implements it; a nil notifier disables pushes.
type ReactionNotifier interface {
	NotifyReactionCounts(animeID int64, counts models.ReactionCounts)
}

// AnimeState bundles everything one user has recorded against one anime
type AnimeState struct {
	Reaction  *models.Status          `json:"reaction,omitempty"`
	Favourite *models.Status          `json:"favourite,omitempty"`
	Watch     *models.Status          `json:"watch,omitempty"`
	Progress  *models.EpisodeProgress `json:"progress,omitempty"`
}

// EngagementService defines the engagement operations
type EngagementService interface {
	// SetReaction toggles a like or dislike. Reacting with the current tag
	// removes it; reacting with the opposite tag switches in one write.
	SetReaction(ctx context.Context, userID, animeID int64, tag models.StatusTag) (*models.EngagementResult, error)
	// SetFavourite toggles the favourite mark.
	SetFavourite(ctx context.Context, userID, animeID int64) (*models.EngagementResult, error)
	// SetWatchState replaces the watch state. TagSelect clears the slot and
	// the episode progress; TagCompleted forces progress to the full episode
	// count.
	SetWatchState(ctx context.Context, userID, animeID int64, tag models.StatusTag) (*models.EngagementResult, error)
	// SetEpisodeProgress records watched episodes, bounded by the anime's
	// episode count, and derives the watch state: Completed when the bar is
	// full, Watching otherwise.
	SetEpisodeProgress(ctx context.Context, userID, animeID int64, episodes int) (*models.EngagementResult, error)

	CountReactions(ctx context.Context, animeID int64) (models.ReactionCounts, error)
	GetState(ctx context.Context, userID, animeID int64) (*AnimeState, error)
	Summary(ctx context.Context, userID int64) (*models.StatusSummary, error)
	ListByUserAndTag(ctx context.Context, userID int64, tag models.StatusTag) ([]models.Status, error)
}

type engagementService struct {
	engRepo   repository.EngagementRepository
	animeRepo repository.AnimeRepository
	seqRepo   repository.SequenceRepository
	cache     ReactionCache
	notifier  ReactionNotifier
}

// NewEngagementService creates a new engagement service. cache and notifier
// may be nil.
func NewEngagementService(
	engRepo repository.EngagementRepository,
	animeRepo repository.AnimeRepository,
	seqRepo repository.SequenceRepository,
	cache ReactionCache,
	notifier ReactionNotifier,
) EngagementService {
	return &engagementService{
		engRepo:   engRepo,
		animeRepo: animeRepo,
		seqRepo:   seqRepo,
		cache:     cache,
		notifier:  notifier,
	}
}

// SetReaction toggles or switches a like/dislike for (user, anime)
func (s *engagementService) SetReaction(ctx context.Context, userID, animeID int64, tag models.StatusTag) (*models.EngagementResult, error) {
	if !models.IsReactionTag(tag) {
		return nil, fmt.Errorf("invalid reaction %q: %w", tag, models.ErrInvalidInput)
	}
	if _, err := s.animeRepo.GetByID(ctx, animeID); err != nil {
		return nil, err
	}

	result := &models.EngagementResult{}

	current, err := s.engRepo.GetSlot(ctx, userID, animeID, models.KindReaction)
	switch {
	case err == nil && current.Status == tag:
		// Same tag again: un-react. The delete is conditional on the tag so
		// a concurrent switch is not clobbered.
		removed, err := s.engRepo.DeleteSlotIf(ctx, userID, animeID, models.KindReaction, tag)
		if err != nil {
			return nil, err
		}
		if removed {
			result.Effect = models.EffectRemoved
		} else {
			result.Effect = models.EffectNone
		}
	case err == nil:
		// Opposite tag: switch in a single upsert.
		status, err := s.newStatus(ctx, userID, animeID, models.KindReaction, tag)
		if err != nil {
			return nil, err
		}
		if err := s.engRepo.UpsertSlot(ctx, status); err != nil {
			return nil, err
		}
		result.Effect = models.EffectSwitched
		result.Status = status
	case errors.Is(err, models.ErrStatusNotFound):
		status, err := s.newStatus(ctx, userID, animeID, models.KindReaction, tag)
		if err != nil {
			return nil, err
		}
		if err := s.engRepo.UpsertSlot(ctx, status); err != nil {
			return nil, err
		}
		result.Effect = models.EffectAdded
		result.Status = status
	default:
		return nil, err
	}

	counts, err := s.refreshCounts(ctx, animeID)
	if err != nil {
		return nil, err
	}
	result.Counts = &counts
	return result, nil
}

// SetFavourite toggles the favourite mark for (user, anime)
func (s *engagementService) SetFavourite(ctx context.Context, userID, animeID int64) (*models.EngagementResult, error) {
	if _, err := s.animeRepo.GetByID(ctx, animeID); err != nil {
		return nil, err
	}

	removed, err := s.engRepo.DeleteSlotIf(ctx, userID, animeID, models.KindFavourite, models.TagFavourites)
	if err != nil {
		return nil, err
	}
	if removed {
		return &models.EngagementResult{Effect: models.EffectRemoved}, nil
	}

	status, err := s.newStatus(ctx, userID, animeID, models.KindFavourite, models.TagFavourites)
	if err != nil {
		return nil, err
	}
	if err := s.engRepo.UpsertSlot(ctx, status); err != nil {
		return nil, err
	}
	return &models.EngagementResult{Effect: models.EffectAdded, Status: status}, nil
}

// SetWatchState replaces the watch slot with tag, with the Select and
// Completed cascades
func (s *engagementService) SetWatchState(ctx context.Context, userID, animeID int64, tag models.StatusTag) (*models.EngagementResult, error) {
	anime, err := s.animeRepo.GetByID(ctx, animeID)
	if err != nil {
		return nil, err
	}

	if tag == models.TagSelect {
		if err := s.engRepo.ClearWatchState(ctx, userID, animeID); err != nil {
			return nil, err
		}
		return &models.EngagementResult{Effect: models.EffectCleared}, nil
	}

	if !models.IsWatchTag(tag) {
		return nil, fmt.Errorf("invalid watch state %q: %w", tag, models.ErrInvalidInput)
	}

	watch, err := s.newStatus(ctx, userID, animeID, models.KindWatch, tag)
	if err != nil {
		return nil, err
	}

	var progress *models.EpisodeProgress
	if tag == models.TagCompleted {
		// Completing an anime means every episode is watched.
		progress, err = s.newProgress(ctx, userID, animeID, anime.Episodes)
		if err != nil {
			return nil, err
		}
	}

	if err := s.engRepo.ApplyWatchState(ctx, watch, progress); err != nil {
		return nil, err
	}

	return &models.EngagementResult{
		Effect:   models.EffectAdded,
		Status:   watch,
		Progress: progress,
	}, nil
}

// SetEpisodeProgress records a progress value and derives the watch state
func (s *engagementService) SetEpisodeProgress(ctx context.Context, userID, animeID int64, episodes int) (*models.EngagementResult, error) {
	anime, err := s.animeRepo.GetByID(ctx, animeID)
	if err != nil {
		return nil, err
	}
	if episodes < 0 || episodes > anime.Episodes {
		return nil, fmt.Errorf("episodes must be between 0 and %d: %w", anime.Episodes, models.ErrInvalidRange)
	}

	tag := models.TagWatching
	if anime.Episodes > 0 && episodes == anime.Episodes {
		tag = models.TagCompleted
	}

	watch, err := s.newStatus(ctx, userID, animeID, models.KindWatch, tag)
	if err != nil {
		return nil, err
	}
	progress, err := s.newProgress(ctx, userID, animeID, episodes)
	if err != nil {
		return nil, err
	}

	if err := s.engRepo.ApplyWatchState(ctx, watch, progress); err != nil {
		return nil, err
	}

	return &models.EngagementResult{
		Effect:   models.EffectAdded,
		Status:   watch,
		Progress: progress,
	}, nil
}

// CountReactions returns the current like/dislike tallies for an anime
func (s *engagementService) CountReactions(ctx context.Context, animeID int64) (models.ReactionCounts, error) {
	if s.cache != nil {
		if counts, ok := s.cache.Get(ctx, animeID); ok {
			return counts, nil
		}
	}
	counts, err := s.engRepo.CountReactions(ctx, animeID)
	if err != nil {
		return counts, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, animeID, counts)
	}
	return counts, nil
}

// GetState returns everything one user has recorded against one anime
func (s *engagementService) GetState(ctx context.Context, userID, animeID int64) (*AnimeState, error) {
	state := &AnimeState{}

	for _, kind := range []models.SlotKind{models.KindReaction, models.KindFavourite, models.KindWatch} {
		slot, err := s.engRepo.GetSlot(ctx, userID, animeID, kind)
		if err != nil {
			if errors.Is(err, models.ErrStatusNotFound) {
				continue
			}
			return nil, err
		}
		switch kind {
		case models.KindReaction:
			state.Reaction = slot
		case models.KindFavourite:
			state.Favourite = slot
		case models.KindWatch:
			state.Watch = slot
		}
	}

	progress, err := s.engRepo.GetProgress(ctx, userID, animeID)
	if err != nil && !errors.Is(err, models.ErrStatusNotFound) {
		return nil, err
	}
	state.Progress = progress
	return state, nil
}

// Summary returns a user's per-tag counts and total watched episodes
func (s *engagementService) Summary(ctx context.Context, userID int64) (*models.StatusSummary, error) {
	counts, err := s.engRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	episodes, err := s.engRepo.SumEpisodes(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, tag := range models.WatchTags {
		total += counts[tag]
	}

	return &models.StatusSummary{
		Counts:       counts,
		TotalEntries: total,
		Episodes:     episodes,
	}, nil
}

// ListByUserAndTag returns a user's status rows holding tag, oldest first
func (s *engagementService) ListByUserAndTag(ctx context.Context, userID int64, tag models.StatusTag) ([]models.Status, error) {
	if !models.IsReactionTag(tag) && !models.IsWatchTag(tag) && tag != models.TagFavourites {
		return nil, fmt.Errorf("invalid status %q: %w", tag, models.ErrInvalidInput)
	}
	return s.engRepo.ListByUserAndTag(ctx, userID, tag)
}

func (s *engagementService) newStatus(ctx context.Context, userID, animeID int64, kind models.SlotKind, tag models.StatusTag) (*models.Status, error) {
	id, err := s.seqRepo.NextID(ctx, repository.SeqStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate status id: %w", err)
	}
	return &models.Status{
		ID:      id,
		UserID:  userID,
		AnimeID: animeID,
		Kind:    kind,
		Status:  tag,
	}, nil
}

func (s *engagementService) newProgress(ctx context.Context, userID, animeID int64, episodes int) (*models.EpisodeProgress, error) {
	id, err := s.seqRepo.NextID(ctx, repository.SeqEpisodeProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate progress id: %w", err)
	}
	return &models.EpisodeProgress{
		ID:       id,
		UserID:   userID,
		AnimeID:  animeID,
		Episodes: episodes,
	}, nil
}

// refreshCounts re-tallies from storage after a reaction write, updates the
// cache and pushes to live subscribers
func (s *engagementService) refreshCounts(ctx context.Context, animeID int64) (models.ReactionCounts, error) {
	counts, err := s.engRepo.CountReactions(ctx, animeID)
	if err != nil {
		return counts, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, animeID, counts)
	}
	if s.notifier != nil {
		s.notifier.NotifyReactionCounts(animeID, counts)
	}
	return counts, nil
}
