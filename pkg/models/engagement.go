package models

import "time"

// StatusTag is the user-visible engagement tag stored on a status row.
type StatusTag string

const (
	TagLikes      StatusTag = "Likes"
	TagDislikes   StatusTag = "Dislikes"
	TagFavourites StatusTag = "Favourites"

	TagCompleted   StatusTag = "Completed"
	TagWatching    StatusTag = "Watching"
	TagOnHold      StatusTag = "On Hold"
	TagDropped     StatusTag = "Dropped"
	TagPlanToWatch StatusTag = "Plan to Watch"

	// TagSelect is the pseudo-state that clears the watch slot and the
	// episode-progress row. It is never stored.
	TagSelect StatusTag = "Select"
)

// WatchTags lists the five mutually exclusive watch states.
var WatchTags = []StatusTag{TagCompleted, TagWatching, TagOnHold, TagDropped, TagPlanToWatch}

// SlotKind partitions status rows into the three single-slot categories.
// Storage enforces UNIQUE(user_id, anime_id, kind), which is what makes
// "at most one reaction / favourite / watch state per (user, anime)" hold
// under concurrent writers.
type SlotKind string

const (
	KindReaction  SlotKind = "reaction"
	KindFavourite SlotKind = "favourite"
	KindWatch     SlotKind = "watch"
)

// KindForTag maps a status tag to its slot kind. Returns "" for TagSelect
// and unknown tags.
func KindForTag(tag StatusTag) SlotKind {
	switch tag {
	case TagLikes, TagDislikes:
		return KindReaction
	case TagFavourites:
		return KindFavourite
	case TagCompleted, TagWatching, TagOnHold, TagDropped, TagPlanToWatch:
		return KindWatch
	}
	return ""
}

// IsWatchTag reports whether tag is one of the five watch states.
func IsWatchTag(tag StatusTag) bool {
	return KindForTag(tag) == KindWatch
}

// IsReactionTag reports whether tag is Likes or Dislikes.
func IsReactionTag(tag StatusTag) bool {
	return KindForTag(tag) == KindReaction
}

// Status is a single engagement fact linking one user, one anime and one tag.
type Status struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	AnimeID   int64     `json:"anime_id" db:"anime_id"`
	Kind      SlotKind  `json:"kind" db:"kind"`
	Status    StatusTag `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EpisodeProgress is the per-user, per-anime count of episodes watched,
// bounded by Anime.Episodes.
type EpisodeProgress struct {
	ID       int64 `json:"id" db:"id"`
	UserID   int64 `json:"user_id" db:"user_id"`
	AnimeID  int64 `json:"anime_id" db:"anime_id"`
	Episodes int   `json:"episodes" db:"episodes"`
}

// ReactionCounts holds the like/dislike tally for one anime.
type ReactionCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// ToggleEffect describes the net effect of a toggle-style mutation.
type ToggleEffect string

const (
	EffectAdded    ToggleEffect = "added"
	EffectRemoved  ToggleEffect = "removed"
	EffectSwitched ToggleEffect = "switched" // reaction replaced its opposite
	EffectCleared  ToggleEffect = "cleared"  // watch slot + progress removed
	EffectNone     ToggleEffect = "none"     // lost a toggle race, nothing changed
)

// EngagementResult is returned by engagement mutations so callers can update
// aggregate counts and reconcile optimistic client state.
type EngagementResult struct {
	Effect   ToggleEffect     `json:"effect"`
	Status   *Status          `json:"status,omitempty"`   // present when a row was written
	Progress *EpisodeProgress `json:"progress,omitempty"` // present when progress changed
	Counts   *ReactionCounts  `json:"counts,omitempty"`   // present for reaction mutations
}

// StatusSummary aggregates one user's engagement rows.
type StatusSummary struct {
	Counts map[StatusTag]int `json:"counts"`
	// TotalEntries sums the five watch-state categories only.
	TotalEntries int `json:"total_entries"`
	// Episodes is the summed watched-episode total across all progress rows.
	Episodes int `json:"episodes"`
}

// ReactionRequest is the body of POST /animes/:id/reaction.
type ReactionRequest struct {
	Reaction StatusTag `json:"reaction" validate:"required,oneof=Likes Dislikes"`
}

// WatchStateRequest is the body of PUT /animes/:id/watch-state.
type WatchStateRequest struct {
	State StatusTag `json:"state" validate:"required"`
}

// ProgressRequest is the body of PUT /animes/:id/progress.
type ProgressRequest struct {
	Episodes int `json:"episodes" validate:"min=0"`
}
