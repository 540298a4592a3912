package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/pkg/models"
)

// fakeSequence hands out ids from an in-memory counter per sequence name
type fakeSequence struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newFakeSequence() *fakeSequence {
	return &fakeSequence{seqs: make(map[string]int64)}
}

func (f *fakeSequence) NextID(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqs[name]++
	return f.seqs[name], nil
}

// fakeAnimeRepo serves a fixed set of animes
type fakeAnimeRepo struct {
	animes map[int64]*models.Anime
}

func (f *fakeAnimeRepo) Create(_ context.Context, a *models.Anime) error {
	f.animes[a.ID] = a
	return nil
}

func (f *fakeAnimeRepo) GetByID(_ context.Context, id int64) (*models.Anime, error) {
	a, ok := f.animes[id]
	if !ok {
		return nil, models.ErrAnimeNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnimeRepo) List(_ context.Context) ([]models.Anime, error) { return nil, nil }
func (f *fakeAnimeRepo) SearchByTitle(_ context.Context, _ string) ([]models.Anime, error) {
	return nil, nil
}
func (f *fakeAnimeRepo) Update(_ context.Context, _ int64, _ *models.UpdateAnimeRequest) error {
	return nil
}
func (f *fakeAnimeRepo) Delete(_ context.Context, _ int64) error { return nil }

// fakeEngagementRepo keeps status rows keyed by (user, anime, kind), which
// mirrors the storage unique constraint
type slotKey struct {
	userID  int64
	animeID int64
	kind    models.SlotKind
}

type progressKey struct {
	userID  int64
	animeID int64
}

type fakeEngagementRepo struct {
	mu       sync.Mutex
	slots    map[slotKey]models.Status
	progress map[progressKey]models.EpisodeProgress
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{
		slots:    make(map[slotKey]models.Status),
		progress: make(map[progressKey]models.EpisodeProgress),
	}
}

func (f *fakeEngagementRepo) GetSlot(_ context.Context, userID, animeID int64, kind models.SlotKind) (*models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotKey{userID, animeID, kind}]
	if !ok {
		return nil, models.ErrStatusNotFound
	}
	return &s, nil
}

func (f *fakeEngagementRepo) UpsertSlot(_ context.Context, status *models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	status.CreatedAt = time.Now()
	f.slots[slotKey{status.UserID, status.AnimeID, status.Kind}] = *status
	return nil
}

func (f *fakeEngagementRepo) DeleteSlotIf(_ context.Context, userID, animeID int64, kind models.SlotKind, tag models.StatusTag) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slotKey{userID, animeID, kind}
	s, ok := f.slots[key]
	if !ok || s.Status != tag {
		return false, nil
	}
	delete(f.slots, key)
	return true, nil
}

func (f *fakeEngagementRepo) DeleteSlot(_ context.Context, userID, animeID int64, kind models.SlotKind) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slotKey{userID, animeID, kind}
	_, ok := f.slots[key]
	delete(f.slots, key)
	return ok, nil
}

func (f *fakeEngagementRepo) GetProgress(_ context.Context, userID, animeID int64) (*models.EpisodeProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[progressKey{userID, animeID}]
	if !ok {
		return nil, models.ErrStatusNotFound
	}
	return &p, nil
}

func (f *fakeEngagementRepo) UpsertProgress(_ context.Context, progress *models.EpisodeProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[progressKey{progress.UserID, progress.AnimeID}] = *progress
	return nil
}

func (f *fakeEngagementRepo) DeleteProgress(_ context.Context, userID, animeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{userID, animeID}
	_, ok := f.progress[key]
	delete(f.progress, key)
	return ok, nil
}

func (f *fakeEngagementRepo) ApplyWatchState(ctx context.Context, watch *models.Status, progress *models.EpisodeProgress) error {
	if err := f.UpsertSlot(ctx, watch); err != nil {
		return err
	}
	if progress != nil {
		return f.UpsertProgress(ctx, progress)
	}
	return nil
}

func (f *fakeEngagementRepo) ClearWatchState(ctx context.Context, userID, animeID int64) error {
	if _, err := f.DeleteSlot(ctx, userID, animeID, models.KindWatch); err != nil {
		return err
	}
	_, err := f.DeleteProgress(ctx, userID, animeID)
	return err
}

func (f *fakeEngagementRepo) CountReactions(_ context.Context, animeID int64) (models.ReactionCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts models.ReactionCounts
	for key, s := range f.slots {
		if key.animeID != animeID || key.kind != models.KindReaction {
			continue
		}
		switch s.Status {
		case models.TagLikes:
			counts.Likes++
		case models.TagDislikes:
			counts.Dislikes++
		}
	}
	return counts, nil
}

func (f *fakeEngagementRepo) CountByUser(_ context.Context, userID int64) (map[models.StatusTag]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.StatusTag]int)
	for key, s := range f.slots {
		if key.userID == userID {
			counts[s.Status]++
		}
	}
	return counts, nil
}

func (f *fakeEngagementRepo) SumEpisodes(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for key, p := range f.progress {
		if key.userID == userID {
			total += p.Episodes
		}
	}
	return total, nil
}

func (f *fakeEngagementRepo) ListByUserAndTag(_ context.Context, userID int64, tag models.StatusTag) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Status
	for key, s := range f.slots {
		if key.userID == userID && s.Status == tag {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeEngagementRepo) ListByUser(_ context.Context, userID int64) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Status
	for key, s := range f.slots {
		if key.userID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeEngagementRepo) ListByAnime(_ context.Context, animeID int64) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Status
	for key, s := range f.slots {
		if key.animeID == animeID {
			out = append(out, s)
		}
	}
	return out, nil
}

// recordingNotifier captures reaction-count pushes
type recordingNotifier struct {
	mu    sync.Mutex
	calls []models.ReactionCounts
}

func (n *recordingNotifier) NotifyReactionCounts(_ int64, counts models.ReactionCounts) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, counts)
}

func newEngagementFixture() (EngagementService, *fakeEngagementRepo, *recordingNotifier) {
	engRepo := newFakeEngagementRepo()
	animeRepo := &fakeAnimeRepo{animes: map[int64]*models.Anime{
		1: {ID: 1, Title: "Cowboy Bebop", Episodes: 26},
		2: {ID: 2, Title: "FLCL", Episodes: 6},
		3: {ID: 3, Title: "Airing Now", Episodes: 0},
	}}
	notifier := &recordingNotifier{}
	svc := NewEngagementService(engRepo, animeRepo, newFakeSequence(), nil, notifier)
	return svc, engRepo, notifier
}

func TestSetReactionToggle(t *testing.T) {
	svc, _, _ := newEngagementFixture()
	ctx := context.Background()

	// First like adds
	res, err := svc.SetReaction(ctx, 10, 1, models.TagLikes)
	require.NoError(t, err)
	assert.Equal(t, models.EffectAdded, res.Effect)
	require.NotNil(t, res.Counts)
	assert.Equal(t, int64(1), res.Counts.Likes)

	// Disliking switches without an intermediate empty state
	res, err = svc.SetReaction(ctx, 10, 1, models.TagDislikes)
	require.NoError(t, err)
	assert.Equal(t, models.EffectSwitched, res.Effect)
	assert.Equal(t, int64(0), res.Counts.Likes)
	assert.Equal(t, int64(1), res.Counts.Dislikes)

	// Disliking again removes
	res, err = svc.SetReaction(ctx, 10, 1, models.TagDislikes)
	require.NoError(t, err)
	assert.Equal(t, models.EffectRemoved, res.Effect)
	assert.Equal(t, int64(0), res.Counts.Dislikes)
}

func TestSetReactionSingleSlot(t *testing.T) {
	svc, engRepo, _ := newEngagementFixture()
	ctx := context.Background()

	_, err := svc.SetReaction(ctx, 10, 1, models.TagLikes)
	require.NoError(t, err)
	_, err = svc.SetReaction(ctx, 10, 1, models.TagDislikes)
	require.NoError(t, err)

	rows, err := engRepo.ListByUser(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "a user holds at most one reaction row per anime")
	assert.Equal(t, models.TagDislikes, rows[0].Status)
}

func TestSetReactionRejectsInvalidTag(t *testing.T) {
	svc, _, _ := newEngagementFixture()

	_, err := svc.SetReaction(context.Background(), 10, 1, models.TagWatching)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.SetReaction(context.Background(), 10, 999, models.TagLikes)
	assert.ErrorIs(t, err, models.ErrAnimeNotFound)
}

func TestSetReactionCountsAcrossUsers(t *testing.T) {
	svc, _, notifier := newEngagementFixture()
	ctx := context.Background()

	for userID := int64(1); userID <= 5; userID++ {
		_, err := svc.SetReaction(ctx, userID, 1, models.TagLikes)
		require.NoError(t, err)
	}
	_, err := svc.SetReaction(ctx, 6, 1, models.TagDislikes)
	require.NoError(t, err)

	counts, err := svc.CountReactions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts.Likes)
	assert.Equal(t, int64(1), counts.Dislikes)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Len(t, notifier.calls, 6, "every reaction mutation pushes fresh counts")
}

func TestSetFavouriteToggle(t *testing.T) {
	svc, engRepo, _ := newEngagementFixture()
	ctx := context.Background()

	res, err := svc.SetFavourite(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.EffectAdded, res.Effect)
	require.NotNil(t, res.Status)
	assert.Equal(t, models.TagFavourites, res.Status.Status)

	res, err = svc.SetFavourite(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.EffectRemoved, res.Effect)

	rows, err := engRepo.ListByUser(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetWatchStateCompletedForcesFullProgress(t *testing.T) {
	svc, engRepo, _ := newEngagementFixture()
	ctx := context.Background()

	res, err := svc.SetWatchState(ctx, 10, 1, models.TagCompleted)
	require.NoError(t, err)
	require.NotNil(t, res.Progress)
	assert.Equal(t, 26, res.Progress.Episodes)

	p, err := engRepo.GetProgress(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 26, p.Episodes)
}

func TestSetWatchStateReplacesPreviousState(t *testing.T) {
	svc, engRepo, _ := newEngagementFixture()
	ctx := context.Background()

	_, err := svc.SetWatchState(ctx, 10, 1, models.TagPlanToWatch)
	require.NoError(t, err)
	_, err = svc.SetWatchState(ctx, 10, 1, models.TagWatching)
	require.NoError(t, err)

	slot, err := engRepo.GetSlot(ctx, 10, 1, models.KindWatch)
	require.NoError(t, err)
	assert.Equal(t, models.TagWatching, slot.Status)

	rows, err := engRepo.ListByUser(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSetWatchStateSelectClearsSlotAndProgress(t *testing.T) {
	svc, engRepo, _ := newEngagementFixture()
	ctx := context.Background()

	_, err := svc.SetEpisodeProgress(ctx, 10, 1, 12)
	require.NoError(t, err)

	res, err := svc.SetWatchState(ctx, 10, 1, models.TagSelect)
	require.NoError(t, err)
	assert.Equal(t, models.EffectCleared, res.Effect)

	_, err = engRepo.GetSlot(ctx, 10, 1, models.KindWatch)
	assert.ErrorIs(t, err, models.ErrStatusNotFound)
	_, err = engRepo.GetProgress(ctx, 10, 1)
	assert.ErrorIs(t, err, models.ErrStatusNotFound)
}

func TestSetWatchStateRejectsInvalidTag(t *testing.T) {
	svc, _, _ := newEngagementFixture()

	_, err := svc.SetWatchState(context.Background(), 10, 1, models.TagLikes)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSetEpisodeProgressDerivesWatchState(t *testing.T) {
	svc, engRepo, _ := newEngagementFixture()
	ctx := context.Background()

	// Partial progress derives Watching
	res, err := svc.SetEpisodeProgress(ctx, 10, 1, 12)
	require.NoError(t, err)
	require.NotNil(t, res.Status)
	assert.Equal(t, models.TagWatching, res.Status.Status)

	// Full progress derives Completed
	res, err = svc.SetEpisodeProgress(ctx, 10, 1, 26)
	require.NoError(t, err)
	assert.Equal(t, models.TagCompleted, res.Status.Status)

	slot, err := engRepo.GetSlot(ctx, 10, 1, models.KindWatch)
	require.NoError(t, err)
	assert.Equal(t, models.TagCompleted, slot.Status)
}

func TestSetEpisodeProgressZeroEpisodeAnime(t *testing.T) {
	svc, _, _ := newEngagementFixture()

	// An anime with no episodes never derives Completed
	res, err := svc.SetEpisodeProgress(context.Background(), 10, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, models.TagWatching, res.Status.Status)
}

func TestSetEpisodeProgressBounds(t *testing.T) {
	svc, _, _ := newEngagementFixture()
	ctx := context.Background()

	_, err := svc.SetEpisodeProgress(ctx, 10, 2, 7)
	assert.ErrorIs(t, err, models.ErrInvalidRange)

	_, err = svc.SetEpisodeProgress(ctx, 10, 2, -1)
	assert.ErrorIs(t, err, models.ErrInvalidRange)

	_, err = svc.SetEpisodeProgress(ctx, 10, 2, 6)
	assert.NoError(t, err)
}

func TestGetState(t *testing.T) {
	svc, _, _ := newEngagementFixture()
	ctx := context.Background()

	_, err := svc.SetReaction(ctx, 10, 1, models.TagLikes)
	require.NoError(t, err)
	_, err = svc.SetFavourite(ctx, 10, 1)
	require.NoError(t, err)
	_, err = svc.SetEpisodeProgress(ctx, 10, 1, 5)
	require.NoError(t, err)

	state, err := svc.GetState(ctx, 10, 1)
	require.NoError(t, err)
	require.NotNil(t, state.Reaction)
	assert.Equal(t, models.TagLikes, state.Reaction.Status)
	require.NotNil(t, state.Favourite)
	require.NotNil(t, state.Watch)
	assert.Equal(t, models.TagWatching, state.Watch.Status)
	require.NotNil(t, state.Progress)
	assert.Equal(t, 5, state.Progress.Episodes)

	// A user with no rows gets an empty state, not an error
	state, err = svc.GetState(ctx, 99, 1)
	require.NoError(t, err)
	assert.Nil(t, state.Reaction)
	assert.Nil(t, state.Watch)
	assert.Nil(t, state.Progress)
}

func TestSummary(t *testing.T) {
	svc, _, _ := newEngagementFixture()
	ctx := context.Background()

	_, err := svc.SetReaction(ctx, 10, 1, models.TagLikes)
	require.NoError(t, err)
	_, err = svc.SetFavourite(ctx, 10, 1)
	require.NoError(t, err)
	_, err = svc.SetEpisodeProgress(ctx, 10, 1, 10)
	require.NoError(t, err)
	_, err = svc.SetWatchState(ctx, 10, 2, models.TagCompleted)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Counts[models.TagWatching])
	assert.Equal(t, 1, summary.Counts[models.TagCompleted])
	assert.Equal(t, 1, summary.Counts[models.TagLikes])
	assert.Equal(t, 2, summary.TotalEntries, "only watch states count as list entries")
	assert.Equal(t, 16, summary.Episodes, "10 watched plus 6 from completing FLCL")
}

func TestListByUserAndTagRejectsUnknownTag(t *testing.T) {
	svc, _, _ := newEngagementFixture()

	_, err := svc.ListByUserAndTag(context.Background(), 10, models.StatusTag("Bogus"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
