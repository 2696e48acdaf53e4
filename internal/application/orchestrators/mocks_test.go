package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"photocontest/internal/adapters/live"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/duel"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/reaction"
	"photocontest/internal/domain/settings"
	"photocontest/internal/domain/sticker"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// seqIDs returns a generator yielding id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// --- ballots ---

// mockBallotStore implements the ballot store interfaces for testing.
type mockBallotStore struct {
	ballots      map[string]ballot.Ballot
	// beforeInsert runs ahead of each insert; a non-nil error aborts it.
	beforeInsert func(b ballot.Ballot) error
}

func newMockBallotStore() *mockBallotStore {
	return &mockBallotStore{ballots: make(map[string]ballot.Ballot)}
}

// Insert implements BallotStoreForCast.
// PRE: b.ID is unique
// POST: ballot stored, or ErrDuplicateBallot when (image, voter, year) is taken
func (m *mockBallotStore) Insert(_ context.Context, b ballot.Ballot) error {
	if m.beforeInsert != nil {
		if err := m.beforeInsert(b); err != nil {
			return err
		}
	}
	for _, existing := range m.ballots {
		if existing.ImageID == b.ImageID && existing.VoterID == b.VoterID && existing.ContestYear == b.ContestYear {
			return ballot.ErrDuplicateBallot
		}
	}
	m.ballots[b.ID] = b
	return nil
}

// Delete implements BallotStoreForCast.
func (m *mockBallotStore) Delete(_ context.Context, id string) error {
	delete(m.ballots, id)
	return nil
}

// ListByVoter implements BallotStoreForCast.
// POST: ballots ordered by ID
func (m *mockBallotStore) ListByVoter(_ context.Context, voterID string, year int) ([]ballot.Ballot, error) {
	var out []ballot.Ballot
	for _, b := range m.ballots {
		if b.VoterID == voterID && b.ContestYear == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteByVoter implements BallotStoreForReset.
func (m *mockBallotStore) DeleteByVoter(_ context.Context, voterID string, year int) (int, error) {
	n := 0
	for id, b := range m.ballots {
		if b.VoterID == voterID && b.ContestYear == year {
			delete(m.ballots, id)
			n++
		}
	}
	return n, nil
}

// DeleteByYear implements BallotStoreForReset.
func (m *mockBallotStore) DeleteByYear(_ context.Context, year int) (int, error) {
	n := 0
	for id, b := range m.ballots {
		if b.ContestYear == year {
			delete(m.ballots, id)
			n++
		}
	}
	return n, nil
}

// --- catalog ---

// mockCatalogStore implements the catalog interfaces for testing.
type mockCatalogStore struct {
	settings map[int]ballot.YearSettings
	options  []ballot.VoteOption
}

func newMockCatalogStore(s ballot.YearSettings, options ...ballot.VoteOption) *mockCatalogStore {
	return &mockCatalogStore{
		settings: map[int]ballot.YearSettings{s.ContestYear: s},
		options:  options,
	}
}

// ListOptions implements CatalogStoreForCast.
func (m *mockCatalogStore) ListOptions(_ context.Context, year int, activeOnly bool) ([]ballot.VoteOption, error) {
	var out []ballot.VoteOption
	for _, o := range m.options {
		if o.ContestYear == year && (o.Active || !activeOnly) {
			out = append(out, o)
		}
	}
	return out, nil
}

// GetYearSettings implements CatalogStoreForCast.
// POST: defaults for a year without a row
func (m *mockCatalogStore) GetYearSettings(_ context.Context, year int) (ballot.YearSettings, error) {
	if s, ok := m.settings[year]; ok {
		return s, nil
	}
	return ballot.DefaultYearSettings(year), nil
}

// SaveYearSettings implements CatalogStoreForAdmin.
func (m *mockCatalogStore) SaveYearSettings(_ context.Context, s ballot.YearSettings) error {
	m.settings[s.ContestYear] = s
	return nil
}

// ListYearSettings implements CatalogStoreForSeed.
func (m *mockCatalogStore) ListYearSettings(_ context.Context) ([]ballot.YearSettings, error) {
	var out []ballot.YearSettings
	for _, s := range m.settings {
		out = append(out, s)
	}
	return out, nil
}

// SetResultsPublished implements CatalogStoreForPublish.
func (m *mockCatalogStore) SetResultsPublished(ctx context.Context, year int, published bool) error {
	s, _ := m.GetYearSettings(ctx, year)
	s.ResultsPublished = published
	m.settings[year] = s
	return nil
}

// GetOption implements CatalogStoreForAdmin.
func (m *mockCatalogStore) GetOption(_ context.Context, year int, key string) (ballot.VoteOption, error) {
	for _, o := range m.options {
		if o.ContestYear == year && o.Key == key {
			return o, nil
		}
	}
	return ballot.VoteOption{}, ballot.ErrInvalidOption
}

// SaveOption implements CatalogStoreForAdmin.
// POST: replaces the option with the same (year, key) or appends it
func (m *mockCatalogStore) SaveOption(_ context.Context, o ballot.VoteOption) error {
	for i, existing := range m.options {
		if existing.ContestYear == o.ContestYear && existing.Key == o.Key {
			m.options[i] = o
			return nil
		}
	}
	m.options = append(m.options, o)
	return nil
}

// --- images ---

// mockImageStore implements the image store interfaces for testing.
type mockImageStore struct {
	images map[string]image.Image
}

func newMockImageStore(imgs ...image.Image) *mockImageStore {
	m := &mockImageStore{images: make(map[string]image.Image)}
	for _, img := range imgs {
		m.images[img.ID] = img
	}
	return m
}

// GetByID implements ImageStoreForVoting.
func (m *mockImageStore) GetByID(_ context.Context, id string) (image.Image, error) {
	img, ok := m.images[id]
	if !ok {
		return image.Image{}, image.ErrImageNotFound
	}
	return img, nil
}

// ListByYear implements ImageStoreForDuel.
// POST: images ordered by ID
func (m *mockImageStore) ListByYear(_ context.Context, year int, visibleOnly bool) ([]image.Image, error) {
	var out []image.Image
	for _, img := range m.images {
		if img.ContestYear == year && (img.Visible || !visibleOnly) {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save implements ImageStoreForAdmin.
func (m *mockImageStore) Save(_ context.Context, img image.Image) error {
	m.images[img.ID] = img
	return nil
}

// Delete implements ImageStoreForAdmin.
func (m *mockImageStore) Delete(_ context.Context, id string) error {
	if _, ok := m.images[id]; !ok {
		return image.ErrImageNotFound
	}
	delete(m.images, id)
	return nil
}

func contestImage(id string, year int) image.Image {
	return image.Image{ID: id, Filename: id + ".jpg", ContestYear: year, Visible: true, UploadedAt: fixedTime}
}

// --- reactions ---

// mockReactionStore implements the reaction store interfaces for testing.
type mockReactionStore struct {
	rows map[string]reaction.Reaction
}

func newMockReactionStore() *mockReactionStore {
	return &mockReactionStore{rows: make(map[string]reaction.Reaction)}
}

func reactionKey(imageID, voterID, kind string, year int) string {
	return fmt.Sprintf("%s|%s|%s|%d", imageID, voterID, kind, year)
}

// Insert implements ReactionStoreForToggle.
// POST: ErrDuplicateReaction when the voter already holds the kind
func (m *mockReactionStore) Insert(_ context.Context, r reaction.Reaction) error {
	k := reactionKey(r.ImageID, r.VoterID, r.Kind, r.ContestYear)
	if _, ok := m.rows[k]; ok {
		return reaction.ErrDuplicateReaction
	}
	m.rows[k] = r
	return nil
}

// Delete implements ReactionStoreForToggle.
func (m *mockReactionStore) Delete(_ context.Context, imageID, voterID, kind string, year int) (bool, error) {
	k := reactionKey(imageID, voterID, kind, year)
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	return true, nil
}

// CountsForImage implements ReactionStoreForToggle.
func (m *mockReactionStore) CountsForImage(_ context.Context, imageID string, year int) (reaction.Counts, error) {
	var c reaction.Counts
	for _, r := range m.rows {
		if r.ImageID == imageID && r.ContestYear == year {
			c.Add(r.Kind, 1)
		}
	}
	return c, nil
}

// DeleteByYear implements ReactionStoreForReset.
func (m *mockReactionStore) DeleteByYear(_ context.Context, year int) (int, error) {
	n := 0
	for k, r := range m.rows {
		if r.ContestYear == year {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

// --- duels ---

// mockDuelStore implements DuelStoreForOrchestrator for testing.
type mockDuelStore struct {
	votes []duel.Vote
}

// Insert implements DuelStoreForOrchestrator.
func (m *mockDuelStore) Insert(_ context.Context, v duel.Vote) error {
	m.votes = append(m.votes, v)
	return nil
}

// CountByVoter implements DuelStoreForOrchestrator.
func (m *mockDuelStore) CountByVoter(_ context.Context, voterID string, year int) (int, error) {
	n := 0
	for _, v := range m.votes {
		if v.VoterID == voterID && v.ContestYear == year {
			n++
		}
	}
	return n, nil
}

// identityShuffler leaves the order unchanged.
type identityShuffler struct{}

func (identityShuffler) Shuffle(int, func(i, j int)) {}

// --- live ---

// mockPublisher records published messages.
type mockPublisher struct {
	msgs []live.Message
}

// Publish implements Publisher.
func (m *mockPublisher) Publish(msg live.Message) {
	m.msgs = append(m.msgs, msg)
}

// --- files ---

// mockFiles implements FileStore in memory.
type mockFiles struct {
	files    map[string][]byte
	thumbErr error
}

func newMockFiles() *mockFiles {
	return &mockFiles{files: make(map[string][]byte)}
}

// Save implements FileStore.
func (m *mockFiles) Save(rel string, src io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return err
	}
	m.files[rel] = buf.Bytes()
	return nil
}

// Thumbnail implements FileStore.
// POST: dstRel holds a copy of srcRel unless thumbErr is set
func (m *mockFiles) Thumbnail(srcRel, dstRel string) error {
	if m.thumbErr != nil {
		return m.thumbErr
	}
	data, ok := m.files[srcRel]
	if !ok {
		return errors.New("source missing")
	}
	m.files[dstRel] = data
	return nil
}

// Remove implements FileStore.
func (m *mockFiles) Remove(rels ...string) error {
	for _, rel := range rels {
		delete(m.files, rel)
	}
	return nil
}

// Exists implements FileStore.
func (m *mockFiles) Exists(rel string) bool {
	_, ok := m.files[rel]
	return ok
}

// --- stickers ---

// mockStickerStore implements StickerStoreForAdmin for testing.
type mockStickerStore struct {
	stickers map[string]sticker.Sticker
}

func newMockStickerStore() *mockStickerStore {
	return &mockStickerStore{stickers: make(map[string]sticker.Sticker)}
}

// Save implements StickerStoreForAdmin.
func (m *mockStickerStore) Save(_ context.Context, s sticker.Sticker) error {
	m.stickers[s.ID] = s
	return nil
}

// GetByID implements StickerStoreForAdmin.
func (m *mockStickerStore) GetByID(_ context.Context, id string) (sticker.Sticker, error) {
	s, ok := m.stickers[id]
	if !ok {
		return sticker.Sticker{}, errors.New("not found")
	}
	return s, nil
}

// ListByYear implements StickerStoreForAdmin.
func (m *mockStickerStore) ListByYear(_ context.Context, year int, activeOnly bool) ([]sticker.Sticker, error) {
	var out []sticker.Sticker
	for _, s := range m.stickers {
		if s.ContestYear == year && (s.Active || !activeOnly) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// Delete implements StickerStoreForAdmin.
func (m *mockStickerStore) Delete(_ context.Context, id string) error {
	delete(m.stickers, id)
	return nil
}

// --- settings ---

// mockSettingsStore implements SettingsStoreForAdmin for testing.
type mockSettingsStore struct {
	current settings.Settings
	saves   int
}

// Load implements SettingsStoreForAdmin.
func (m *mockSettingsStore) Load(_ context.Context) (settings.Settings, error) {
	return m.current, nil
}

// Save implements SettingsStoreForAdmin.
func (m *mockSettingsStore) Save(_ context.Context, s settings.Settings) error {
	m.current = s
	m.saves++
	return nil
}
