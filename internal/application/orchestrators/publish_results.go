package orchestrators

import (
	"context"
	"log/slog"

	emailAdapter "photocontest/internal/adapters/email"
	"photocontest/internal/adapters/live"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/ranking"
)

// CatalogStoreForPublish defines the catalog interface needed by SetResultsPublished.
type CatalogStoreForPublish interface {
	GetYearSettings(ctx context.Context, year int) (ballot.YearSettings, error)
	SetResultsPublished(ctx context.Context, year int, published bool) error
}

// SetResultsPublishedInput carries input for the publish orchestrator.
type SetResultsPublishedInput struct {
	Year       int
	Published  bool
	ResultsURL string
}

// SetResultsPublishedResult reports the new flag and whether an announcement went out.
type SetResultsPublishedResult struct {
	Published bool
	Announced bool
}

// SetResultsPublishedDeps holds dependencies for SetResultsPublished.
// Mailer, LoadPodium and Live are optional.
type SetResultsPublishedDeps struct {
	CatalogStore CatalogStoreForPublish
	Mailer       emailAdapter.Sender
	Recipients   []string
	LoadPodium   func(ctx context.Context, year int) ([]ranking.Entry, error)
	Live         Publisher
}

// ExecuteSetResultsPublished sets a year's publication flag.
// PRE: caller is an admin; input.Year > 0
// POST: flag stored; on an off-to-on change an announcement is attempted
// INVARIANT: announcement failures are logged and never undo the publish
func ExecuteSetResultsPublished(ctx context.Context, input SetResultsPublishedInput, deps SetResultsPublishedDeps) (SetResultsPublishedResult, error) {
	if input.Year <= 0 {
		return SetResultsPublishedResult{}, ErrInvalidYear
	}
	current, err := deps.CatalogStore.GetYearSettings(ctx, input.Year)
	if err != nil {
		return SetResultsPublishedResult{}, err
	}
	if err := deps.CatalogStore.SetResultsPublished(ctx, input.Year, input.Published); err != nil {
		return SetResultsPublishedResult{}, err
	}
	slog.Info("admin_event", "event", "results_published_set", "year", input.Year, "published", input.Published)
	if deps.Live != nil {
		deps.Live.Publish(live.Message{Type: live.TypeResultsToggled, Year: input.Year})
	}

	result := SetResultsPublishedResult{Published: input.Published}
	if input.Published && !current.ResultsPublished {
		result.Announced = announceResults(ctx, input, deps)
	}
	return result, nil
}

func announceResults(ctx context.Context, input SetResultsPublishedInput, deps SetResultsPublishedDeps) bool {
	if deps.Mailer == nil || len(deps.Recipients) == 0 {
		return false
	}

	a := emailAdapter.Announcement{Year: input.Year, ResultsURL: input.ResultsURL}
	if deps.LoadPodium != nil {
		entries, err := deps.LoadPodium(ctx, input.Year)
		if err != nil {
			slog.Error("mail_event", "event", "announcement_podium_failed", "year", input.Year, "error", err)
			return false
		}
		for _, e := range ranking.Top(entries, ranking.PodiumSize) {
			a.Podium = append(a.Podium, emailAdapter.Placing{Position: e.Position, Uploader: e.Image.Uploader, Score: e.WeightedScore})
		}
	}

	msgs := make([]emailAdapter.Message, 0, len(deps.Recipients))
	for _, to := range deps.Recipients {
		msg, err := a.Message([]string{to})
		if err != nil {
			slog.Error("mail_event", "event", "announcement_render_failed", "year", input.Year, "error", err)
			return false
		}
		msgs = append(msgs, msg)
	}
	if _, err := deps.Mailer.SendEach(ctx, msgs); err != nil {
		slog.Error("mail_event", "event", "announcement_failed", "year", input.Year, "error", err)
		return false
	}
	slog.Info("mail_event", "event", "announcement_sent", "year", input.Year, "recipients", len(msgs))
	return true
}
