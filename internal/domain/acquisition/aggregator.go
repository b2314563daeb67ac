package acquisition

import (
	"context"
	"fmt"

	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one draw acquisition. Records keeps the
// concatenated first-seen order of the declared sources. A platform in
// FailedPlatforms contributed zero records because its fetch failed after
// retries.
type Result struct {
	Records         []Record
	FailedPlatforms []entity.Platform
}

// Aggregator fans the sources of a draw out to their platform adapters and
// waits for all of them before returning. A required source's failure
// aborts the whole acquisition, a non-required one degrades to zero
// records.
type Aggregator struct {
	adapters map[entity.Platform]Adapter
}

func NewAggregator(adapters ...Adapter) *Aggregator {
	byPlatform := make(map[entity.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}

	return &Aggregator{adapters: byPlatform}
}

func (a *Aggregator) Adapter(platform entity.Platform) (Adapter, error) {
	adapter, ok := a.adapters[platform]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "Not supported platform %s", platform)
	}

	return adapter, nil
}

func (a *Aggregator) Fetch(
	ctx context.Context, sources []entity.DrawSource, kinds []entity.ActionKind,
) (*Result, error) {
	type sourceResult struct {
		records []Record
		failed  bool
	}

	results := make([]sourceResult, len(sources))

	eg, egCtx := errgroup.WithContext(ctx)
	for i := range sources {
		i, source := i, sources[i]
		eg.Go(func() error {
			records, err := a.fetchSource(egCtx, source, kinds)
			if err != nil {
				if source.Required {
					return fmt.Errorf("required source %s: %w", source.Platform, err)
				}

				xcontext.Logger(ctx).Warnf(
					"Acquisition of %s degraded to zero records: %v", source.Platform, err)
				results[i] = sourceResult{failed: true}
				return nil
			}

			results[i] = sourceResult{records: records}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, r := range results {
		if r.failed {
			result.FailedPlatforms = append(result.FailedPlatforms, sources[i].Platform)
		}

		result.Records = append(result.Records, r.records...)
	}

	return result, nil
}

func (a *Aggregator) fetchSource(
	ctx context.Context, source entity.DrawSource, kinds []entity.ActionKind,
) ([]Record, error) {
	adapter, err := a.Adapter(source.Platform)
	if err != nil {
		return nil, err
	}

	if adapter.NeedsTokenRefresh() {
		return nil, AuthExpiredError{Platform: source.Platform}
	}

	resourceID, err := adapter.ExtractResourceID(source.PostURL)
	if err != nil {
		return nil, err
	}

	maxPages := xcontext.Configs(ctx).Draw.MaxPagesPerSource

	var records []Record
	cursor := ""
	for page := 0; ; page++ {
		if maxPages > 0 && page >= maxPages {
			xcontext.Logger(ctx).Warnf(
				"Stopped paginating %s after %d pages", source.Platform, maxPages)
			break
		}

		pageRecords, next, err := adapter.FetchEngagement(ctx, resourceID, kinds, cursor)
		if err != nil {
			return nil, err
		}

		records = append(records, pageRecords...)
		if next == "" {
			break
		}

		cursor = next
	}

	return records, nil
}
