package combiner

import (
	"context"
	"errors"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/activator"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/configs"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/connector"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/dump"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/fetcher"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var logger *zap.Logger

var ErrFetchFailed = errors.New("failed to fetch source profile")

type Combiner struct {
	config    *configs.Config
	connector *connector.Connector
	store     *dump.Store
	fetcher   *fetcher.Fetcher
	activator *activator.Activator
	runID     string
}

func New(config *configs.Config, l *zap.Logger, c *connector.Connector, store *dump.Store) *Combiner {

	logger = l.Named("Combiner")

	cb := &Combiner{
		config:    config,
		connector: c,
		store:     store,
	}

	cb.fetcher = fetcher.New(c, l,
		fetcher.WithPageSize(config.PageSize),
		fetcher.WithPageHandler(cb.savePage),
	)
	cb.activator = activator.New(c, l)

	return cb
}

func (cb *Combiner) savePage(profile string, page int, data []byte) {

	if !cb.store.Enabled() {
		return
	}

	_, err := cb.store.Save(cb.runID, profile, page, data)
	if err != nil {
		logger.Warn("Failed to save page",
			zap.String("profile", profile),
			zap.Int("page", page),
			zap.Error(err),
		)
	}
}

// Run copies the rules of the first and then the second source profile onto
// the target profile. The returned summary is never nil; an error is only
// returned when strict mode aborts the run.
func (cb *Combiner) Run(ctx context.Context) (*Summary, error) {

	cb.runID = uuid.New().String()

	profiles := cb.config.Profiles
	summary := NewSummary(cb.runID, profiles.Target)
	summary.DryRun = cb.config.DryRun
	summary.Strict = cb.config.Strict

	logger.Info("Combining quality profiles",
		zap.String("run", cb.runID),
		zap.String("first", profiles.First),
		zap.String("second", profiles.Second),
		zap.String("target", profiles.Target),
		zap.Bool("dryRun", cb.config.DryRun),
	)

	first := cb.fetch(ctx, summary, profiles.First)
	second := cb.fetch(ctx, summary, profiles.Second)

	if cb.config.Strict && (!first.OK() || !second.OK()) {
		summary.Aborted = true
		summary.Finish()

		logger.Error("Aborted before activation, source profile could not be read",
			zap.String("run", cb.runID),
		)

		return summary, errors.Join(ErrFetchFailed, first.Err, second.Err)
	}

	summary.Processed = len(first.Rules) + len(second.Rules)
	summary.Distinct = rules.Merge(first.Rules, second.Rules).Len()

	// Second profile goes last so its rules win on duplicate keys
	cb.activateAll(ctx, summary, first)
	cb.activateAll(ctx, summary, second)

	summary.Finish()

	logger.Info("Finished combining quality profiles",
		zap.String("run", cb.runID),
		zap.Int("processed", summary.Processed),
		zap.Int("distinct", summary.Distinct),
		zap.Int("activated", summary.Activated),
		zap.Int("failed", len(summary.Failures)),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, nil
}

func (cb *Combiner) fetch(ctx context.Context, summary *Summary, profile string) *fetcher.Result {

	result := cb.fetcher.Fetch(ctx, profile)

	report := ProfileReport{
		Key:   profile,
		Rules: len(result.Rules),
		Pages: result.Pages,
	}

	if result.Err != nil {
		report.Error = result.Err.Error()
	}

	summary.Profiles = append(summary.Profiles, report)

	logger.Info("Loaded source profile",
		zap.String("profile", profile),
		zap.Int("rules", len(result.Rules)),
		zap.Bool("ok", result.OK()),
	)

	return result
}

func (cb *Combiner) activateAll(ctx context.Context, summary *Summary, source *fetcher.Result) {

	if cb.config.DryRun {
		for _, rule := range source.Rules {
			logger.Info("Would activate rule",
				zap.String("source", source.Profile),
				zap.String("rule", rule.Key),
				zap.String("severity", rule.Severity.String()),
			)
		}
		return
	}

	for _, rule := range source.Rules {

		result := cb.activator.Activate(ctx, cb.config.Profiles.Target, rule)
		if !result.OK() {
			summary.Failures = append(summary.Failures, Failure{
				Source: source.Profile,
				Rule:   rule.Key,
				Reason: result.Err.Error(),
			})
			continue
		}

		summary.Activated++
	}
}

func (cb *Combiner) RunID() string {
	return cb.runID
}
