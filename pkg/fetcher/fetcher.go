package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/rules"
	"go.uber.org/zap"
)

const (
	SearchPath      = "/api/rules/search"
	DefaultPageSize = 500
)

var ErrEmptyProfile = errors.New("profile key is empty")

type Client interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
}

type Result struct {
	Profile string
	Rules   []*rules.Rule
	Pages   int
	Err     error
}

func (r *Result) OK() bool {
	return r.Err == nil
}

type Fetcher struct {
	client      Client
	logger      *zap.Logger
	pageSize    int
	pageHandler func(profile string, page int, data []byte)
}

func New(client Client, l *zap.Logger, opts ...func(*Fetcher)) *Fetcher {

	f := &Fetcher{
		client:      client,
		logger:      l.Named("Fetcher"),
		pageSize:    DefaultPageSize,
		pageHandler: func(string, int, []byte) {},
	}

	for _, o := range opts {
		o(f)
	}

	return f
}

func WithPageSize(size int) func(*Fetcher) {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

// WithPageHandler registers a callback receiving every raw page as returned
// by the server.
func WithPageHandler(fn func(profile string, page int, data []byte)) func(*Fetcher) {
	return func(f *Fetcher) {
		f.pageHandler = fn
	}
}

// Fetch returns every activated rule of the profile in server order. On
// failure the result holds no rules and Err is set.
func (f *Fetcher) Fetch(ctx context.Context, profile string) *Result {

	result := &Result{
		Profile: profile,
		Rules:   make([]*rules.Rule, 0),
	}

	if len(profile) == 0 {
		return f.fail(result, 0, ErrEmptyProfile)
	}

	set := rules.NewRuleSet()
	duplicates := 0

	for page := 1; ; page++ {

		query := url.Values{}
		query.Set("activation", "true")
		query.Set("qprofile", profile)
		query.Set("ps", strconv.Itoa(f.pageSize))
		query.Set("p", strconv.Itoa(page))

		data, err := f.client.Get(ctx, SearchPath, query)
		if err != nil {
			return f.fail(result, page, err)
		}

		result.Pages = page
		f.pageHandler(profile, page, data)

		p, err := ParsePage(data, page, f.pageSize)
		if err != nil {
			return f.fail(result, page, err)
		}

		for _, rule := range p.Rules {
			if !set.Add(rule) {
				duplicates++
			}
		}

		f.logger.Debug("Fetched page",
			zap.String("profile", profile),
			zap.Int("page", page),
			zap.Int("rules", len(p.Rules)),
			zap.Int("total", p.Total),
		)

		// The reported total may drift between requests, an empty page ends the walk too
		if p.Last() || len(p.Rules) == 0 {
			break
		}
	}

	if duplicates > 0 {
		f.logger.Warn("Dropped duplicate rules across pages",
			zap.String("profile", profile),
			zap.Int("duplicates", duplicates),
		)
	}

	result.Rules = set.List()

	f.logger.Info("Fetched profile rules",
		zap.String("profile", profile),
		zap.Int("rules", len(result.Rules)),
		zap.Int("pages", result.Pages),
	)

	return result
}

func (f *Fetcher) fail(result *Result, page int, err error) *Result {

	f.logger.Warn("Failed to fetch profile rules",
		zap.String("profile", result.Profile),
		zap.Int("page", page),
		zap.Error(err),
	)

	result.Rules = make([]*rules.Rule, 0)
	result.Err = fmt.Errorf("fetch profile %q page %d: %w", result.Profile, page, err)

	return result
}
