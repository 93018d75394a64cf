package activator

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/rules"
	"go.uber.org/zap"
)

const (
	ActivatePath = "/api/qualityprofiles/activate_rule"
	paramPrefix  = "params_"
)

var ErrEmptyTarget = errors.New("target profile key is empty")

type Client interface {
	Post(ctx context.Context, path string, query url.Values) ([]byte, error)
}

type Result struct {
	Target string
	Rule   *rules.Rule
	Err    error
}

func (r *Result) OK() bool {
	return r.Err == nil
}

type Activator struct {
	client        Client
	logger        *zap.Logger
	resultHandler func(*Result)
}

func New(client Client, l *zap.Logger, opts ...func(*Activator)) *Activator {

	a := &Activator{
		client:        client,
		logger:        l.Named("Activator"),
		resultHandler: func(*Result) {},
	}

	// Apply options
	for _, o := range opts {
		o(a)
	}

	return a
}

func WithResultHandler(fn func(*Result)) func(*Activator) {
	return func(a *Activator) {
		a.resultHandler = fn
	}
}

// Query builds the activation parameters. Parameters are flattened into
// params_<key> fields and reset is always disabled.
func Query(target string, rule *rules.Rule) url.Values {

	query := url.Values{}
	query.Set("key", target)
	query.Set("rule", rule.Key)
	query.Set("severity", rule.Severity.String())
	query.Set("reset", "false")

	for _, p := range rule.Params {
		query.Set(paramPrefix+p.Key, p.Value)
	}

	return query
}

// Activate enables the rule on the target profile, replacing any existing
// activation of the same rule key.
func (a *Activator) Activate(ctx context.Context, target string, rule *rules.Rule) *Result {

	result := &Result{
		Target: target,
		Rule:   rule,
	}

	defer a.resultHandler(result)

	if len(target) == 0 {
		result.Err = ErrEmptyTarget
		a.logFailure(result)
		return result
	}

	if err := rule.Validate(); err != nil {
		result.Err = err
		a.logFailure(result)
		return result
	}

	_, err := a.client.Post(ctx, ActivatePath, Query(target, rule))
	if err != nil {
		result.Err = fmt.Errorf("activate rule %s: %w", rule.Key, err)
		a.logFailure(result)
		return result
	}

	a.logger.Debug("Activated rule",
		zap.String("target", target),
		zap.String("rule", rule.Key),
		zap.String("severity", rule.Severity.String()),
		zap.Int("params", len(rule.Params)),
	)

	return result
}

func (a *Activator) logFailure(result *Result) {
	a.logger.Warn("Failed to activate rule",
		zap.String("target", result.Target),
		zap.String("rule", result.Rule.Key),
		zap.Error(result.Err),
	)
}
