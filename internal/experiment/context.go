package experiment

import (
	"context"
	"net/url"

	"go.uber.org/zap"
)

// ExposureEventName is the event name exposure records are ingested under.
const ExposureEventName = "experiment_exposure"

// OverridePrefix prefixes the query parameter forcing a variant:
// ?exp-<experiment>=<variant-key>.
const OverridePrefix = "exp-"

// Exposure is emitted the first time an experiment resolves to a variant in
// an execution context. Forced marks URL-overridden assignments.
type Exposure struct {
	ProjectID  string
	Experiment string
	Variant    string
	UserID     string
	Forced     bool
}

// Tracker receives exposure records. They flow back through the same
// ingestion path as ordinary events.
type Tracker interface {
	TrackExposure(ctx context.Context, exp Exposure) error
}

// Assignments resolves experiments to variants for one execution context
// (one page load). It is passed explicitly, never shared across concurrent
// executions; the assignment cache is therefore unsynchronized on purpose.
type Assignments struct {
	projectID   string
	userID      string
	experiments map[string]Experiment
	query       url.Values
	tracker     Tracker
	cache       map[string]string
	log         *zap.Logger
}

// NewAssignments creates the assignment context for one execution.
// experiments is the server-distributed configuration list; query carries the
// page's query parameters for override resolution.
func NewAssignments(projectID, userID string, experiments []Experiment, query url.Values, tracker Tracker, log *zap.Logger) *Assignments {
	byName := make(map[string]Experiment, len(experiments))
	for _, e := range experiments {
		byName[e.Name] = e
	}

	return &Assignments{
		projectID:   projectID,
		userID:      userID,
		experiments: byName,
		query:       query,
		tracker:     tracker,
		cache:       make(map[string]string),
		log:         log,
	}
}

// Resolve returns the variant for a named experiment from the configured
// list. The second return is false when no configuration resolves.
func (a *Assignments) Resolve(ctx context.Context, name string) (string, bool) {
	exp, ok := a.experiments[name]
	if !ok {
		return "", false
	}
	return a.resolve(ctx, exp), true
}

// ResolveInline resolves an experiment synthesized from a bare variant-key
// list, splitting weight evenly. A configured experiment with the same name
// takes precedence.
func (a *Assignments) ResolveInline(ctx context.Context, name string, keys []string) (string, bool) {
	if exp, ok := a.experiments[name]; ok {
		return a.resolve(ctx, exp), true
	}

	variants := SplitEvenly(keys)
	if len(variants) == 0 {
		return "", false
	}
	return a.resolve(ctx, Experiment{Name: name, Variants: variants}), true
}

func (a *Assignments) resolve(ctx context.Context, exp Experiment) string {
	if variant, ok := a.cache[exp.Name]; ok {
		return variant
	}

	if forced := a.query.Get(OverridePrefix + exp.Name); forced != "" {
		for _, v := range exp.Variants {
			if v.Key == forced {
				a.cache[exp.Name] = forced
				a.expose(ctx, exp.Name, forced, true)
				return forced
			}
		}
		// Unknown override value: ignore and fall through to hashing.
	}

	bucket := BucketFor(exp.Name, a.userID)
	variant := Pick(exp.Variants, bucket)
	a.cache[exp.Name] = variant
	a.expose(ctx, exp.Name, variant, false)
	return variant
}

func (a *Assignments) expose(ctx context.Context, name, variant string, forced bool) {
	if a.tracker == nil {
		return
	}

	err := a.tracker.TrackExposure(ctx, Exposure{
		ProjectID:  a.projectID,
		Experiment: name,
		Variant:    variant,
		UserID:     a.userID,
		Forced:     forced,
	})
	if err != nil && a.log != nil {
		a.log.Warn("Failed to track exposure",
			zap.String("experiment", name),
			zap.String("variant", variant),
			zap.Error(err))
	}
}
