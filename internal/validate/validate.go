// Package validate runs checkers over scenes and collects their findings.
package validate

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/railcheck/internal/checks"
	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// Checker is one validation pass over a scene. A non-nil error means the
// pass could not run to completion; issues are data findings.
type Checker interface {
	Name() string
	Check(s *scene.Scene) ([]issue.Issue, error)
}

// Options parameterizes the built-in checkers.
type Options struct {
	Horizon checks.HorizonOptions
	// Ontology enables the ontology checker. Nil disables it.
	Ontology *checks.PreparedOntology
}

type funcChecker struct {
	name string
	fn   func(*scene.Scene) ([]issue.Issue, error)
}

func (c funcChecker) Name() string                                { return c.name }
func (c funcChecker) Check(s *scene.Scene) ([]issue.Issue, error) { return c.fn(s) }

// Func adapts fn to a Checker.
func Func(name string, fn func(*scene.Scene) ([]issue.Issue, error)) Checker {
	return funcChecker{name: name, fn: fn}
}

func infallible(fn func(*scene.Scene) []issue.Issue) func(*scene.Scene) ([]issue.Issue, error) {
	return func(s *scene.Scene) ([]issue.Issue, error) { return fn(s), nil }
}

// defaultNames is the fixed order of the default checker set.
var defaultNames = []string{"sensor_type", "empty_frames", "ego_track", "horizon", "transition", "ontology"}

func builtin(opts Options) map[string]Checker {
	m := map[string]Checker{
		"sensor_type":  Func("sensor_type", infallible(checks.AnnotationSensorMismatch)),
		"empty_frames": Func("empty_frames", infallible(checks.EmptyFrames)),
		"ego_track":    Func("ego_track", infallible(checks.EgoTrackBothRails)),
		"transition":   Func("transition", infallible(checks.TransitionEndpoints)),
		"sensor_names": Func("sensor_names", infallible(checks.SensorNames)),
		"horizon": Func("horizon", func(s *scene.Scene) ([]issue.Issue, error) {
			return checks.Horizon(s, opts.Horizon)
		}),
	}
	if opts.Ontology != nil {
		m["ontology"] = Func("ontology", opts.Ontology.Check)
	}
	return m
}

// Names returns every registered checker name, sorted.
func Names() []string {
	m := builtin(Options{Ontology: &checks.PreparedOntology{}})
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the default checkers in their fixed order. The ontology
// checker is included only when opts carries an ontology.
func Default(opts Options) []Checker {
	out, _ := ByName(defaultNames, opts)
	return out
}

// ByName resolves checker names in the given order. "ontology" is dropped
// when opts carries no ontology. Unknown or repeated names are configuration
// errors.
func ByName(names []string, opts Options) ([]Checker, error) {
	m := builtin(opts)
	seen := make(map[string]bool, len(names))
	var out []Checker
	for _, name := range names {
		if seen[name] {
			return nil, errors.Configurationf("checker %q listed twice", name)
		}
		seen[name] = true
		c, ok := m[name]
		switch {
		case ok:
			out = append(out, c)
		case name == "ontology":
		default:
			return nil, errors.Configurationf("unknown checker %q", name)
		}
	}
	return out, nil
}

// Result holds the findings for one scene.
type Result struct {
	// Path is the source file, empty when the scene did not come from one.
	Path   string
	Scene  string
	Issues []issue.Issue
	// Err is the combined fatal error of the scene, if any.
	Err error
}

// Run applies checkers to s in order and concatenates their issues. A
// checker that fails does not stop the others; the returned error combines
// every failure, each wrapped with its checker's name.
func Run(ctx context.Context, s *scene.Scene, checkers []Checker, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := Result{Scene: s.Name, Issues: []issue.Issue{}}
	log := logger.With(zap.String("scene", s.Name))
	var errs error
	for _, c := range checkers {
		if err := ctx.Err(); err != nil {
			errs = errors.CombineErrors(errs, err)
			break
		}
		start := time.Now()
		issues, err := c.Check(s)
		if err != nil {
			log.Warn("checker failed", zap.String("checker", c.Name()), zap.Error(err))
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "%s", c.Name()))
			continue
		}
		log.Debug("checker done",
			zap.String("checker", c.Name()),
			zap.Int("issues", len(issues)),
			zap.Duration("took", time.Since(start)))
		res.Issues = append(res.Issues, issues...)
	}
	res.Err = errs
	return res, errs
}

// Many loads and validates the scene files at paths with at most concurrency
// scenes in flight. Results are returned in path order. A scene that fails
// to load or check does not stop the others; the returned error combines
// every scene's failure.
func Many(ctx context.Context, paths []string, checkers []Checker, concurrency int, logger *zap.Logger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			results[i] = runFile(ctx, path, checkers, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(r.Err, "%s", r.Path))
		}
	}
	return results, errs
}

func runFile(ctx context.Context, path string, checkers []Checker, logger *zap.Logger) Result {
	s, err := scene.LoadFile(path)
	if err != nil {
		logger.Error("load scene", zap.String("path", path), zap.Error(err))
		return Result{Path: path, Err: err}
	}
	res, _ := Run(ctx, s, checkers, logger)
	res.Path = path
	logger.Info("scene validated",
		zap.String("scene", s.Name), zap.Int("issues", len(res.Issues)), zap.Bool("failed", res.Err != nil))
	return res
}
