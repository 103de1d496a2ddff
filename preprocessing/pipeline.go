package preprocessing

import (
	"context"
	"time"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/core/model"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Column names of the passenger schema.
const (
	ColName       = "Name"
	ColSex        = "Sex"
	ColAge        = "Age"
	ColSibSp      = "SibSp"
	ColParch      = "Parch"
	ColTicket     = "Ticket"
	ColFare       = "Fare"
	ColEmbarked   = "Embarked"
	ColTitle      = "Title"
	ColAgeBand    = "AgeBand"
	ColFamilySize = "FamilySize"
	ColIsAlone    = "IsAlone"
	ColFareBand   = "FareBand"
)

// Fixed column lists and band counts of the feature pipeline.
var (
	IdentifierColumns  = []string{"PassengerId", "Cabin"}
	CategoricalColumns = []string{ColSex, ColEmbarked, ColTitle}
	RedundantColumns   = []string{ColName, ColAge, ColFare, ColTicket}
)

const (
	AgeBands  = 10
	FareBands = 4
)

// Options are the pipeline switches persisted with a trained model.
type Options struct {
	// Parallel runs independent derivation branches concurrently.
	Parallel bool
	// AgeGlobalFallback fills ages left missing by the grouped imputation
	// with the global mean.
	AgeGlobalFallback bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParallel enables concurrent execution of independent branches.
func WithParallel(enabled bool) Option {
	return func(p *Pipeline) { p.opts.Parallel = enabled }
}

// WithAgeGlobalFallback enables the global-mean pass after grouped Age
// imputation.
func WithAgeGlobalFallback(enabled bool) Option {
	return func(p *Pipeline) { p.opts.AgeGlobalFallback = enabled }
}

// WithOptions sets all switches at once.
func WithOptions(o Options) Option {
	return func(p *Pipeline) { p.opts = o }
}

// WithEncoder installs an already fitted encoder, typically one loaded from
// a model artifact, so Transform can run without Fit.
func WithEncoder(enc *OneHotEncoder) Option {
	return func(p *Pipeline) { p.encoder = enc }
}

// Pipeline turns a raw passenger table into a numeric feature table.
//
// Steps, in order:
//  1. drop PassengerId and Cabin
//  2. derive Title from Name
//  3. normalize Title through TitleGroups
//  4. impute Age with the mean Age of its Title group
//  5. impute Embarked with its most frequent value
//  6. bin Age into 10 bands as AgeBand
//  7. FamilySize = SibSp + Parch + 1
//  8. IsAlone = 1 if FamilySize == 1 else 0
//  9. bin Fare into 4 bands as FareBand
//  10. one-hot encode Sex, Embarked and Title
//  11. drop Name, Age, Fare and Ticket
//
// Steps 2-9 form four independent branches (Title/Age/AgeBand, Embarked,
// FamilySize/IsAlone, FareBand). With WithParallel they run concurrently
// and are merged before encoding; the output is identical to the
// sequential run.
type Pipeline struct {
	opts    Options
	logger  log.Logger
	encoder *OneHotEncoder
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(logger log.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = log.Nop()
	}
	p := &Pipeline{logger: logger.With(log.ComponentKey, "preprocessing")}
	for _, opt := range opts {
		opt(p)
	}
	if p.encoder == nil {
		p.encoder = NewOneHotEncoder(p.logger, CategoricalColumns...)
	} else {
		p.encoder.SetLogger(p.logger)
	}
	return p
}

var _ model.Transformer = (*Pipeline)(nil)

// Options returns the pipeline switches.
func (p *Pipeline) Options() Options { return p.opts }

// Encoder returns the categorical encoder; after Fit it holds the training
// vocabulary.
func (p *Pipeline) Encoder() *OneHotEncoder { return p.encoder }

// Fit learns the categorical vocabulary from t.
func (p *Pipeline) Fit(t *frame.Table) error {
	derived, err := p.derive(t)
	if err != nil {
		return err
	}
	return p.encoder.Fit(derived)
}

// Transform applies the pipeline with the fitted vocabulary.
func (p *Pipeline) Transform(t *frame.Table) (*frame.Table, error) {
	if p.encoder.State == nil || !p.encoder.State.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}
	start := time.Now()
	derived, err := p.derive(t)
	if err != nil {
		return nil, err
	}
	return p.finish(derived, log.OperationTransform, start)
}

// FitTransform learns the vocabulary from t and transforms t.
func (p *Pipeline) FitTransform(t *frame.Table) (*frame.Table, error) {
	start := time.Now()
	derived, err := p.derive(t)
	if err != nil {
		return nil, err
	}
	if err := p.encoder.Fit(derived); err != nil {
		return nil, err
	}
	return p.finish(derived, log.OperationFitTransform, start)
}

// PreprocessData runs the pipeline with a vocabulary taken from t itself.
func PreprocessData(t *frame.Table, logger log.Logger) (*frame.Table, error) {
	return NewPipeline(logger).FitTransform(t)
}

type step struct {
	name   string
	branch string
	column string
	run    func(*frame.Table) (*frame.Table, error)
}

// steps lists steps 2-9 in pipeline order.
func (p *Pipeline) steps() []step {
	steps := []step{
		{name: "extract_title", branch: "title_age", column: ColTitle, run: func(t *frame.Table) (*frame.Table, error) {
			return DeriveColumn(t, ColName, ColTitle, extractTitleValue)
		}},
		{name: "normalize_title", branch: "title_age", column: ColTitle, run: func(t *frame.Table) (*frame.Table, error) {
			return DeriveColumn(t, ColTitle, ColTitle, normalizeTitleValue)
		}},
		{name: "impute_age_by_title", branch: "title_age", column: ColAge, run: p.imputeAge},
	}
	if p.opts.AgeGlobalFallback {
		steps = append(steps, step{name: "impute_age_global", branch: "title_age", column: ColAge, run: func(t *frame.Table) (*frame.Table, error) {
			return ImputeGlobal(t, ColAge, StrategyMean)
		}})
	}
	return append(steps,
		step{name: "impute_embarked", branch: "embarked", column: ColEmbarked, run: func(t *frame.Table) (*frame.Table, error) {
			return ImputeGlobal(t, ColEmbarked, StrategyMostFrequent)
		}},
		step{name: "age_band", branch: "title_age", column: ColAgeBand, run: func(t *frame.Table) (*frame.Table, error) {
			return BinColumn(t, ColAge, ColAgeBand, AgeBands)
		}},
		step{name: "family_size", branch: "family", column: ColFamilySize, run: func(t *frame.Table) (*frame.Table, error) {
			return SumColumns(t, []string{ColSibSp, ColParch}, ColFamilySize, 1)
		}},
		step{name: "is_alone", branch: "family", column: ColIsAlone, run: func(t *frame.Table) (*frame.Table, error) {
			return DeriveColumn(t, ColFamilySize, ColIsAlone, isAlone)
		}},
		step{name: "fare_band", branch: "fare", column: ColFareBand, run: func(t *frame.Table) (*frame.Table, error) {
			return BinColumn(t, ColFare, ColFareBand, FareBands)
		}},
	)
}

func (p *Pipeline) imputeAge(t *frame.Table) (*frame.Table, error) {
	out, err := ImputeGroupedMean(t, ColAge, ColTitle)
	if err != nil {
		return nil, err
	}
	if !p.opts.AgeGlobalFallback {
		if c, _ := out.Column(ColAge); c.MissingCount() > 0 {
			p.logger.Warn("Age still missing after grouped imputation",
				log.ColumnKey, ColAge,
				log.MissingKey, c.MissingCount(),
			)
		}
	}
	return out, nil
}

func isAlone(v frame.Value) (frame.Value, error) {
	if v.IsMissing() {
		return frame.Missing(), nil
	}
	f, ok := v.Float()
	if !ok {
		return frame.Value{}, errors.Newf("family size must be numeric, got %q", v.String())
	}
	if f == 1 {
		return frame.Num(1), nil
	}
	return frame.Num(0), nil
}

// derive runs steps 1-9.
func (p *Pipeline) derive(t *frame.Table) (*frame.Table, error) {
	p.logger.Debug("Preprocessing data",
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, t.NumCols(),
	)
	p.logStep("drop_identifiers", "", "")
	base, err := DropColumns(t, IdentifierColumns...)
	if err != nil {
		return nil, err
	}

	steps := p.steps()
	if !p.opts.Parallel {
		out := base
		for _, s := range steps {
			p.logStep(s.name, s.branch, s.column)
			if out, err = s.run(out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return p.deriveParallel(base, steps)
}

// deriveParallel runs each branch on its own goroutine starting from base,
// then copies the branch outputs into base in pipeline order.
func (p *Pipeline) deriveParallel(base *frame.Table, steps []step) (*frame.Table, error) {
	var order []string
	byBranch := make(map[string][]step)
	for _, s := range steps {
		if _, ok := byBranch[s.branch]; !ok {
			order = append(order, s.branch)
		}
		byBranch[s.branch] = append(byBranch[s.branch], s)
	}

	results := make([]*frame.Table, len(order))
	g, ctx := errgroup.WithContext(context.Background())
	for i, name := range order {
		i, branch := i, byBranch[name]
		g.Go(func() error {
			out := base
			for _, s := range branch {
				if err := ctx.Err(); err != nil {
					return err
				}
				p.logStep(s.name, s.branch, s.column)
				var err error
				if out, err = s.run(out); err != nil {
					return err
				}
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owner := make(map[string]int)
	for i, name := range order {
		for _, s := range byBranch[name] {
			owner[s.column] = i
		}
	}
	merged := base
	written := make(map[string]bool)
	for _, s := range steps {
		if written[s.column] {
			continue
		}
		written[s.column] = true
		c, err := results[owner[s.column]].Column(s.column)
		if err != nil {
			return nil, err
		}
		if merged, err = merged.With(c); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// finish runs steps 10 and 11.
func (p *Pipeline) finish(derived *frame.Table, op string, start time.Time) (*frame.Table, error) {
	p.logStep("one_hot_encode", "", "")
	encoded, err := p.encoder.Transform(derived)
	if err != nil {
		return nil, err
	}
	p.logStep("drop_redundant", "", "")
	out, err := DropColumns(encoded, RedundantColumns...)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Preprocessing finished",
		log.OperationKey, op,
		log.SamplesKey, out.NumRows(),
		log.FeaturesKey, out.NumCols(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (p *Pipeline) logStep(name, branch, column string) {
	fields := []any{log.StepKey, name}
	if branch != "" {
		fields = append(fields, log.BranchKey, branch)
	}
	if column != "" {
		fields = append(fields, log.ColumnKey, column)
	}
	p.logger.Debug("Pipeline step", fields...)
}
