package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
)

// Evaluator corre los calculadores, agrega y compara contra el umbral.
type Evaluator struct {
	calcs     []Calculator
	agg       *Aggregator
	threshold float64

	// MaxConcurrency acota cuántos calculadores corren en paralelo.
	// Los calculadores leen del history store (posible I/O), así que se
	// lanzan con errgroup. Default: 4.
	maxConcurrency int
}

// NewEvaluator valida el umbral (debe estar en [0,1]).
func NewEvaluator(calcs []Calculator, agg *Aggregator, threshold float64) (*Evaluator, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("risk: threshold %v out of [0,1]", threshold)
	}
	if agg == nil {
		agg, _ = NewAggregator(StrategyMean, nil)
	}
	return &Evaluator{calcs: calcs, agg: agg, threshold: threshold, maxConcurrency: 4}, nil
}

// Evaluate puntúa el intento. Un calculador que falla (history store caído,
// señal irrecuperable) contribuye MaxScore: el camino de riesgo es fail
// closed. El único error posible es la cancelación del contexto.
func (e *Evaluator) Evaluate(ctx context.Context, p authn.Principal, a Attempt) (Assessment, error) {
	log := logger.Named("risk.evaluator")

	scores := make(map[string]float64, len(e.calcs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)
	for _, c := range e.calcs {
		c := c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := c.Score(gctx, p, a)
			if err != nil {
				log.Warn("calculator failed, substituting max risk",
					logger.Calculator(c.Name()), logger.PrincipalID(p.ID), logger.Err(err))
				s = MaxScore
			}
			mu.Lock()
			scores[c.Name()] = clamp(s)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Assessment{}, err
	}

	final := e.agg.Aggregate(scores)
	as := Assessment{
		ID:            uuid.NewString(),
		PrincipalID:   p.ID,
		Score:         final,
		PerCalculator: scores,
		Threshold:     e.threshold,
		Triggered:     final >= e.threshold,
		EvaluatedAt:   time.Now().UTC(),
	}
	log.Debug("risk evaluated",
		logger.PrincipalID(p.ID), logger.Score(final),
		logger.Threshold(e.threshold), logger.Any("per_calculator", scores))
	return as, nil
}
