package risk

import "fmt"

// Strategy define cómo se combinan los scores individuales.
type Strategy string

const (
	// StrategyMean promedia todas las contribuciones (default).
	StrategyMean Strategy = "mean"
	// StrategyMax toma la señal más riesgosa.
	StrategyMax Strategy = "max"
	// StrategyWeighted promedia ponderando por calculador.
	StrategyWeighted Strategy = "weighted"
)

// Aggregator combina scores por calculador en un score final [0,1].
type Aggregator struct {
	strategy Strategy
	weights  map[string]float64
}

// NewAggregator valida la estrategia. Weights solo aplica a "weighted";
// un calculador sin peso configurado pesa 1.
func NewAggregator(strategy Strategy, weights map[string]float64) (*Aggregator, error) {
	switch strategy {
	case "", StrategyMean:
		return &Aggregator{strategy: StrategyMean}, nil
	case StrategyMax:
		return &Aggregator{strategy: StrategyMax}, nil
	case StrategyWeighted:
		return &Aggregator{strategy: StrategyWeighted, weights: weights}, nil
	default:
		return nil, fmt.Errorf("risk: unknown aggregation strategy %q", strategy)
	}
}

// Aggregate combina las contribuciones. Sin contribuciones retorna MaxScore:
// no poder puntuar nada es en sí la señal más riesgosa.
func (a *Aggregator) Aggregate(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return MaxScore
	}
	switch a.strategy {
	case StrategyMax:
		max := 0.0
		for _, s := range scores {
			if s > max {
				max = s
			}
		}
		return clamp(max)
	case StrategyWeighted:
		var sum, wsum float64
		for name, s := range scores {
			w := 1.0
			if cw, ok := a.weights[name]; ok {
				w = cw
			}
			sum += s * w
			wsum += w
		}
		if wsum == 0 {
			return MaxScore
		}
		return clamp(sum / wsum)
	default:
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return clamp(sum / float64(len(scores)))
	}
}
