package summon

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrTargetUnreachable is returned when a trial never reaches the target tier.
var ErrTargetUnreachable = errors.New("target rarity unreachable")

// ErrDrawBudgetExceeded is returned when RunMonteCarlo uses up its overall draw budget.
var ErrDrawBudgetExceeded = errors.New("monte carlo draw budget exceeded")

// MaxTrialDraws bounds a single RunMonteCarlo trial.
const MaxTrialDraws = 100000

// ctxCheckEvery is how many rolls run between context checks.
const ctxCheckEvery = 4096

// SimStats summarizes simulation results.
type SimStats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) SimStats {
	n := len(xs)
	if n == 0 {
		return SimStats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return SimStats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// Distribution is the observed share of each outcome over a run of rolls.
// Drawn is measured before the grade cap, Rarities after it; Capped is the
// share of rolls the cap lowered.
type Distribution struct {
	Trials   int                `json:"trials"`
	Drawn    map[Rarity]float64 `json:"drawn"`
	Rarities map[Rarity]float64 `json:"rarities"`
	Grades   map[string]float64 `json:"grades"`
	Capped   float64            `json:"cappedShare"`
}

// SimulateRarities rolls trials times at level and reports frequencies.
func SimulateRarities(cfg *Config, level, trials int, rng RandomSource) (Distribution, error) {
	if err := cfg.check(); err != nil {
		return Distribution{}, err
	}
	d := Distribution{
		Trials:   trials,
		Drawn:    make(map[Rarity]float64),
		Rarities: make(map[Rarity]float64),
		Grades:   make(map[string]float64),
	}
	if trials <= 0 {
		return d, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	level = normalizeLevel(level)

	capped := 0
	for i := 0; i < trials; i++ {
		r := roll(cfg, level, rng)
		d.Drawn[r.Drawn]++
		d.Rarities[r.Potential]++
		d.Grades[r.Grade]++
		if r.Potential != r.Drawn {
			capped++
		}
	}
	n := float64(trials)
	for k := range d.Drawn {
		d.Drawn[k] /= n
	}
	for k := range d.Rarities {
		d.Rarities[k] /= n
	}
	for k := range d.Grades {
		d.Grades[k] /= n
	}
	d.Capped = float64(capped) / n
	return d, nil
}

// simulateOne counts rolls until the capped rarity reaches target, rolling
// at most limit times.
func simulateOne(ctx context.Context, cfg *Config, level int, target Rarity, limit int, rng RandomSource) (int, error) {
	want := target.Ordinal()
	for draws := 1; draws <= limit; draws++ {
		if draws%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if roll(cfg, level, rng).Potential.Ordinal() >= want {
			return draws, nil
		}
	}
	if limit < MaxTrialDraws {
		return 0, ErrDrawBudgetExceeded
	}
	return 0, fmt.Errorf("%w: %s after %d draws", ErrTargetUnreachable, target, MaxTrialDraws)
}

// RunMonteCarlo repeats trials and returns summary stats of the number of
// summons needed to obtain a soldier whose potential is at least target.
// maxDraws caps the rolls summed over all trials; <= 0 leaves only the
// per-trial MaxTrialDraws bound. It stops early with ctx.Err().
func RunMonteCarlo(ctx context.Context, cfg *Config, level int, target Rarity, trials, maxDraws int, rng RandomSource) (SimStats, error) {
	if err := cfg.check(); err != nil {
		return SimStats{}, err
	}
	if !target.Valid() {
		return SimStats{}, fmt.Errorf("%w: unknown rarity %q", ErrConfiguration, target)
	}
	if trials <= 0 {
		return SimStats{}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	level = normalizeLevel(level)

	samples := make([]int, trials)
	used := 0
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return SimStats{}, err
		}
		limit := MaxTrialDraws
		if maxDraws > 0 {
			limit = min(limit, maxDraws-used)
			if limit <= 0 {
				return SimStats{}, fmt.Errorf("%w: %d draws after %d of %d trials", ErrDrawBudgetExceeded, used, i, trials)
			}
		}
		v, err := simulateOne(ctx, cfg, level, target, limit, rng)
		if errors.Is(err, ErrDrawBudgetExceeded) {
			return SimStats{}, fmt.Errorf("%w: %d draws after %d of %d trials", ErrDrawBudgetExceeded, maxDraws, i, trials)
		}
		if err != nil {
			return SimStats{}, err
		}
		used += v
		samples[i] = v
	}
	return calcStats(samples), nil
}
