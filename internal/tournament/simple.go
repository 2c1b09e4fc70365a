package tournament

import (
	"fmt"

	"evoarena/internal/ga"
	"evoarena/internal/random"
)

// SimpleTournament pairs every genotype with EvalGames random opponents.
// Only the evaluated genotype's fitness is updated, so each task writes a
// single slot.
type SimpleTournament struct {
	cfg  Config
	opts Options
}

func (t *SimpleTournament) EvaluatePopulation(pop *ga.Population, rules GameRules) error {
	n := pop.Size()
	if n < 2 {
		return ga.InvalidConfig("population.size", "simple tournament needs at least 2 genotypes, got %d", n)
	}

	stage := t.opts.Progress.BeginStage("Tournament", n)
	defer stage.Done()

	phase := t.opts.Seeds.Seed()
	err := t.opts.Pool.ForEach(n, func(index int) error {
		rng := random.NewRand(random.Derive(phase, index))
		genotype := pop.Genotype(index)

		score := 0.0
		games := 0
		for i := 0; i < t.cfg.EvalGames; i++ {
			// pick a random (but different) opponent
			opponent := rng.IntN(n)
			for opponent == index {
				opponent = rng.IntN(n)
			}
			opponentGenotype := pop.Genotype(opponent)

			score += play(rules, genotype, opponentGenotype).Player1
			games++

			if t.cfg.Rematches {
				score += play(rules, opponentGenotype, genotype).Player2
				games++
			}
		}

		// the mean keeps fitness comparable across eval_games settings
		pop.SetFitness(index, score/float64(games))
		stage.Report(1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("simple tournament: %w", err)
	}
	return nil
}
