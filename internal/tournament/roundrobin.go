package tournament

import (
	"fmt"

	"evoarena/internal/ga"
)

// RoundRobinTournament plays every genotype against every other genotype
type RoundRobinTournament struct {
	cfg  Config
	opts Options
}

func (t *RoundRobinTournament) EvaluatePopulation(pop *ga.Population, rules GameRules) error {
	n := pop.Size()
	if n < 2 {
		return ga.InvalidConfig("population.size", "round robin tournament needs at least 2 genotypes, got %d", n)
	}

	stage := t.opts.Progress.BeginStage("Tournament", n)
	defer stage.Done()

	err := t.opts.Pool.ForEach(n, func(index int) error {
		genotype := pop.Genotype(index)

		score := 0.0
		games := 0
		for opponent := 0; opponent < n; opponent++ {
			if opponent == index {
				continue
			}
			opponentGenotype := pop.Genotype(opponent)

			score += play(rules, genotype, opponentGenotype).Player1
			games++

			if t.cfg.Rematches {
				score += play(rules, opponentGenotype, genotype).Player2
				games++
			}
		}

		pop.SetFitness(index, score/float64(games))
		stage.Report(1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("round robin tournament: %w", err)
	}
	return nil
}
