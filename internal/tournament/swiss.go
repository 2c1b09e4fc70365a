package tournament

import (
	"fmt"
	"sort"

	"evoarena/internal/ga"
	"evoarena/internal/random"
)

// SwissTournament plays Rounds rounds where genotypes with similar
// scores meet each other. The first round is paired at random.
type SwissTournament struct {
	cfg  Config
	opts Options
}

type pairing struct {
	p1, p2 int
}

// pairingLog remembers which genotypes already met
type pairingLog struct {
	// log[a] lists every b > a that was paired with a
	log [][]int
}

func newPairingLog(size int) *pairingLog {
	return &pairingLog{log: make([][]int, size)}
}

func (l *pairingLog) record(a, b int) {
	ga.Check(a != b, "genotype %d paired with itself", a)
	if a > b {
		a, b = b, a
	}
	l.log[a] = append(l.log[a], b)
}

func (l *pairingLog) paired(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	for _, p := range l.log[a] {
		if p == b {
			return true
		}
	}
	return false
}

func (t *SwissTournament) EvaluatePopulation(pop *ga.Population, rules GameRules) error {
	n := pop.Size()
	if n < 2 || n%2 != 0 {
		return ga.InvalidConfig("population.size", "swiss tournament needs an even population size, got %d", n)
	}

	pop.ResetFitness()

	games := t.cfg.Rounds
	if t.cfg.Rematches {
		games *= 2
	}
	scale := 1.0 / float64(games)

	stage := t.opts.Progress.BeginStage("Tournament", t.cfg.Rounds*n/2)
	defer stage.Done()

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	log := newPairingLog(n)

	for round := 0; round < t.cfg.Rounds; round++ {
		phase := t.opts.Seeds.Seed()

		if round == 0 {
			rng := random.NewRand(phase)
			rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })
		} else {
			sort.SliceStable(order, func(a, b int) bool {
				return pop.Fitness(order[a]) > pop.Fitness(order[b])
			})
		}

		pairings, rematches := pairRound(order, log)
		t.opts.Logger.Debug("swiss round paired",
			"round", round,
			"pairings", len(pairings),
			"unintentional_rematches", rematches)

		err := t.opts.Pool.ForEach(len(pairings), func(index int) error {
			p := pairings[index]
			g1 := pop.Genotype(p.p1)
			g2 := pop.Genotype(p.p2)

			s := play(rules, g1, g2)
			pop.AddFitness(p.p1, s.Player1*scale)
			pop.AddFitness(p.p2, s.Player2*scale)

			if t.cfg.Rematches {
				s = play(rules, g2, g1)
				pop.AddFitness(p.p2, s.Player1*scale)
				pop.AddFitness(p.p1, s.Player2*scale)
			}

			stage.Report(1)
			return nil
		})
		if err != nil {
			return fmt.Errorf("swiss tournament round %d: %w", round, err)
		}
	}

	ties := 0
	for i := 1; i < n; i++ {
		if pop.Fitness(i) == pop.Fitness(i-1) {
			ties++
		}
	}
	t.opts.Logger.Debug("swiss tournament finished", "rounds", t.cfg.Rounds, "ties", ties)
	return nil
}

// pairRound pairs neighbours in order, preferring the first opponent not met
// before. order is permuted in place. The weaker player of each pair moves first.
func pairRound(order []int, log *pairingLog) ([]pairing, int) {
	pairings := make([]pairing, 0, len(order)/2)
	rematches := 0

	for i := 0; i < len(order); {
		p1 := order[i]
		i++

		fresh := false
		for j := i; j < len(order); j++ {
			if !log.paired(p1, order[j]) {
				order[i], order[j] = order[j], order[i]
				fresh = true
				break
			}
		}
		p2 := order[i]
		i++

		pairings = append(pairings, pairing{p1: p2, p2: p1})
		if fresh {
			log.record(p1, p2)
		} else {
			rematches++
		}
	}
	return pairings, rematches
}
