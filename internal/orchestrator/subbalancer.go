package orchestrator

import "hunterproxy/internal/model"

// SubBalancer names an additional balancer instance selected by a
// predicate over each BenchResult's PS label, generalizing the
// "secondary label-matched balancer" behavior to any number of named,
// predicate-selected instances rather than one fixed second one.
type SubBalancer struct {
	Name      string
	Predicate func(ps string) bool
	Port      int
}

func splitByPredicate(results []model.BenchResult, predicate func(string) bool) (matched, rest []model.BenchResult) {
	for _, r := range results {
		if predicate(r.PS) {
			matched = append(matched, r)
		} else {
			rest = append(rest, r)
		}
	}
	return matched, rest
}
