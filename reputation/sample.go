package reputation

import (
	"math/rand"
	"strings"
)

// SamplePerPolicy keeps at most max randomly chosen bad verdicts per policy
// string and shuffles the result. It is a display helper; verdicts without a
// policy are ignored.
func SamplePerPolicy(verdicts []*Verdict, max int, r *rand.Rand) []*Verdict {
	groups := make(map[string][]*Verdict)
	order := make([]string, 0)
	for _, verdict := range verdicts {
		if strings.TrimSpace(verdict.Policy) == "" {
			continue
		}
		if _, ok := groups[verdict.Policy]; !ok {
			order = append(order, verdict.Policy)
		}
		groups[verdict.Policy] = append(groups[verdict.Policy], verdict)
	}
	sampled := make([]*Verdict, 0)
	for _, policy := range order {
		group := shuffle(groups[policy], r)
		if max > 0 && len(group) > max {
			group = group[:max]
		}
		sampled = append(sampled, group...)
	}
	return shuffle(sampled, r)
}

func shuffle(verdicts []*Verdict, r *rand.Rand) []*Verdict {
	shuffled := make([]*Verdict, len(verdicts))
	copy(shuffled, verdicts)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
