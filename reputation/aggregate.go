package reputation

import (
	"github.com/solanahub/solblaze-detox/config"
)

const (
	HighCommissionWarning = "High commission rate"
	SandwichWarning       = "MEV sandwiching detected"
	DefaultPolicyWarning  = "Slow block producers"
)

// policyWarnings maps a policy name to its warning text. Policies missing
// here fall back to DefaultPolicyWarning.
var policyWarnings = map[string]string{
	config.SandwicherList: SandwichWarning,
}

func PolicyWarning(policy string) string {
	if warning, ok := policyWarnings[policy]; ok {
		return warning
	}
	return DefaultPolicyWarning
}

// Aggregate merges the master feed, the policy lists and the commission rule
// into a bad registry with one verdict per vote account, and derives the good
// registry from the master validators that were not flagged. The inputs are
// not modified and the output order only depends on the input order.
func Aggregate(master []*FeedValidator, lists []*PolicyList, highCommission float64) *Registry {
	byIdentity := make(map[string]*FeedValidator, len(master))
	for _, validator := range master {
		if _, ok := byIdentity[validator.Identity]; !ok {
			byIdentity[validator.Identity] = validator
		}
	}
	verdicts := make([]*Verdict, 0)
	for _, list := range lists {
		if list == nil || list.Policy == nil {
			continue
		}
		verdicts = append(verdicts, policyVerdicts(list, byIdentity)...)
	}
	verdicts = append(verdicts, highCommissionVerdicts(master, highCommission)...)
	bad := Merge(verdicts)
	return &Registry{
		Bad:  bad,
		Good: goodVerdicts(master, bad),
	}
}

func policyVerdicts(list *PolicyList, byIdentity map[string]*FeedValidator) []*Verdict {
	warning := PolicyWarning(list.Policy.Name)
	verdicts := make([]*Verdict, 0, len(list.Identities))
	for _, identity := range list.Identities {
		verdict := &Verdict{
			Policy:  list.Policy.Name,
			Warning: warning,
		}
		// a miss keeps the verdict with no name and no vote account
		if validator, ok := byIdentity[identity]; ok {
			verdict.Name = nameOrNil(validator.Name)
			verdict.VoteAccount = validator.VoteIdentity
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts
}

func highCommissionVerdicts(master []*FeedValidator, highCommission float64) []*Verdict {
	verdicts := make([]*Verdict, 0)
	for _, validator := range master {
		if validator.Commission <= highCommission {
			continue
		}
		verdicts = append(verdicts, &Verdict{
			Name:        nameOrNil(validator.Name),
			VoteAccount: validator.VoteIdentity,
			Policy:      config.HighCommission,
			Warning:     HighCommissionWarning,
		})
	}
	return verdicts
}

// Merge folds verdicts by vote account in order of first appearance. Later
// occurrences append their policy with ", " and their warning with "; ".
// Verdicts without a vote account are never merged with each other.
func Merge(verdicts []*Verdict) []*Verdict {
	merged := make([]*Verdict, 0, len(verdicts))
	index := make(map[string]*Verdict, len(verdicts))
	for _, verdict := range verdicts {
		if verdict.VoteAccount != "" {
			if existing, ok := index[verdict.VoteAccount]; ok {
				existing.Policy = existing.Policy + ", " + verdict.Policy
				existing.Warning = existing.Warning + "; " + verdict.Warning
				continue
			}
		}
		acc := *verdict
		merged = append(merged, &acc)
		if acc.VoteAccount != "" {
			index[acc.VoteAccount] = &acc
		}
	}
	return merged
}

func goodVerdicts(master []*FeedValidator, bad []*Verdict) []*Verdict {
	excluded := make(map[string]bool, len(bad)+len(master))
	for _, verdict := range bad {
		excluded[verdict.VoteAccount] = true
	}
	good := make([]*Verdict, 0, len(master))
	for _, validator := range master {
		if excluded[validator.VoteIdentity] {
			continue
		}
		excluded[validator.VoteIdentity] = true
		good = append(good, &Verdict{
			Name:        nameOrNil(validator.Name),
			VoteAccount: validator.VoteIdentity,
		})
	}
	return good
}
