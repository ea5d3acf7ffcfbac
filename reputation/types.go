package reputation

import "github.com/solanahub/solblaze-detox/config"

// FeedValidator is one record of the stakewiz validator list. Only identity,
// vote_identity, name and commission take part in classification.
type FeedValidator struct {
	Rank           int     `json:"rank"`
	Identity       string  `json:"identity"`
	VoteIdentity   string  `json:"vote_identity"`
	Name           string  `json:"name"`
	Commission     float64 `json:"commission"`
	ActivatedStake float64 `json:"activated_stake"`
	Delinquent     bool    `json:"delinquent"`
	SkipRate       float64 `json:"skip_rate"`
	IsJito         bool    `json:"is_jito"`
	WizScore       float64 `json:"wiz_score"`
}

// PolicyList is a resolved validators.app policy: the identity keys it flags.
type PolicyList struct {
	Policy     *config.Policy
	Identities []string
}

type Verdict struct {
	Name        *string `json:"name"`
	VoteAccount string  `json:"voteAccount"`
	Policy      string  `json:"policy"`
	Warning     string  `json:"warning"`
}

func (v *Verdict) IsBad() bool {
	return v.Policy != ""
}

func (v *Verdict) DisplayName() string {
	if v.Name == nil {
		return ""
	}
	return *v.Name
}

type Registry struct {
	Bad  []*Verdict
	Good []*Verdict
}

// All returns the combined registry, bad verdicts first.
func (r *Registry) All() []*Verdict {
	all := make([]*Verdict, 0, len(r.Bad)+len(r.Good))
	all = append(all, r.Bad...)
	all = append(all, r.Good...)
	return all
}

func nameOrNil(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
