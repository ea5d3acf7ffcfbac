package stake

import (
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/solanahub/solblaze-detox/reputation"
)

const (
	ScoreGood = "good"
	ScoreBad  = "bad"

	InitializedState = "Initialized"
	UnknownValidator = "Unknown Validator"
)

type RawAccount struct {
	PubKey   solana.PublicKey
	Lamports uint64
	// Layout is nil when the account data holds no stake info.
	Layout *StakeLayout
}

type ValidatorInfo struct {
	VoteAccount string `json:"voteAccount"`
	Score       string `json:"score"`
	Reason      string `json:"reason"`
	Name        string `json:"name"`
	Warning     string `json:"warning"`
}

type View struct {
	Address       string         `json:"address"`
	Balance       float64        `json:"balance"`
	Lamports      uint64         `json:"-"`
	IsActive      bool           `json:"isActive"`
	ValidatorInfo *ValidatorInfo `json:"validatorInfo,omitempty"`
	State         string         `json:"state"`
}

func (v *View) Score() string {
	if v.ValidatorInfo == nil {
		return ""
	}
	return v.ValidatorInfo.Score
}

func (v *View) IsBad() bool {
	return v.Score() == ScoreBad
}

// BalanceUi is the balance in SOL with five decimals.
func (v *View) BalanceUi() string {
	return decimal.NewFromInt(int64(v.Lamports)).Div(decimal.NewFromInt(program.LamportsPerSol)).StringFixed(5)
}

// Classify builds the view of one stake account against the combined
// registry. It returns nil for accounts without stake info.
func Classify(raw *RawAccount, registry []*reputation.Verdict, currentEpoch uint64) *View {
	return classify(raw, func(voteAccount string) *reputation.Verdict {
		for _, verdict := range registry {
			if verdict.VoteAccount == voteAccount {
				return verdict
			}
		}
		return nil
	}, currentEpoch)
}

// ClassifyAll classifies accounts, drops the ones without stake info or not
// yet active, and sorts the rest with Sort.
func ClassifyAll(raws []*RawAccount, registry []*reputation.Verdict, currentEpoch uint64) []*View {
	index := make(map[string]*reputation.Verdict, len(registry))
	for _, verdict := range registry {
		if _, ok := index[verdict.VoteAccount]; !ok {
			index[verdict.VoteAccount] = verdict
		}
	}
	lookup := func(voteAccount string) *reputation.Verdict {
		return index[voteAccount]
	}
	views := make([]*View, 0, len(raws))
	for _, raw := range raws {
		view := classify(raw, lookup, currentEpoch)
		if view == nil || !view.IsActive {
			continue
		}
		views = append(views, view)
	}
	Sort(views)
	return views
}

// Sort puts accounts delegated to bad validators first, then orders each
// group by descending balance.
func Sort(views []*View) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.IsBad() != b.IsBad() {
			return a.IsBad()
		}
		return a.Balance > b.Balance
	})
}

func classify(raw *RawAccount, lookup func(string) *reputation.Verdict, currentEpoch uint64) *View {
	if raw == nil || raw.Layout == nil {
		return nil
	}
	view := &View{
		Address:  raw.PubKey.String(),
		Balance:  float64(raw.Lamports) / program.LamportsPerSol,
		Lamports: raw.Lamports,
		State:    InitializedState,
	}
	delegation := raw.Layout.Delegated()
	if delegation == nil {
		return view
	}
	view.IsActive = delegation.ActivationEpoch < currentEpoch
	verdict := lookup(delegation.VoterPubkey.String())
	if verdict == nil {
		return view
	}
	info := &ValidatorInfo{
		VoteAccount: verdict.VoteAccount,
		Score:       ScoreGood,
		Name:        verdict.DisplayName(),
		Warning:     verdict.Warning,
	}
	if verdict.IsBad() {
		info.Score = ScoreBad
		info.Reason = verdict.Policy
	}
	if info.Name == "" {
		info.Name = UnknownValidator
	}
	view.ValidatorInfo = info
	view.State = verdict.Warning
	return view
}
