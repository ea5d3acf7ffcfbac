package reputation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/utils"
)

var ErrMissingToken = errors.New("validators.app api token is not configured")

// Source provides the upstream validator feeds.
type Source interface {
	Validators(ctx context.Context) ([]*FeedValidator, error)
	PolicyList(ctx context.Context, policy *config.Policy) (*PolicyList, error)
}

type policyResponse struct {
	Pubkey          string   `json:"pubkey"`
	Name            string   `json:"name"`
	Strategy        string   `json:"strategy"`
	Validators      []string `json:"validators"`
	TotalValidators int      `json:"total_validators"`
}

// Feed reads the stakewiz validator list and validators.app policy lists.
type Feed struct {
	client      *http.Client
	stakeWizUrl string
	policyUrl   string
	token       string
}

func NewFeed(cfg *config.Config) *Feed {
	timeout := time.Duration(cfg.FeedTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Feed{
		client:      &http.Client{Timeout: timeout},
		stakeWizUrl: cfg.StakeWizUrl,
		policyUrl:   strings.TrimRight(cfg.PolicyUrl, "/"),
		token:       cfg.PolicyToken,
	}
}

func (f *Feed) Validators(ctx context.Context) ([]*FeedValidator, error) {
	validators := make([]*FeedValidator, 0)
	if err := utils.GetJson(ctx, f.client, f.stakeWizUrl, nil, &validators); err != nil {
		return nil, err
	}
	return validators, nil
}

func (f *Feed) PolicyList(ctx context.Context, policy *config.Policy) (*PolicyList, error) {
	if f.token == "" {
		return nil, ErrMissingToken
	}
	url := fmt.Sprintf("%s/%s.json", f.policyUrl, policy.Pubkey)
	var resp policyResponse
	headers := map[string]string{"Token": f.token}
	if err := utils.GetJson(ctx, f.client, url, headers, &resp); err != nil {
		return nil, err
	}
	return &PolicyList{
		Policy:     policy,
		Identities: resp.Validators,
	}, nil
}
