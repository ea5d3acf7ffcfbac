package stake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/solanahub/solblaze-detox/backend"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/solanahub/solblaze-detox/reputation"
	"github.com/solanahub/solblaze-detox/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	accounts   []*backend.Account
	epoch      uint64
	epochErr   error
	accountErr error
}

func (c *fakeChain) StakeAccounts(ctx context.Context, owner solana.PublicKey) ([]*backend.Account, error) {
	if c.accountErr != nil {
		return nil, c.accountErr
	}
	return c.accounts, nil
}

func (c *fakeChain) CurrentEpoch(ctx context.Context) (uint64, error) {
	return c.epoch, c.epochErr
}

func chainAccount(t *testing.T, owner solana.PublicKey, lamports uint64, data []byte) *backend.Account {
	t.Helper()
	raw := fmt.Sprintf(`{"lamports":%d,"owner":%q,"data":[%q,"base64"],"executable":false,"rentEpoch":0}`,
		lamports, owner.String(), base64.StdEncoding.EncodeToString(data))
	account := new(rpc.Account)
	require.NoError(t, json.Unmarshal([]byte(raw), account))
	return &backend.Account{PubKey: newKey(t), Account: account}
}

func TestLister_List(t *testing.T) {
	staker := newKey(t)
	badVoter := newKey(t)
	goodVoter := newKey(t)
	registry := []*reputation.Verdict{
		{VoteAccount: badVoter.String(), Policy: "Slow Block Producers", Warning: "Slow block producers"},
		{VoteAccount: goodVoter.String(), Name: strPtr("Good")},
	}
	good := chainAccount(t, program.Stake, 7000000000, encodeLayout(t, delegatedLayout(staker, goodVoter, 100)))
	bad := chainAccount(t, program.Stake, 2000000000, encodeLayout(t, delegatedLayout(staker, badVoter, 100)))
	fresh := chainAccount(t, program.Stake, 9000000000, encodeLayout(t, delegatedLayout(staker, badVoter, 200)))
	foreign := chainAccount(t, program.System, 1000000000, encodeLayout(t, delegatedLayout(staker, badVoter, 100)))
	empty := chainAccount(t, program.Stake, 1000000000, make([]byte, StakeLayoutSize))
	chain := &fakeChain{
		accounts: []*backend.Account{good, bad, fresh, foreign, empty},
		epoch:    200,
	}

	views, err := NewLister(chain, utils.StdLog("stake-test"), nil).List(context.Background(), staker, registry)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, bad.PubKey.String(), views[0].Address)
	assert.Equal(t, ScoreBad, views[0].Score())
	assert.Equal(t, "Slow block producers", views[0].State)
	assert.Equal(t, good.PubKey.String(), views[1].Address)
	assert.Equal(t, 7.0, views[1].Balance)
}

func TestLister_ChainErrors(t *testing.T) {
	tests := []struct {
		name  string
		chain *fakeChain
	}{
		{name: "epoch", chain: &fakeChain{epochErr: errors.New("rpc down")}},
		{name: "accounts", chain: &fakeChain{accountErr: errors.New("rpc down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := NewLister(tt.chain, utils.StdLog("stake-test"), nil).List(context.Background(), newKey(t), nil)
			assert.Error(t, err)
			assert.Nil(t, views)
		})
	}
}

func TestParseOwner(t *testing.T) {
	owner, err := ParseOwner("7K8DVxtNJGnMtUY1CQJT5jcs8sFGSZTDiG7kowvFpECh")
	require.NoError(t, err)
	assert.Equal(t, "7K8DVxtNJGnMtUY1CQJT5jcs8sFGSZTDiG7kowvFpECh", owner.String())

	_, err = ParseOwner("not-a-key")
	assert.True(t, errors.Is(err, ErrInvalidOwner))
}
