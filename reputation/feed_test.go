package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/validators", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"rank": 1, "identity": "ID1", "vote_identity": "V1", "name": "One", "commission": 0},
			{"rank": 2, "identity": "ID2", "vote_identity": "V2", "name": nil, "commission": 7.5},
		})
	})
	mux.HandleFunc("/policies/mainnet/good.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Token") != token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"pubkey":           "good",
			"name":             "Sandwicher List",
			"validators":       []string{"ID2"},
			"total_validators": 1,
		})
	})
	mux.HandleFunc("/policies/mainnet/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestFeed(srv *httptest.Server, token string) *Feed {
	cfg := config.Default()
	cfg.StakeWizUrl = srv.URL + "/validators"
	cfg.PolicyUrl = srv.URL + "/policies/mainnet/"
	cfg.PolicyToken = token
	return NewFeed(cfg)
}

func TestFeed_Validators(t *testing.T) {
	srv := newFeedServer(t, "secret")

	validators, err := newTestFeed(srv, "secret").Validators(context.Background())

	require.NoError(t, err)
	require.Len(t, validators, 2)
	assert.Equal(t, "ID1", validators[0].Identity)
	assert.Equal(t, "V1", validators[0].VoteIdentity)
	assert.Equal(t, "One", validators[0].Name)
	assert.Equal(t, "", validators[1].Name)
	assert.Equal(t, 7.5, validators[1].Commission)
}

func TestFeed_PolicyList(t *testing.T) {
	srv := newFeedServer(t, "secret")
	policy := &config.Policy{Pubkey: "good", Name: config.SandwicherList}

	list, err := newTestFeed(srv, "secret").PolicyList(context.Background(), policy)

	require.NoError(t, err)
	assert.Equal(t, policy, list.Policy)
	assert.Equal(t, []string{"ID2"}, list.Identities)
}

func TestFeed_PolicyListErrors(t *testing.T) {
	srv := newFeedServer(t, "secret")
	tests := []struct {
		name   string
		token  string
		pubkey string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing token makes no request",
			token:  "",
			pubkey: "good",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMissingToken))
			},
		},
		{
			name:   "wrong token",
			token:  "wrong",
			pubkey: "good",
			check: func(t *testing.T, err error) {
				var statusErr *utils.StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
			},
		},
		{
			name:   "server error",
			token:  "secret",
			pubkey: "broken",
			check: func(t *testing.T, err error) {
				var statusErr *utils.StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := &config.Policy{Pubkey: tt.pubkey, Name: config.SlowBlockProducer}
			list, err := newTestFeed(srv, tt.token).PolicyList(context.Background(), policy)
			require.Error(t, err)
			assert.Nil(t, list)
			tt.check(t, err)
		})
	}
}

func TestFeed_EndToEndWithAggregator(t *testing.T) {
	srv := newFeedServer(t, "secret")
	cfg := config.Default()
	cfg.Policies = []*config.Policy{
		{Pubkey: "good", Name: config.SandwicherList},
		{Pubkey: "broken", Name: config.SlowBlockProducer},
	}
	aggregator := NewAggregator(newTestFeed(srv, "secret"), cfg, utils.StdLog("feed-test"), nil, nil)

	registry, err := aggregator.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, registry.Bad, 1)
	assert.Equal(t, "V2", registry.Bad[0].VoteAccount)
	assert.Nil(t, registry.Bad[0].Name)
	assert.Equal(t, "Sandwicher List, High Commission", registry.Bad[0].Policy)
	assert.Equal(t, "MEV sandwiching detected; High commission rate", registry.Bad[0].Warning)
	assert.Equal(t, []string{"V1"}, voteAccounts(registry.Good))
}
