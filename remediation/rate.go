package remediation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/utils"
)

type stakePool struct {
	PoolName     string  `json:"poolName"`
	ExchangeRate float64 `json:"exchangeRate"`
}

type RateSource struct {
	client   *http.Client
	url      string
	poolName string
}

func NewRateSource(cfg *config.Config) *RateSource {
	return &RateSource{
		client:   &http.Client{Timeout: time.Duration(cfg.FeedTimeout) * time.Second},
		url:      cfg.PoolListUrl,
		poolName: cfg.PoolName,
	}
}

// ExchangeRate is the SOL per pool token rate of the configured pool.
func (r *RateSource) ExchangeRate(ctx context.Context) (float64, error) {
	pools := make([]*stakePool, 0)
	if err := utils.GetJson(ctx, r.client, r.url, nil, &pools); err != nil {
		return 0, err
	}
	for _, pool := range pools {
		if pool != nil && pool.PoolName == r.poolName {
			return pool.ExchangeRate, nil
		}
	}
	return 0, fmt.Errorf("pool %s is not listed", r.poolName)
}

// Estimate is the pool token amount received for balance SOL, with four
// decimals. It is empty while the rate is unknown.
func Estimate(balance, rate float64) string {
	if rate <= 0 {
		return ""
	}
	return decimal.NewFromFloat(balance).Div(decimal.NewFromFloat(rate)).StringFixed(4)
}
