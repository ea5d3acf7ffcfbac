package remediation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/metrics"
	"github.com/solanahub/solblaze-detox/notify"
	"github.com/solanahub/solblaze-detox/store"
	"github.com/solanahub/solblaze-detox/utils"
)

var ErrPoolUpdate = errors.New("pool update failed")

type poolUpdate struct {
	Success bool `json:"success"`
}

// PoolNotifier tells the pool operator about a confirmed deposit and asks it
// to refresh the pool.
type PoolNotifier struct {
	client    *http.Client
	api       string
	validator string
	delay     time.Duration
	logger    *log.Logger
	metrics   *metrics.Metrics
	notify    *notify.Notify
	store     *store.Store
}

func NewPoolNotifier(cfg *config.Config, logger *log.Logger, m *metrics.Metrics, n *notify.Notify, s *store.Store) *PoolNotifier {
	return &PoolNotifier{
		client:    &http.Client{Timeout: time.Duration(cfg.FeedTimeout) * time.Second},
		api:       strings.TrimRight(cfg.StakePoolApi, "/"),
		validator: cfg.MemoValidator.String(),
		delay:     time.Duration(cfg.PoolUpdateDelay) * time.Millisecond,
		logger:    logger,
		metrics:   m,
		notify:    n,
		store:     s,
	}
}

// Notify reports the deposit transaction, waits for the operator to see it and
// triggers the pool update. Nothing is rolled back on failure.
func (p *PoolNotifier) Notify(ctx context.Context, signature string) error {
	requestTime := time.Now().UnixMilli()
	err := p.notifyPool(ctx, signature)
	record := &store.PoolRefresh{
		Signature:   signature,
		Status:      store.StatusSucceeded,
		RequestTime: requestTime,
		FinishTime:  time.Now().UnixMilli(),
	}
	if err != nil {
		record.Status = store.StatusFailed
		record.Error = store.TruncateError(err.Error())
		p.logger.Printf("pool refresh for %s err: %v", signature, err)
		p.notify.Commit(fmt.Sprintf("solblaze pool refresh failed;\ntxid: %s;\nerr: %v", signature, err))
	} else {
		p.logger.Printf("pool refresh for %s succeeded", signature)
	}
	p.metrics.PoolRefresh(err == nil)
	p.store.StorePoolRefresh(record)
	return err
}

func (p *PoolNotifier) notifyPool(ctx context.Context, signature string) error {
	query := url.Values{}
	query.Set("validator", p.validator)
	query.Set("txid", signature)
	clsUrl := fmt.Sprintf("%s/cls_stake?%s", p.api, query.Encode())
	var ignored interface{}
	if err := utils.GetJson(ctx, p.client, clsUrl, nil, &ignored); err != nil {
		p.logger.Printf("cls_stake for %s err: %v", signature, err)
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrPoolUpdate, ctx.Err())
	}

	result := &poolUpdate{}
	if err := utils.GetJson(ctx, p.client, p.api+"/update_pool?network=mainnet-beta", nil, result); err != nil {
		return fmt.Errorf("%w: %v", ErrPoolUpdate, err)
	}
	if !result.Success {
		return fmt.Errorf("%w: operator reported no success", ErrPoolUpdate)
	}
	return nil
}
