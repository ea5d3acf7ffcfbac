package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/solanahub/solblaze-detox/backend"
	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/dingsdk"
	"github.com/solanahub/solblaze-detox/metrics"
	"github.com/solanahub/solblaze-detox/networkdetect"
	"github.com/solanahub/solblaze-detox/notify"
	"github.com/solanahub/solblaze-detox/remediation"
	"github.com/solanahub/solblaze-detox/reputation"
	"github.com/solanahub/solblaze-detox/stake"
	"github.com/solanahub/solblaze-detox/store"
	"github.com/solanahub/solblaze-detox/utils"
)

type RegistrySource interface {
	Fetch(ctx context.Context) (*reputation.Registry, error)
}

type AccountLister interface {
	List(ctx context.Context, owner solana.PublicKey, registry []*reputation.Verdict) ([]*stake.View, error)
}

type RateSource interface {
	ExchangeRate(ctx context.Context) (float64, error)
}

type PoolRefresher interface {
	Notify(ctx context.Context, signature string) error
}

type Remediator interface {
	Plan(ctx context.Context, view *stake.View, owner solana.PublicKey) (*remediation.Plan, error)
}

type BlockhashSource interface {
	RecentBlockhash(ctx context.Context) (solana.Hash, error)
}

var ErrStakeAccountNotFound = errors.New("stake account not found")

type Detox struct {
	ctx        context.Context
	log        *log.Logger
	config     *config.Config
	wg         sync.WaitGroup
	backend    *backend.Backend
	registry   RegistrySource
	lister     AccountLister
	rates      RateSource
	pool       PoolRefresher
	planner    Remediator
	blockhash  BlockhashSource
	metrics    *metrics.Metrics
	notify     *notify.Notify
	store      *store.Store
	httpServer *http.Server
	rpcPort    string
}

func NewDetox(ctx context.Context, cfg *config.Config) (*Detox, error) {
	d := &Detox{
		ctx:     ctx,
		config:  cfg,
		rpcPort: cfg.Listen,
		log:     utils.NewLog(config.LogPath, config.ServerLog),
	}
	node := cfg.Nodes[0]
	if cfg.DetectNodes {
		nd := networkdetect.NewNetworkDetector(utils.NewLog(config.LogPath, config.NetworkLog))
		node = nd.Fastest(cfg.Nodes)
	}
	d.backend = backend.NewBackend(ctx, node)
	d.metrics = metrics.New(prometheus.NewRegistry())
	senders := make([]notify.Sender, 0, 1)
	if cfg.DingUrl != "" {
		senders = append(senders, dingsdk.NewDingSdk(cfg.DingUrl))
	}
	d.notify = notify.NewNotify(cfg.ShoutrrrUrls, utils.NewLog(config.LogPath, config.ServerLog), senders...)
	if cfg.DBUrl != "" {
		dao, err := store.NewDao(store.MySQL(cfg.DBUrl, cfg.DBScheme, cfg.DBUser, cfg.DBPasswd))
		if err != nil {
			return nil, err
		}
		d.store = store.NewStore(dao, utils.NewLog(config.LogPath, config.StoreLog))
	}
	d.registry = reputation.NewAggregator(reputation.NewFeed(cfg), cfg,
		utils.NewLog(config.LogPath, config.ReputationLog), d.metrics, d.notify)
	d.lister = stake.NewLister(d.backend, utils.NewLog(config.LogPath, config.StakeLog), d.metrics)
	d.rates = remediation.NewRateSource(cfg)
	remediationLog := utils.NewLog(config.LogPath, config.RemediationLog)
	d.pool = remediation.NewPoolNotifier(cfg, remediationLog, d.metrics, d.notify, d.store)
	d.planner = remediation.NewPlanner(remediation.NewPoolDeposit(d.backend), cfg, remediationLog)
	d.blockhash = d.backend
	return d, nil
}

func (d *Detox) Service() {
	d.Start()
	d.StartRPC()
	<-d.ctx.Done()
	d.StopRPC()
	d.Stop()
}

func (d *Detox) Start() {
	d.backend.Start()
	d.store.Start()
	d.notify.Start()
	d.log.Printf("detox has started......")
}

func (d *Detox) Stop() {
	// pool refreshes in flight finish first so their records and alerts
	// reach the queues drained below
	d.wg.Wait()
	d.notify.Stop()
	d.store.Stop()
	d.backend.Stop()
	d.log.Printf("detox has stopped......")
}

func (d *Detox) StartRPC() {
	d.httpServer = &http.Server{
		Addr:    d.rpcPort,
		Handler: d.Handler(),
	}
	d.log.Printf("start rpc server on %s......", d.rpcPort)
	go func() {
		if err := d.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			d.log.Printf("ListenAndServe: %s", err.Error())
		}
	}()
}

func (d *Detox) StopRPC() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.httpServer.Shutdown(ctx); err != nil {
		d.log.Printf("rpc server shutdown err: %v", err)
	}
	d.log.Printf("rpc server has stopped......")
}

// Validators fetches the combined registry, bad verdicts first.
func (d *Detox) Validators(ctx context.Context) ([]*reputation.Verdict, error) {
	registry, err := d.registry.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return registry.All(), nil
}

// StakeAccounts lists the owner's active stake accounts against a fresh registry.
func (d *Detox) StakeAccounts(ctx context.Context, owner solana.PublicKey) ([]*stake.View, error) {
	verdicts, err := d.Validators(ctx)
	if err != nil {
		return nil, err
	}
	return d.lister.List(ctx, owner, verdicts)
}

// PlanRemediation builds the unsigned transaction that moves the owner's
// active stake account at address into the pool. The owner signs and sends it.
func (d *Detox) PlanRemediation(ctx context.Context, owner solana.PublicKey, address string) (*RemediationPlan, error) {
	views, err := d.StakeAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	var view *stake.View
	for _, v := range views {
		if v.Address == address {
			view = v
			break
		}
	}
	if view == nil {
		return nil, fmt.Errorf("%w: %s", ErrStakeAccountNotFound, address)
	}
	plan, err := d.planner.Plan(ctx, view, owner)
	if err != nil {
		return nil, err
	}
	blockhash, err := d.blockhash.RecentBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := plan.Transaction(blockhash)
	if err != nil {
		return nil, err
	}
	if err := partialSign(tx, plan.Signers); err != nil {
		return nil, err
	}
	data, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	result := &RemediationPlan{
		StakeAccount: view.Address,
		VoteAccount:  view.ValidatorInfo.VoteAccount,
		Balance:      view.Balance,
		Transaction:  base64.StdEncoding.EncodeToString(data),
	}
	if rate, err := d.rates.ExchangeRate(ctx); err != nil {
		d.log.Printf("plan %s without estimate, exchange rate err: %v", address, err)
	} else {
		result.Estimate = remediation.Estimate(view.Balance, rate)
	}
	return result, nil
}

// partialSign fills the slots of signers and leaves the rest, the owner's
// included, zeroed for the wallet.
func partialSign(tx *solana.Transaction, signers []solana.PrivateKey) error {
	required := int(tx.Message.Header.NumRequiredSignatures)
	tx.Signatures = make([]solana.Signature, required)
	if len(signers) == 0 {
		return nil
	}
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return err
	}
	for _, signer := range signers {
		index := -1
		for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
			if tx.Message.AccountKeys[i] == signer.PublicKey() {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("signer %s is not required by the transaction", signer.PublicKey())
		}
		signature, err := signer.Sign(message)
		if err != nil {
			return err
		}
		tx.Signatures[index] = signature
	}
	return nil
}
