package stake

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/solanahub/solblaze-detox/backend"
	"github.com/solanahub/solblaze-detox/metrics"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/solanahub/solblaze-detox/reputation"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidOwner = errors.New("invalid owner address")

// AccountSource is the chain access the lister needs.
type AccountSource interface {
	StakeAccounts(ctx context.Context, owner solana.PublicKey) ([]*backend.Account, error)
	CurrentEpoch(ctx context.Context) (uint64, error)
}

type Lister struct {
	source  AccountSource
	logger  *log.Logger
	metrics *metrics.Metrics
}

func NewLister(source AccountSource, logger *log.Logger, m *metrics.Metrics) *Lister {
	return &Lister{
		source:  source,
		logger:  logger,
		metrics: m,
	}
}

func ParseOwner(address string) (solana.PublicKey, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrInvalidOwner, address)
	}
	return owner, nil
}

// List returns the owner's active stake accounts classified against registry,
// bad ones first.
func (l *Lister) List(ctx context.Context, owner solana.PublicKey, registry []*reputation.Verdict) ([]*View, error) {
	g, gctx := errgroup.WithContext(ctx)
	var epoch uint64
	var accounts []*backend.Account
	g.Go(func() error {
		var err error
		epoch, err = l.source.CurrentEpoch(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = l.source.StakeAccounts(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	raws := make([]*RawAccount, 0, len(accounts))
	for _, account := range accounts {
		raws = append(raws, l.rawAccount(account))
	}
	views := ClassifyAll(raws, registry, epoch)
	for _, view := range views {
		l.metrics.Classified(view.Score())
	}
	l.logger.Printf("owner %s, epoch: %d, stake accounts: %d, active: %d", owner, epoch, len(accounts), len(views))
	return views, nil
}

func (l *Lister) rawAccount(account *backend.Account) *RawAccount {
	raw := &RawAccount{PubKey: account.PubKey}
	if account.Account == nil {
		return raw
	}
	raw.Lamports = account.Account.Lamports
	if account.Account.Owner != program.Stake || account.Account.Data == nil {
		return raw
	}
	layout, err := ParseStakeLayout(account.Account.Data.GetBinary())
	if err != nil {
		l.logger.Printf("account(%s) %s", account.PubKey, err)
		return raw
	}
	raw.Layout = layout
	return raw
}
