package remediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/solanahub/solblaze-detox/stake"
)

const MemoType = "cls/validator_stake/lamports"

var ErrRemediation = errors.New("remediation failed")

// DepositBuilder produces the stake pool deposit of a stake account together
// with any fresh signers it needs.
type DepositBuilder interface {
	BuildDeposit(ctx context.Context, pool, owner, vote, stakeAccount solana.PublicKey) ([]solana.Instruction, []solana.PrivateKey, error)
}

type Plan struct {
	Instructions []solana.Instruction
	Signers      []solana.PrivateKey
	Payer        solana.PublicKey
}

// Transaction assembles the plan into an unsigned transaction paid by the owner.
func (plan *Plan) Transaction(blockhash solana.Hash) (*solana.Transaction, error) {
	return solana.NewTransaction(plan.Instructions, blockhash, solana.TransactionPayer(plan.Payer))
}

type memo struct {
	Type  string    `json:"type"`
	Value memoValue `json:"value"`
}

type memoValue struct {
	Validator string `json:"validator"`
}

// MemoData is the attribution memo that credits the deposit to validator.
func MemoData(validator solana.PublicKey) []byte {
	data, _ := json.Marshal(&memo{Type: MemoType, Value: memoValue{Validator: validator.String()}})
	return data
}

type Planner struct {
	builder   DepositBuilder
	pool      solana.PublicKey
	validator solana.PublicKey
	logger    *log.Logger
}

func NewPlanner(builder DepositBuilder, cfg *config.Config, logger *log.Logger) *Planner {
	return &Planner{
		builder:   builder,
		pool:      cfg.StakePool,
		validator: cfg.MemoValidator,
		logger:    logger,
	}
}

// Plan moves the stake account in view into the pool: the deposit instructions
// followed by the attribution memo signed by owner.
func (p *Planner) Plan(ctx context.Context, view *stake.View, owner solana.PublicKey) (*Plan, error) {
	if view == nil || view.ValidatorInfo == nil {
		return nil, fmt.Errorf("%w: stake account has no validator info", ErrRemediation)
	}
	vote, err := solana.PublicKeyFromBase58(view.ValidatorInfo.VoteAccount)
	if err != nil {
		return nil, fmt.Errorf("%w: vote account %s: %v", ErrRemediation, view.ValidatorInfo.VoteAccount, err)
	}
	stakeAccount, err := solana.PublicKeyFromBase58(view.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: stake account %s: %v", ErrRemediation, view.Address, err)
	}
	instructions, signers, err := p.builder.BuildDeposit(ctx, p.pool, owner, vote, stakeAccount)
	if err != nil {
		p.logger.Printf("build deposit for %s err: %v", stakeAccount, err)
		return nil, fmt.Errorf("%w: %v", ErrRemediation, err)
	}
	plan := &Plan{
		Instructions: make([]solana.Instruction, 0, len(instructions)+1),
		Signers:      signers,
		Payer:        owner,
	}
	plan.Instructions = append(plan.Instructions, instructions...)
	plan.Instructions = append(plan.Instructions, program.NewMemo(MemoData(p.validator), owner))
	p.logger.Printf("plan deposit of %s (%s SOL) from %s, instructions: %d", stakeAccount, view.BalanceUi(), vote, len(plan.Instructions))
	return plan, nil
}
