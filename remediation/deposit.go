package remediation

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/solanahub/solblaze-detox/stakepool"
)

type AccountReader interface {
	AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error)
}

// PoolDeposit builds spl stake pool deposits against the on-chain pool state.
type PoolDeposit struct {
	reader AccountReader
}

func NewPoolDeposit(reader AccountReader) *PoolDeposit {
	return &PoolDeposit{reader: reader}
}

// BuildDeposit authorizes stakeAccount to the pool, makes sure owner holds a
// pool token account and deposits the stake into the validator's pool stake.
// The owner is the only signer.
func (d *PoolDeposit) BuildDeposit(ctx context.Context, pool, owner, vote, stakeAccount solana.PublicKey) ([]solana.Instruction, []solana.PrivateKey, error) {
	poolData, err := d.reader.AccountData(ctx, pool)
	if err != nil {
		return nil, nil, fmt.Errorf("read stake pool %s: %w", pool, err)
	}
	layout, err := stakepool.ParsePool(poolData)
	if err != nil {
		return nil, nil, err
	}
	listData, err := d.reader.AccountData(ctx, layout.ValidatorList)
	if err != nil {
		return nil, nil, fmt.Errorf("read validator list %s: %w", layout.ValidatorList, err)
	}
	validators, err := stakepool.ParseValidatorList(listData)
	if err != nil {
		return nil, nil, err
	}
	info := stakepool.FindValidator(validators, vote)
	if info == nil {
		return nil, nil, fmt.Errorf("validator %s is not in pool %s", vote, pool)
	}
	if info.Status != stakepool.StatusActive {
		return nil, nil, fmt.Errorf("validator %s is leaving pool %s, status: %d", vote, pool, info.Status)
	}
	depositAuthority, err := stakepool.FindDepositAuthority(pool)
	if err != nil {
		return nil, nil, err
	}
	if layout.StakeDepositAuthority != depositAuthority {
		return nil, nil, fmt.Errorf("pool %s only takes deposits signed by %s", pool, layout.StakeDepositAuthority)
	}
	withdrawAuthority, err := stakepool.FindWithdrawAuthority(pool)
	if err != nil {
		return nil, nil, err
	}
	validatorStake, err := stakepool.FindValidatorStake(vote, pool, info.ValidatorSeedSuffix)
	if err != nil {
		return nil, nil, err
	}
	poolTokens, err := program.FindAssociatedTokenAddress(owner, layout.PoolMint, layout.TokenProgramId)
	if err != nil {
		return nil, nil, err
	}
	instructions := []solana.Instruction{
		program.NewStakeAuthorize(stakeAccount, owner, depositAuthority, program.StakeAuthorizeStaker),
		program.NewStakeAuthorize(stakeAccount, owner, depositAuthority, program.StakeAuthorizeWithdrawer),
		program.NewCreateAssociatedTokenIdempotent(owner, poolTokens, owner, layout.PoolMint, layout.TokenProgramId),
		stakepool.NewDepositStake(&stakepool.DepositStakeAccounts{
			Pool:              pool,
			ValidatorList:     layout.ValidatorList,
			DepositAuthority:  depositAuthority,
			WithdrawAuthority: withdrawAuthority,
			DepositStake:      stakeAccount,
			ValidatorStake:    validatorStake,
			ReserveStake:      layout.ReserveStake,
			PoolTokensTo:      poolTokens,
			ManagerFeeAccount: layout.ManagerFeeAccount,
			Referrer:          poolTokens,
			PoolMint:          layout.PoolMint,
			TokenProgram:      layout.TokenProgramId,
		}),
	}
	return instructions, nil, nil
}
