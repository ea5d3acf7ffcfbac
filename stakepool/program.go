package stakepool

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/solanahub/solblaze-detox/program"
)

const instructionDepositStake = 9

var (
	withdrawSeed = []byte("withdraw")
	depositSeed  = []byte("deposit")
)

func FindWithdrawAuthority(pool solana.PublicKey) (solana.PublicKey, error) {
	authority, _, err := solana.FindProgramAddress([][]byte{pool.Bytes(), withdrawSeed}, program.StakePool)
	return authority, err
}

// FindDepositAuthority is the authority of pools that take deposits from anyone.
func FindDepositAuthority(pool solana.PublicKey) (solana.PublicKey, error) {
	authority, _, err := solana.FindProgramAddress([][]byte{pool.Bytes(), depositSeed}, program.StakePool)
	return authority, err
}

// FindValidatorStake is the pool stake account delegated to vote. A zero
// suffix adds no seed.
func FindValidatorStake(vote, pool solana.PublicKey, suffix uint32) (solana.PublicKey, error) {
	seeds := [][]byte{vote.Bytes(), pool.Bytes()}
	if suffix != 0 {
		seed := make([]byte, 4)
		binary.LittleEndian.PutUint32(seed, suffix)
		seeds = append(seeds, seed)
	}
	address, _, err := solana.FindProgramAddress(seeds, program.StakePool)
	return address, err
}

type DepositStakeAccounts struct {
	Pool              solana.PublicKey
	ValidatorList     solana.PublicKey
	DepositAuthority  solana.PublicKey
	WithdrawAuthority solana.PublicKey
	DepositStake      solana.PublicKey
	ValidatorStake    solana.PublicKey
	ReserveStake      solana.PublicKey
	PoolTokensTo      solana.PublicKey
	ManagerFeeAccount solana.PublicKey
	Referrer          solana.PublicKey
	PoolMint          solana.PublicKey
	TokenProgram      solana.PublicKey
}

// NewDepositStake moves a stake account, already authorized to the deposit
// authority, into the pool in exchange for pool tokens.
func NewDepositStake(accounts *DepositStakeAccounts) *program.Instruction {
	return &program.Instruction{
		IsAccounts: []*solana.AccountMeta{
			{PublicKey: accounts.Pool, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.ValidatorList, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.DepositAuthority, IsSigner: false, IsWritable: false},
			{PublicKey: accounts.WithdrawAuthority, IsSigner: false, IsWritable: false},
			{PublicKey: accounts.DepositStake, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.ValidatorStake, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.ReserveStake, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.PoolTokensTo, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.ManagerFeeAccount, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.Referrer, IsSigner: false, IsWritable: true},
			{PublicKey: accounts.PoolMint, IsSigner: false, IsWritable: true},
			{PublicKey: program.SysClock, IsSigner: false, IsWritable: false},
			{PublicKey: program.SysStakeHistory, IsSigner: false, IsWritable: false},
			{PublicKey: accounts.TokenProgram, IsSigner: false, IsWritable: false},
			{PublicKey: program.Stake, IsSigner: false, IsWritable: false},
		},
		IsData:      []byte{instructionDepositStake},
		IsProgramID: program.StakePool,
	}
}
