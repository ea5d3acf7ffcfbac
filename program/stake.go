package program

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

const (
	StakeAuthorizeStaker     = uint32(0)
	StakeAuthorizeWithdrawer = uint32(1)
)

const stakeInstructionAuthorize = uint32(1)

// NewStakeAuthorize hands the staker or withdrawer role of stakeAccount from
// authority to newAuthority.
func NewStakeAuthorize(stakeAccount, authority, newAuthority solana.PublicKey, kind uint32) *Instruction {
	data := make([]byte, 40)
	binary.LittleEndian.PutUint32(data[0:4], stakeInstructionAuthorize)
	copy(data[4:36], newAuthority.Bytes())
	binary.LittleEndian.PutUint32(data[36:40], kind)
	return &Instruction{
		IsAccounts: []*solana.AccountMeta{
			{PublicKey: stakeAccount, IsWritable: true},
			{PublicKey: SysClock},
			{PublicKey: authority, IsSigner: true},
		},
		IsData:      data,
		IsProgramID: Stake,
	}
}
