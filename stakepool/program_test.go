package stakepool

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindValidatorStake(t *testing.T) {
	vote := newKey(t)
	pool := newKey(t)

	plain, err := FindValidatorStake(vote, pool, 0)
	require.NoError(t, err)
	expected, _, err := solana.FindProgramAddress([][]byte{vote.Bytes(), pool.Bytes()}, program.StakePool)
	require.NoError(t, err)
	assert.Equal(t, expected, plain)

	suffixed, err := FindValidatorStake(vote, pool, 5)
	require.NoError(t, err)
	seed := make([]byte, 4)
	binary.LittleEndian.PutUint32(seed, 5)
	expected, _, err = solana.FindProgramAddress([][]byte{vote.Bytes(), pool.Bytes(), seed}, program.StakePool)
	require.NoError(t, err)
	assert.Equal(t, expected, suffixed)
	assert.NotEqual(t, plain, suffixed)
}

func TestFindAuthorities(t *testing.T) {
	pool := newKey(t)
	withdraw, err := FindWithdrawAuthority(pool)
	require.NoError(t, err)
	deposit, err := FindDepositAuthority(pool)
	require.NoError(t, err)
	assert.NotEqual(t, withdraw, deposit)

	again, err := FindWithdrawAuthority(pool)
	require.NoError(t, err)
	assert.Equal(t, withdraw, again)
}

func TestNewDepositStake(t *testing.T) {
	accounts := &DepositStakeAccounts{
		Pool:              newKey(t),
		ValidatorList:     newKey(t),
		DepositAuthority:  newKey(t),
		WithdrawAuthority: newKey(t),
		DepositStake:      newKey(t),
		ValidatorStake:    newKey(t),
		ReserveStake:      newKey(t),
		PoolTokensTo:      newKey(t),
		ManagerFeeAccount: newKey(t),
		PoolMint:          newKey(t),
		TokenProgram:      program.Token,
	}
	accounts.Referrer = accounts.PoolTokensTo

	instruction := NewDepositStake(accounts)

	assert.Equal(t, program.StakePool, instruction.ProgramID())
	data, err := instruction.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, data)
	metas := instruction.Accounts()
	require.Len(t, metas, 15)
	assert.Equal(t, accounts.DepositStake, metas[4].PublicKey)
	assert.Equal(t, accounts.ValidatorStake, metas[5].PublicKey)
	assert.Equal(t, program.SysClock, metas[11].PublicKey)
	assert.Equal(t, program.Stake, metas[14].PublicKey)
	for _, meta := range metas {
		assert.False(t, meta.IsSigner)
	}
	assert.False(t, metas[2].IsWritable)
	assert.True(t, metas[10].IsWritable)
}
