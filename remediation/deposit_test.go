package remediation

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/solanahub/solblaze-detox/program"
	"github.com/solanahub/solblaze-detox/stakepool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	accounts map[solana.PublicKey][]byte
	err      error
}

func (r *fakeReader) AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	data, ok := r.accounts[key]
	if !ok {
		return nil, errors.New("account not found")
	}
	return data, nil
}

type poolFixture struct {
	pool   solana.PublicKey
	layout *stakepool.PoolLayout
	vote   solana.PublicKey
	info   *stakepool.ValidatorStakeInfo
}

func newPoolFixture(t *testing.T) *poolFixture {
	pool := newKey(t).PublicKey()
	depositAuthority, err := stakepool.FindDepositAuthority(pool)
	require.NoError(t, err)
	vote := newKey(t).PublicKey()
	return &poolFixture{
		pool: pool,
		layout: &stakepool.PoolLayout{
			AccountType:           stakepool.AccountTypeStakePool,
			StakeDepositAuthority: depositAuthority,
			ValidatorList:         newKey(t).PublicKey(),
			ReserveStake:          newKey(t).PublicKey(),
			PoolMint:              newKey(t).PublicKey(),
			ManagerFeeAccount:     newKey(t).PublicKey(),
			TokenProgramId:        program.Token,
		},
		vote: vote,
		info: &stakepool.ValidatorStakeInfo{ActiveStakeLamports: 100, ValidatorSeedSuffix: 3, VoteAccount: vote},
	}
}

func (f *poolFixture) reader(t *testing.T) *fakeReader {
	t.Helper()
	pool := new(bytes.Buffer)
	require.NoError(t, binary.Write(pool, binary.LittleEndian, f.layout))
	list := new(bytes.Buffer)
	require.NoError(t, binary.Write(list, binary.LittleEndian, &stakepool.ValidatorListHeader{
		AccountType: stakepool.AccountTypeValidatorList, MaxValidators: 2, Len: 2,
	}))
	other := &stakepool.ValidatorStakeInfo{VoteAccount: newKey(t).PublicKey()}
	require.NoError(t, binary.Write(list, binary.LittleEndian, other))
	require.NoError(t, binary.Write(list, binary.LittleEndian, f.info))
	return &fakeReader{accounts: map[solana.PublicKey][]byte{
		f.pool:                 pool.Bytes(),
		f.layout.ValidatorList: list.Bytes(),
	}}
}

func TestPoolDeposit_BuildDeposit(t *testing.T) {
	f := newPoolFixture(t)
	owner := newKey(t).PublicKey()
	stakeAccount := newKey(t).PublicKey()

	instructions, signers, err := NewPoolDeposit(f.reader(t)).BuildDeposit(context.Background(), f.pool, owner, f.vote, stakeAccount)

	require.NoError(t, err)
	assert.Empty(t, signers)
	require.Len(t, instructions, 4)

	for i, kind := range []uint32{program.StakeAuthorizeStaker, program.StakeAuthorizeWithdrawer} {
		assert.Equal(t, program.Stake, instructions[i].ProgramID())
		data, err := instructions[i].Data()
		require.NoError(t, err)
		assert.Equal(t, f.layout.StakeDepositAuthority.Bytes(), data[4:36])
		assert.Equal(t, kind, binary.LittleEndian.Uint32(data[36:40]))
		assert.Equal(t, stakeAccount, instructions[i].Accounts()[0].PublicKey)
		assert.Equal(t, owner, instructions[i].Accounts()[2].PublicKey)
	}

	ata, err := program.FindAssociatedTokenAddress(owner, f.layout.PoolMint, program.Token)
	require.NoError(t, err)
	assert.Equal(t, program.AssociatedToken, instructions[2].ProgramID())
	assert.Equal(t, ata, instructions[2].Accounts()[1].PublicKey)

	validatorStake, err := stakepool.FindValidatorStake(f.vote, f.pool, 3)
	require.NoError(t, err)
	withdrawAuthority, err := stakepool.FindWithdrawAuthority(f.pool)
	require.NoError(t, err)
	deposit := instructions[3].Accounts()
	assert.Equal(t, program.StakePool, instructions[3].ProgramID())
	assert.Equal(t, f.pool, deposit[0].PublicKey)
	assert.Equal(t, f.layout.ValidatorList, deposit[1].PublicKey)
	assert.Equal(t, withdrawAuthority, deposit[3].PublicKey)
	assert.Equal(t, stakeAccount, deposit[4].PublicKey)
	assert.Equal(t, validatorStake, deposit[5].PublicKey)
	assert.Equal(t, f.layout.ReserveStake, deposit[6].PublicKey)
	assert.Equal(t, ata, deposit[7].PublicKey)
	assert.Equal(t, ata, deposit[9].PublicKey)
	assert.Equal(t, f.layout.PoolMint, deposit[10].PublicKey)
}

func TestPoolDeposit_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *poolFixture)
	}{
		{name: "validator not in pool", modify: func(f *poolFixture) { f.vote = program.System }},
		{name: "validator leaving", modify: func(f *poolFixture) { f.info.Status = stakepool.StatusDeactivatingValidator }},
		{name: "private pool", modify: func(f *poolFixture) { f.layout.StakeDepositAuthority = program.System }},
		{name: "not a pool", modify: func(f *poolFixture) { f.layout.AccountType = stakepool.AccountTypeValidatorList }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPoolFixture(t)
			tt.modify(f)
			instructions, _, err := NewPoolDeposit(f.reader(t)).BuildDeposit(context.Background(), f.pool, newKey(t).PublicKey(), f.vote, newKey(t).PublicKey())
			assert.Error(t, err)
			assert.Nil(t, instructions)
		})
	}
}

func TestPoolDeposit_ReadFailure(t *testing.T) {
	f := newPoolFixture(t)
	reader := &fakeReader{err: errors.New("rpc down")}

	_, _, err := NewPoolDeposit(reader).BuildDeposit(context.Background(), f.pool, newKey(t).PublicKey(), f.vote, newKey(t).PublicKey())

	assert.Error(t, err)
}
