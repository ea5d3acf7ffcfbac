package backend

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/solanahub/solblaze-detox/program"
)

const (
	// StakerOffset is the byte offset of the authorized staker inside a stake account.
	StakerOffset = 12
)

type Account struct {
	PubKey  solana.PublicKey
	Account *rpc.Account
}

func (backend *Backend) ProgramAccounts(ctx context.Context, programId solana.PublicKey, filters []rpc.RPCFilter) ([]*Account, error) {
	result, err := backend.rpcClient.GetProgramAccountsWithOpts(ctx, programId,
		&rpc.GetProgramAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: backend.commitment,
			Filters:    filters,
		})
	if err != nil {
		return nil, err
	}
	accounts := make([]*Account, 0, len(result))
	for _, account := range result {
		accounts = append(accounts, &Account{
			PubKey:  account.Pubkey,
			Account: account.Account,
		})
	}
	return accounts, nil
}

// StakeAccounts returns every stake account whose authorized staker is owner.
func (backend *Backend) StakeAccounts(ctx context.Context, owner solana.PublicKey) ([]*Account, error) {
	filters := []rpc.RPCFilter{
		{
			Memcmp: &rpc.RPCFilterMemcmp{
				Offset: StakerOffset,
				Bytes:  solana.Base58(owner.Bytes()),
			},
		},
	}
	accounts, err := backend.ProgramAccounts(ctx, program.Stake, filters)
	if err != nil {
		backend.logger.Printf("get stake accounts of %s err: %v", owner, err)
		return nil, fmt.Errorf("get stake accounts: %w", err)
	}
	return accounts, nil
}

func (backend *Backend) CurrentEpoch(ctx context.Context) (uint64, error) {
	info, err := backend.rpcClient.GetEpochInfo(ctx, backend.commitment)
	if err != nil {
		backend.logger.Printf("get epoch info err: %v", err)
		return 0, fmt.Errorf("get epoch info: %w", err)
	}
	return info.Epoch, nil
}

// AccountData is the raw data of key; a missing account is an error.
func (backend *Backend) AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	response, err := backend.rpcClient.GetAccountInfo(ctx, key)
	if err != nil {
		backend.logger.Printf("get account info of %s err: %v", key, err)
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if response == nil || response.Value == nil || response.Value.Data == nil {
		return nil, fmt.Errorf("account %s not found", key)
	}
	return response.Value.Data.GetBinary(), nil
}

func (backend *Backend) RecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := backend.rpcClient.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		backend.logger.Printf("get recent blockhash err: %v", err)
		return solana.Hash{}, fmt.Errorf("get recent blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}
