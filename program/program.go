package program

import "github.com/gagliardetto/solana-go"

var (
	Stake           = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")
	StakePool       = solana.MustPublicKeyFromBase58("SPoo1Ku8WFXoNDMHPsrGSTSG1Y47rzgn41SLUNakuHy")
	Memo            = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	System          = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	Token           = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedToken = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysClock        = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	SysStakeHistory = solana.MustPublicKeyFromBase58("SysvarStakeHistory1111111111111111111111111")
)

const (
	LamportsPerSol = 1000000000
)
