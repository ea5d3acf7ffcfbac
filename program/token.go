package program

import "github.com/gagliardetto/solana-go"

func FindAssociatedTokenAddress(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{wallet.Bytes(), tokenProgram.Bytes(), mint.Bytes()}, AssociatedToken)
	return address, err
}

// NewCreateAssociatedTokenIdempotent creates the token account ata of wallet
// unless it already exists.
func NewCreateAssociatedTokenIdempotent(payer, ata, wallet, mint, tokenProgram solana.PublicKey) *Instruction {
	return &Instruction{
		IsAccounts: []*solana.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: ata, IsWritable: true},
			{PublicKey: wallet},
			{PublicKey: mint},
			{PublicKey: System},
			{PublicKey: tokenProgram},
		},
		IsData:      []byte{1},
		IsProgramID: AssociatedToken,
	}
}
