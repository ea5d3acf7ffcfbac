package program

import "github.com/gagliardetto/solana-go"

type Instruction struct {
	IsAccounts  []*solana.AccountMeta
	IsData      []byte
	IsProgramID solana.PublicKey
}

func (i *Instruction) Accounts() []*solana.AccountMeta {
	return i.IsAccounts
}

func (i *Instruction) ProgramID() solana.PublicKey {
	return i.IsProgramID
}

func (i *Instruction) Data() ([]byte, error) {
	return i.IsData, nil
}

// NewMemo builds a spl-memo instruction carrying data as utf-8, signed by signer.
func NewMemo(data []byte, signer solana.PublicKey) *Instruction {
	return &Instruction{
		IsAccounts: []*solana.AccountMeta{
			{PublicKey: signer, IsSigner: true, IsWritable: true},
		},
		IsData:      data,
		IsProgramID: Memo,
	}
}
