package stakepool

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	AccountTypeUninitialized = uint8(0)
	AccountTypeStakePool     = uint8(1)
	AccountTypeValidatorList = uint8(2)
)

const (
	StatusActive                = uint8(0)
	StatusDeactivatingTransient = uint8(1)
	StatusReadyForRemoval       = uint8(2)
	StatusDeactivatingValidator = uint8(3)
	StatusDeactivatingAll       = uint8(4)
)

// PoolLayout is the fixed prefix of a stake pool account; the optional
// fee and authority fields follow it.
type PoolLayout struct {
	AccountType           uint8
	Manager               solana.PublicKey
	Staker                solana.PublicKey
	StakeDepositAuthority solana.PublicKey
	StakeWithdrawBumpSeed uint8
	ValidatorList         solana.PublicKey
	ReserveStake          solana.PublicKey
	PoolMint              solana.PublicKey
	ManagerFeeAccount     solana.PublicKey
	TokenProgramId        solana.PublicKey
	TotalLamports         uint64
	PoolTokenSupply       uint64
	LastUpdateEpoch       uint64
}

var PoolLayoutSize = binary.Size(PoolLayout{})

type ValidatorListHeader struct {
	AccountType   uint8
	MaxValidators uint32
	Len           uint32
}

var validatorListHeaderSize = binary.Size(ValidatorListHeader{})

type ValidatorStakeInfo struct {
	ActiveStakeLamports    uint64
	TransientStakeLamports uint64
	LastUpdateEpoch        uint64
	TransientSeedSuffix    uint64
	Unused                 uint32
	ValidatorSeedSuffix    uint32
	Status                 uint8
	VoteAccount            solana.PublicKey
}

var ValidatorStakeInfoSize = binary.Size(ValidatorStakeInfo{})

func ParsePool(data []byte) (*PoolLayout, error) {
	if len(data) < PoolLayoutSize {
		return nil, fmt.Errorf("stake pool data size is not valid, expected: %d, actual: %d", PoolLayoutSize, len(data))
	}
	layout := &PoolLayout{}
	if err := binary.Read(bytes.NewReader(data[:PoolLayoutSize]), binary.LittleEndian, layout); err != nil {
		return nil, fmt.Errorf("stake pool data is not valid, err: %s", err)
	}
	if layout.AccountType != AccountTypeStakePool {
		return nil, fmt.Errorf("account type %d is not a stake pool", layout.AccountType)
	}
	return layout, nil
}

func ParseValidatorList(data []byte) ([]*ValidatorStakeInfo, error) {
	if len(data) < validatorListHeaderSize {
		return nil, fmt.Errorf("validator list data size is not valid, actual: %d", len(data))
	}
	reader := bytes.NewReader(data)
	header := &ValidatorListHeader{}
	if err := binary.Read(reader, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("validator list header is not valid, err: %s", err)
	}
	if header.AccountType != AccountTypeValidatorList {
		return nil, fmt.Errorf("account type %d is not a validator list", header.AccountType)
	}
	if expected := validatorListHeaderSize + int(header.Len)*ValidatorStakeInfoSize; len(data) < expected {
		return nil, fmt.Errorf("validator list data size is not valid, expected: %d, actual: %d", expected, len(data))
	}
	validators := make([]*ValidatorStakeInfo, 0, header.Len)
	for i := uint32(0); i < header.Len; i++ {
		info := &ValidatorStakeInfo{}
		if err := binary.Read(reader, binary.LittleEndian, info); err != nil {
			return nil, fmt.Errorf("validator %d is not valid, err: %s", i, err)
		}
		validators = append(validators, info)
	}
	return validators, nil
}

func FindValidator(validators []*ValidatorStakeInfo, vote solana.PublicKey) *ValidatorStakeInfo {
	for _, info := range validators {
		if info.VoteAccount == vote {
			return info
		}
	}
	return nil
}
