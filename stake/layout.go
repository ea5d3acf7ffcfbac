package stake

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	AccountUninitialized = uint32(0)
	AccountInitialized   = uint32(1)
	AccountStake         = uint32(2)
	AccountRewardsPool   = uint32(3)
)

const StakeLayoutSize = 200

// decodedLayoutSize is the prefix read by ParseStakeLayout; the tail holds
// stake flags and padding.
var decodedLayoutSize = binary.Size(StakeLayout{})

type MetaLayout struct {
	RentExemptReserve   uint64
	Staker              solana.PublicKey
	Withdrawer          solana.PublicKey
	LockupUnixTimestamp int64
	LockupEpoch         uint64
	LockupCustodian     solana.PublicKey
}

type DelegationLayout struct {
	VoterPubkey        solana.PublicKey
	Stake              uint64
	ActivationEpoch    uint64
	DeactivationEpoch  uint64
	WarmupCooldownRate float64
}

type StakeLayout struct {
	State           uint32
	Meta            MetaLayout
	Delegation      DelegationLayout
	CreditsObserved uint64
}

// Delegated reports the delegation, or nil when the account only carries meta.
func (layout *StakeLayout) Delegated() *DelegationLayout {
	if layout.State != AccountStake {
		return nil
	}
	return &layout.Delegation
}

// ParseStakeLayout decodes initialized and delegated stake accounts. Any
// other state is reported as an error: it carries no stake info.
func ParseStakeLayout(data []byte) (*StakeLayout, error) {
	if len(data) < decodedLayoutSize {
		return nil, fmt.Errorf("stake account data size is not valid, expected: %d, actual: %d", StakeLayoutSize, len(data))
	}
	layout := &StakeLayout{}
	if err := binary.Read(bytes.NewReader(data[:decodedLayoutSize]), binary.LittleEndian, layout); err != nil {
		return nil, fmt.Errorf("stake account data is not valid, err: %s", err)
	}
	if layout.State != AccountInitialized && layout.State != AccountStake {
		return nil, fmt.Errorf("stake account state %d has no stake info", layout.State)
	}
	if layout.State == AccountInitialized {
		layout.Delegation = DelegationLayout{}
		layout.CreditsObserved = 0
	}
	return layout, nil
}
