package evmscript

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ProposalType selects which agent contract executes a proposal.
type ProposalType uint8

const (
	// Primary proposals execute through the primary agent.
	Primary ProposalType = iota

	// Secondary proposals execute through the secondary agent.
	Secondary
)

func (t ProposalType) String() string {
	switch t {
	case Primary:
		return "PRIMARY"
	case Secondary:
		return "SECONDARY"
	default:
		return fmt.Sprintf("ProposalType(%d)", uint8(t))
	}
}

// ParseProposalType parses "primary" or "secondary", case-insensitively.
func ParseProposalType(s string) (ProposalType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRIMARY":
		return Primary, nil
	case "SECONDARY":
		return Secondary, nil
	default:
		return 0, fmt.Errorf("evmscript: unknown proposal type %q", s)
	}
}

// AgentAddresses maps each proposal type to its agent contract.
type AgentAddresses map[ProposalType]common.Address

// Contains reports whether addr is one of the agents.
func (a AgentAddresses) Contains(addr common.Address) bool {
	for _, agent := range a {
		if agent == addr {
			return true
		}
	}
	return false
}

// ProposalFormData is the user-supplied proposal form.
type ProposalFormData struct {
	Type ProposalType

	// TargetAddress is a hex address or a resolvable name.
	TargetAddress string

	// TargetSignature is a function signature, e.g. "transfer(address,uint256)".
	TargetSignature string

	// TargetValue is a base-10 amount of the native currency in its smallest unit.
	TargetValue string

	// Parameters is a JSON array literal with one entry per signature parameter.
	Parameters string

	Title       string
	Description string
}

// ProposalMetadata is stored off-chain next to a proposal and drives
// type-aware decoding of its script.
type ProposalMetadata struct {
	TargetSignature string `json:"targetSignature" yaml:"targetSignature"`
	Title           string `json:"title,omitempty" yaml:"title,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DecodedEvmScript holds the display fields of a decoded script.
type DecodedEvmScript struct {
	TargetAddress string
	Value         *big.Int
	Parameters    []string
}

// StoredProposal is a proposal as read back from the chain and the metadata store.
type StoredProposal struct {
	Type     ProposalType
	Script   []byte
	Metadata ProposalMetadata
	Decoded  *DecodedEvmScript
}

// FormDataFromDecoded re-serialises decoded fields into form shape so they
// can be encoded again.
func FormDataFromDecoded(typ ProposalType, meta ProposalMetadata, decoded *DecodedEvmScript) (ProposalFormData, error) {
	if decoded == nil {
		return ProposalFormData{}, fmt.Errorf("evmscript: nothing decoded")
	}
	params, err := marshalStrings(decoded.Parameters)
	if err != nil {
		return ProposalFormData{}, err
	}
	value := "0"
	if decoded.Value != nil {
		value = decoded.Value.String()
	}
	return ProposalFormData{
		Type:            typ,
		TargetAddress:   decoded.TargetAddress,
		TargetSignature: meta.TargetSignature,
		TargetValue:     value,
		Parameters:      params,
		Title:           meta.Title,
		Description:     meta.Description,
	}, nil
}
