package evmscript

import (
	"bytes"
	"context"
)

// IsEvmScriptValid re-encodes the proposal's decoded fields and reports
// whether the result equals the stored script byte for byte. When
// proposal.Decoded is nil the script is decoded first. Any failure counts as
// invalid.
func IsEvmScriptValid(ctx context.Context, r Resolver, proposal StoredProposal, agents AgentAddresses) bool {
	decoded := proposal.Decoded
	if decoded == nil {
		decoded = DecodeEvmScript(ctx, r, proposal.Script, proposal.Metadata)
		if decoded == nil {
			return false
		}
	}

	form, err := FormDataFromDecoded(proposal.Type, proposal.Metadata, decoded)
	if err != nil {
		return false
	}

	script, err := EncodeEvmScript(ctx, r, form, agents)
	if err != nil {
		return false
	}
	return bytes.Equal(script, proposal.Script)
}
