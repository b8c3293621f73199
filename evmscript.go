// Package evmscript encodes and decodes the EVM scripts that DAO voting
// contracts store as the executable payload of a governance proposal.
//
// A script wraps a single contract call in an agent "execute" call and a
// fixed container header. The layout must be bit-exact: voting front-ends
// re-encode the decoded fields and compare them byte for byte with the
// stored script to detect tampering or codec drift.
//
// # Basic Usage
//
// Encode a proposal form:
//
//	agents := evmscript.AgentAddresses{
//	    evmscript.Primary:   primaryAgent,
//	    evmscript.Secondary: secondaryAgent,
//	}
//
//	script, err := evmscript.EncodeEvmScript(ctx, resolver, evmscript.ProposalFormData{
//	    Type:            evmscript.Primary,
//	    TargetAddress:   "0x6B175474E89094C44Da98b954EedeAC495271d0F",
//	    TargetSignature: "transfer(address,uint256)",
//	    TargetValue:     "0",
//	    Parameters:      `["vitalik.eth", "1000"]`,
//	}, agents)
//	if err != nil {
//	    var formErr *evmscript.FormError
//	    if errors.As(err, &formErr) {
//	        highlight(formErr.Field, formErr.Message)
//	    }
//	}
//
// Decode a stored script for display:
//
//	decoded := evmscript.DecodeEvmScript(ctx, resolver, script, metadata)
//	if decoded == nil {
//	    // render "unable to decode"
//	}
//
// # Script Layout
//
// All integers are big-endian:
//
//	[spec id:4 = 0x00000001][agent:20][length:4][execute call-data:length]
//
// The execute call-data is the selector of "execute(address,uint256,bytes)"
// followed by the ABI encoding of (target, value, inner call-data), where the
// inner call-data is the selector of the target signature followed by the
// ABI encoding of its parameters.
//
// # Name Resolution
//
// Address parameters and the target may be given as names. Resolution goes
// through the Resolver interface; the ens sub-package provides an ENS client
// and the resolver sub-package provides static, cached, retrying and
// instrumented decorators.
package evmscript
