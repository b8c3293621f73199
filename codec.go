package evmscript

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// EncodeEvmScript validates form and encodes it into a script for the agent
// selected by form.Type.
//
// Every failure is returned as a *FormError naming the offending field; no
// panic escapes.
func EncodeEvmScript(ctx context.Context, r Resolver, form ProposalFormData, agents AgentAddresses) (script []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			script = nil
			err = newFormError(FieldGeneric, GenericAssemblyFailure, "failed to assemble script", fmt.Errorf("panic: %v", rec))
		}
	}()

	values, err := parseParameters(form.Parameters)
	if err != nil {
		return nil, newFormError(FieldParameters, InvalidParametersJSON, "parameters must be a JSON array", err)
	}

	sig, err := ParseSignature(form.TargetSignature)
	if err != nil {
		return nil, newFormError(FieldTargetSignature, InvalidSignature, "invalid function signature", err)
	}

	if len(values) != sig.Arity() {
		return nil, newFormError(FieldParameters, ArityMismatch,
			fmt.Sprintf("%s expects %d parameters, got %d", sig.Canonical(), sig.Arity(), len(values)), nil)
	}

	resolved, err := resolveAll(ctx, r, sig.Types, values)
	if err != nil {
		if isUnresolvable(err) {
			return nil, newFormError(FieldParameters, UnresolvableAddress, "could not resolve address parameter", err)
		}
		return nil, newFormError(FieldParameters, EncodingTypeMismatch, "invalid parameter value", err)
	}

	encodedParams, err := packParameters(sig.Arguments(), resolved)
	if err != nil {
		return nil, newFormError(FieldParameters, EncodingTypeMismatch, "parameters do not match the signature types", err)
	}

	target, err := ResolveToAddress(ctx, r, form.TargetAddress)
	if err != nil {
		return nil, newFormError(FieldTargetAddress, UnresolvableAddress, "could not resolve target address", err)
	}

	value, err := parseTargetValue(form.TargetValue)
	if err != nil {
		return nil, newFormError(FieldTargetValue, InvalidValue, err.Error(), nil)
	}

	agent, ok := agents[form.Type]
	if !ok {
		return nil, newFormError(FieldGeneric, GenericAssemblyFailure, "no agent configured for "+form.Type.String(), ErrNoAgent)
	}

	callData, err := EncodeExecuteCall(target, value, withSelector(sig.Selector(), encodedParams))
	if err != nil {
		return nil, newFormError(FieldGeneric, GenericAssemblyFailure, "failed to encode execute call", err)
	}

	script, err = BuildScript(agent, callData)
	if err != nil {
		return nil, newFormError(FieldGeneric, GenericAssemblyFailure, "failed to assemble script", err)
	}
	return script, nil
}

// parseTargetValue parses a non-negative base-10 uint256.
func parseTargetValue(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("value is required")
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("value must be a base-10 integer")
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("value must not be negative")
	}
	if v.BitLen() > 256 {
		return nil, fmt.Errorf("value exceeds uint256")
	}
	return v, nil
}

// DecodeEvmScript decodes a stored script into display fields using the
// signature recorded in meta. The spec id, declared length and both
// selectors are skipped by offset; a script whose metadata names another
// function with the same parameter types still decodes. It returns nil when
// any step fails; partial results are never returned.
func DecodeEvmScript(ctx context.Context, r Resolver, script []byte, meta ProposalMetadata) *DecodedEvmScript {
	decoded, _ := decodeEvmScript(ctx, r, script, meta, decodeChecks{})
	return decoded
}

// decodeChecks enables validation the decoder otherwise skips.
type decodeChecks struct {
	// agents, when non-nil, must contain the script's agent.
	agents AgentAddresses
	// strict checks the spec id, the declared length and both selectors.
	strict bool
}

func (c decodeChecks) readScript(script []byte) (*Script, error) {
	if c.strict {
		return ParseScript(script)
	}
	return ReadScript(script)
}

func (c decodeChecks) callBody(callData []byte, selector [SelectorSize]byte) ([]byte, error) {
	if c.strict {
		return stripSelector(callData, selector)
	}
	return skipSelector(callData)
}

// decodeEvmScript is DecodeEvmScript with the failure reason kept for
// logging.
func decodeEvmScript(ctx context.Context, r Resolver, script []byte, meta ProposalMetadata, checks decodeChecks) (decoded *DecodedEvmScript, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			decoded = nil
			err = fmt.Errorf("evmscript: decode panic: %v", rec)
		}
	}()

	parsed, err := checks.readScript(script)
	if err != nil {
		return nil, err
	}
	if checks.agents != nil && !checks.agents.Contains(parsed.Agent) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, parsed.Agent.Hex())
	}

	execBody, err := checks.callBody(parsed.CallData, ExecuteSelector)
	if err != nil {
		return nil, err
	}
	exec, err := unpackExecuteCall(execBody)
	if err != nil {
		return nil, err
	}

	sig, err := ParseSignature(meta.TargetSignature)
	if err != nil {
		return nil, err
	}

	body, err := checks.callBody(exec.Data, sig.Selector())
	if err != nil {
		return nil, err
	}

	values, err := sig.Arguments().Unpack(body)
	if err != nil {
		return nil, err
	}
	if len(values) != sig.Arity() {
		return nil, &TypeMismatchError{Expected: fmt.Sprintf("%d values", sig.Arity()), Got: fmt.Sprintf("%d values", len(values))}
	}

	params, addrIndexes, addrs, err := formatParameters(sig.Arguments(), values)
	if err != nil {
		return nil, err
	}

	// Target first, then every address-typed parameter.
	names := displayAll(ctx, r, append([]common.Address{exec.Target}, addrs...))
	for i, idx := range addrIndexes {
		params[idx] = names[i+1]
	}

	return &DecodedEvmScript{
		TargetAddress: names[0],
		Value:         exec.Value,
		Parameters:    params,
	}, nil
}

// formatParameters stringifies unpacked values and collects the positions
// of address parameters for reverse resolution.
func formatParameters(args abi.Arguments, values []any) (params []string, addrIndexes []int, addrs []common.Address, err error) {
	params = make([]string, len(values))
	for i, v := range values {
		if args[i].Type.T == abi.AddressTy {
			addr, ok := v.(common.Address)
			if !ok {
				return nil, nil, nil, &TypeMismatchError{Expected: "address", Got: fmt.Sprintf("%T", v)}
			}
			addrIndexes = append(addrIndexes, i)
			addrs = append(addrs, addr)
		}
		params[i], err = FormatValue(args[i].Type, v)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return params, addrIndexes, addrs, nil
}

// Codec bundles a resolver, the agent map and logging around the package
// level encode, decode and validation functions.
type Codec struct {
	resolver Resolver
	agents   AgentAddresses
	config   *codecConfig
}

// New creates a Codec.
func New(r Resolver, agents AgentAddresses, opts ...Option) *Codec {
	cfg := defaultCodecConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Codec{
		resolver: r,
		agents:   agents,
		config:   cfg,
	}
}

// Agents returns the codec's agent map.
func (c *Codec) Agents() AgentAddresses {
	return c.agents
}

// Encode is EncodeEvmScript with the codec's resolver and agents.
func (c *Codec) Encode(ctx context.Context, form ProposalFormData) ([]byte, error) {
	script, err := EncodeEvmScript(ctx, c.resolver, form, c.agents)
	if err != nil {
		var formErr *FormError
		if errors.As(err, &formErr) {
			c.config.logger.Debug("encode failed",
				zap.String("field", string(formErr.Field)),
				zap.Stringer("kind", formErr.Kind),
				zap.Error(err))
		}
		return nil, err
	}
	c.config.logger.Debug("encoded script",
		zap.Stringer("type", form.Type),
		zap.String("signature", form.TargetSignature),
		zap.Int("bytes", len(script)))
	return script, nil
}

// Decode is DecodeEvmScript with the codec's resolver. With WithAgentCheck
// enabled, scripts for unknown agents decode to nil. With WithStrictDecode
// enabled, so do scripts with a foreign spec id, a wrong declared length or
// a selector that does not match.
func (c *Codec) Decode(ctx context.Context, script []byte, meta ProposalMetadata) *DecodedEvmScript {
	checks := decodeChecks{strict: c.config.strictDecode}
	if c.config.checkAgents {
		checks.agents = c.agents
		if checks.agents == nil {
			checks.agents = AgentAddresses{}
		}
	}
	decoded, err := decodeEvmScript(ctx, c.resolver, script, meta, checks)
	if err != nil {
		c.config.logger.Debug("decode failed", zap.Int("bytes", len(script)), zap.Error(err))
		return nil
	}
	return decoded
}

// IsValid is IsEvmScriptValid with the codec's resolver and agents.
func (c *Codec) IsValid(ctx context.Context, proposal StoredProposal) bool {
	if proposal.Decoded == nil {
		proposal.Decoded = c.Decode(ctx, proposal.Script, proposal.Metadata)
	}
	valid := IsEvmScriptValid(ctx, c.resolver, proposal, c.agents)
	if !valid {
		c.config.logger.Info("script failed round-trip check",
			zap.Stringer("type", proposal.Type),
			zap.String("signature", proposal.Metadata.TargetSignature))
	}
	return valid
}
