// Package ens resolves Ethereum Name Service names for the evmscript codec.
//
// Resolver talks to the ENS registry through any ContractCaller, usually an
// *ethclient.Client:
//
//	client, err := ethclient.DialContext(ctx, rpcURL)
//	if err != nil {
//	    return err
//	}
//	r := ens.NewResolver(client)
//	addr, err := r.ResolveName(ctx, "vitalik.eth")
//
// Reverse lookups are verified forward: a reverse record is only returned
// when the name resolves back to the same address.
package ens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MainnetRegistry is the ENS registry deployed on Ethereum mainnet and most testnets.
var MainnetRegistry = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// ErrInvalidName indicates a name that cannot be normalised.
var ErrInvalidName = errors.New("ens: invalid name")

const registryABIJSON = `[
	{
		"name": "resolver",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "node", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "address"}]
	}
]`

const resolverABIJSON = `[
	{
		"name": "addr",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "node", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "address"}]
	},
	{
		"name": "name",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "node", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "string"}]
	}
]`

var (
	registryABI = mustParseABI(registryABIJSON)
	resolverABI = mustParseABI(resolverABIJSON)
)

func mustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ContractCaller performs read-only contract calls. *ethclient.Client
// satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry overrides the registry address.
func WithRegistry(registry common.Address) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver implements evmscript.Resolver against the ENS registry.
type Resolver struct {
	caller   ContractCaller
	registry common.Address
	logger   *zap.Logger
}

var _ evmscript.Resolver = (*Resolver)(nil)

// NewResolver creates a Resolver using the mainnet registry unless
// overridden with WithRegistry.
func NewResolver(caller ContractCaller, opts ...Option) *Resolver {
	r := &Resolver{
		caller:   caller,
		registry: MainnetRegistry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry address in use.
func (r *Resolver) Registry() common.Address {
	return r.registry
}

// ResolveName returns the address record of name.
func (r *Resolver) ResolveName(ctx context.Context, name string) (common.Address, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return common.Address{}, err
	}
	node := NameHash(normalized)

	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return common.Address{}, err
	}

	out, err := r.call(ctx, resolver, resolverABI, "addr", node)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("ens: addr returned %T", out[0])
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s has no address record", evmscript.ErrNameNotFound, normalized)
	}

	r.logger.Debug("resolved name", zap.String("name", normalized), zap.String("address", addr.Hex()))
	return addr, nil
}

// LookupAddress returns the primary name of addr. The name must resolve
// back to addr.
func (r *Resolver) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	node := NameHash(ReverseName(addr))

	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return "", err
	}

	out, err := r.call(ctx, resolver, resolverABI, "name", node)
	if err != nil {
		return "", err
	}
	name, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("ens: name returned %T", out[0])
	}
	if name == "" {
		return "", fmt.Errorf("%w: no reverse record for %s", evmscript.ErrNameNotFound, addr.Hex())
	}

	forward, err := r.ResolveName(ctx, name)
	if err != nil {
		return "", err
	}
	if forward != addr {
		r.logger.Debug("reverse record does not resolve back",
			zap.String("address", addr.Hex()),
			zap.String("name", name),
			zap.String("forward", forward.Hex()))
		return "", fmt.Errorf("%w: %s resolves to %s, not %s", evmscript.ErrNameNotFound, name, forward.Hex(), addr.Hex())
	}
	return name, nil
}

// resolverOf asks the registry for the resolver of node.
func (r *Resolver) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	out, err := r.call(ctx, r.registry, registryABI, "resolver", node)
	if err != nil {
		return common.Address{}, err
	}
	resolver, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("ens: resolver returned %T", out[0])
	}
	if resolver == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver for node %s", evmscript.ErrNameNotFound, node.Hex())
	}
	return resolver, nil
}

func (r *Resolver) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, node common.Hash) ([]any, error) {
	data, err := contractABI.Pack(method, [32]byte(node))
	if err != nil {
		return nil, err
	}

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("ens: %s on %s: %w", method, to.Hex(), err)
	}
	if len(out) == 0 {
		// No code at the address.
		return nil, fmt.Errorf("%w: %s on %s returned no data", evmscript.ErrNameNotFound, method, to.Hex())
	}

	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("ens: unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("ens: %s returned %d values", method, len(values))
	}
	return values, nil
}
