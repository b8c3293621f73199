package evmscript

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorSize is the length of a function selector in bytes.
const SelectorSize = 4

// ExecuteSignature is the agent method every script calls.
const ExecuteSignature = "execute(address,uint256,bytes)"

// ExecuteSelector is the selector of ExecuteSignature (0xb61d27f6).
var ExecuteSelector = Selector(ExecuteSignature)

// Selector returns the first 4 bytes of the Keccak-256 hash of signature.
// The signature is hashed as given; callers wanting the canonical form
// should go through ParseSignature.
func Selector(signature string) [SelectorSize]byte {
	var sel [SelectorSize]byte
	copy(sel[:], crypto.Keccak256([]byte(signature))[:SelectorSize])
	return sel
}
