package evmscript

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Signature is a parsed function signature such as "transfer(address,uint256)".
type Signature struct {
	Name  string
	Types []string
	args  abi.Arguments
}

// ParseSignature parses and validates a function signature.
//
// Each parameter must be a bare ABI type; parameter names are rejected, so
// "transfer(address unit256)" fails. Whitespace around types is ignored.
// Tuple parameters are rejected with ErrUnsupportedType rather than split on
// the wrong comma.
func ParseSignature(sig string) (*Signature, error) {
	sig = strings.TrimSpace(sig)

	open := strings.IndexByte(sig, '(')
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return nil, &SignatureError{Signature: sig, Reason: "expected name(types)"}
	}

	name := strings.TrimSpace(sig[:open])
	if !identifierRegex.MatchString(name) {
		return nil, &SignatureError{Signature: sig, Reason: "invalid function name"}
	}

	inner := sig[open+1 : len(sig)-1]
	if strings.ContainsAny(inner, "()") {
		return nil, &SignatureError{Signature: sig, Reason: "tuple parameters", Err: ErrUnsupportedType}
	}

	types := ParameterTypes(sig)
	args := make(abi.Arguments, len(types))
	for i, typ := range types {
		if typ == "" || strings.ContainsAny(typ, " \t\n") {
			return nil, &SignatureError{Signature: sig, Reason: "malformed parameter list"}
		}
		abiType, err := abi.NewType(typ, "", nil)
		if err != nil {
			return nil, &SignatureError{Signature: sig, Reason: "invalid type " + typ, Err: err}
		}
		args[i] = abi.Argument{Type: abiType}
	}

	return &Signature{Name: name, Types: types, args: args}, nil
}

// Canonical renders the signature without whitespace.
func (s *Signature) Canonical() string {
	return s.Name + "(" + strings.Join(s.Types, ",") + ")"
}

// Selector returns the selector of the canonical signature.
func (s *Signature) Selector() [SelectorSize]byte {
	return Selector(s.Canonical())
}

// Arity returns the number of declared parameters.
func (s *Signature) Arity() int {
	return len(s.Types)
}

// Arguments returns the ABI arguments for the declared parameter types.
func (s *Signature) Arguments() abi.Arguments {
	return s.args
}

// ParameterTypes extracts the comma-separated type list between the
// signature's parentheses. It does no validation beyond trimming; an empty
// or missing parameter list yields no types. ParseSignature validates what
// it returns, so encoding and decoding read the types the same way.
func ParameterTypes(sig string) []string {
	open := strings.IndexByte(sig, '(')
	end := strings.LastIndexByte(sig, ')')
	if open < 0 || end <= open {
		return nil
	}
	return splitTypes(sig[open+1 : end])
}

func splitTypes(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
