package evmscript

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Script container constants.
const (
	// ScriptSpecID is the only container format in use.
	ScriptSpecID uint32 = 1

	// SpecIDLength is the size of the spec id tag.
	SpecIDLength = 4

	// LengthFieldSize is the size of the call-data length field.
	LengthFieldSize = 4

	// HeaderLength is the offset of the execute call-data: tag + agent + length.
	HeaderLength = SpecIDLength + common.AddressLength + LengthFieldSize
)

var executeArgs = abi.Arguments{
	{Name: "target", Type: mustType("address")},
	{Name: "value", Type: mustType("uint256")},
	{Name: "data", Type: mustType("bytes")},
}

func mustType(typ string) abi.Type {
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

// Script is a parsed single-action script container.
type Script struct {
	Agent    common.Address
	CallData []byte
}

// BuildScript assembles the container.
// Format: [spec id:4][agent:20][length:4][call-data:length]
func BuildScript(agent common.Address, callData []byte) ([]byte, error) {
	if uint64(len(callData)) > math.MaxUint32 {
		return nil, fmt.Errorf("evmscript: call-data of %d bytes exceeds length field", len(callData))
	}

	script := make([]byte, HeaderLength+len(callData))

	// Bytes 0-3: spec id
	binary.BigEndian.PutUint32(script[0:SpecIDLength], ScriptSpecID)

	// Bytes 4-23: agent address
	copy(script[SpecIDLength:SpecIDLength+common.AddressLength], agent.Bytes())

	// Bytes 24-27: call-data length
	binary.BigEndian.PutUint32(script[SpecIDLength+common.AddressLength:HeaderLength], uint32(len(callData)))

	// Bytes 28+: call-data
	copy(script[HeaderLength:], callData)

	return script, nil
}

// ParseScript splits a container into agent and call-data. Only
// single-action scripts are accepted: the spec id must be 1 and the declared
// length must cover the rest of the input exactly.
func ParseScript(script []byte) (*Script, error) {
	parsed, err := ReadScript(script)
	if err != nil {
		return nil, err
	}

	if id := binary.BigEndian.Uint32(script[0:SpecIDLength]); id != ScriptSpecID {
		return nil, &ScriptError{Offset: 0, Err: fmt.Errorf("%w: %d", ErrUnknownSpecID, id)}
	}

	length := binary.BigEndian.Uint32(script[SpecIDLength+common.AddressLength : HeaderLength])
	if uint64(length) != uint64(len(parsed.CallData)) {
		return nil, &ScriptError{
			Offset: SpecIDLength + common.AddressLength,
			Err:    fmt.Errorf("%w: declared %d, have %d", ErrLengthMismatch, length, len(parsed.CallData)),
		}
	}
	return parsed, nil
}

// ReadScript reads the agent and call-data by offset. The spec id and the
// declared length are skipped, not checked; the call-data is everything
// after the header.
func ReadScript(script []byte) (*Script, error) {
	if len(script) < HeaderLength {
		return nil, &ScriptError{Offset: len(script), Err: ErrScriptTooShort}
	}
	return &Script{
		Agent:    common.BytesToAddress(script[SpecIDLength : SpecIDLength+common.AddressLength]),
		CallData: script[HeaderLength:],
	}, nil
}

// ExecuteCall is the decoded agent execute call.
type ExecuteCall struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

// EncodeExecuteCall produces execute(address,uint256,bytes) call-data.
func EncodeExecuteCall(target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	packed, err := executeArgs.Pack(target, value, data)
	if err != nil {
		return nil, err
	}
	return withSelector(ExecuteSelector, packed), nil
}

// DecodeExecuteCall decodes execute(address,uint256,bytes) call-data.
func DecodeExecuteCall(callData []byte) (*ExecuteCall, error) {
	body, err := stripSelector(callData, ExecuteSelector)
	if err != nil {
		return nil, err
	}
	return unpackExecuteCall(body)
}

// unpackExecuteCall decodes the execute arguments that follow the selector.
func unpackExecuteCall(body []byte) (*ExecuteCall, error) {
	values, err := executeArgs.Unpack(body)
	if err != nil {
		return nil, err
	}

	target, ok := values[0].(common.Address)
	if !ok {
		return nil, &TypeMismatchError{Expected: "address", Got: fmt.Sprintf("%T", values[0])}
	}
	value, ok := values[1].(*big.Int)
	if !ok {
		return nil, &TypeMismatchError{Expected: "uint256", Got: fmt.Sprintf("%T", values[1])}
	}
	data, ok := values[2].([]byte)
	if !ok {
		return nil, &TypeMismatchError{Expected: "bytes", Got: fmt.Sprintf("%T", values[2])}
	}

	return &ExecuteCall{Target: target, Value: value, Data: data}, nil
}

func withSelector(selector [SelectorSize]byte, body []byte) []byte {
	out := make([]byte, 0, SelectorSize+len(body))
	out = append(out, selector[:]...)
	return append(out, body...)
}

func stripSelector(callData []byte, expected [SelectorSize]byte) ([]byte, error) {
	body, err := skipSelector(callData)
	if err != nil {
		return nil, err
	}
	var got [SelectorSize]byte
	copy(got[:], callData[:SelectorSize])
	if got != expected {
		return nil, fmt.Errorf("%w: expected 0x%x, got 0x%x", ErrSelectorMismatch, expected, got)
	}
	return body, nil
}

func skipSelector(callData []byte) ([]byte, error) {
	if len(callData) < SelectorSize {
		return nil, &ScriptError{Offset: len(callData), Err: ErrScriptTooShort}
	}
	return callData[SelectorSize:], nil
}
