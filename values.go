package evmscript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// parseParameters parses a JSON array literal. Numbers are kept as
// json.Number so large integers survive untouched.
func parseParameters(raw string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &TypeMismatchError{Expected: "array", Got: jsonKind(v)}
	}
	return list, nil
}

// packParameters coerces each value to its argument's Go type and packs them.
func packParameters(args abi.Arguments, values []any) ([]byte, error) {
	converted := make([]any, len(values))
	for i, v := range values {
		c, err := coerce(args[i].Type, v)
		if err != nil {
			return nil, &ArgumentError{Index: i, Type: args[i].Type.String(), Err: err}
		}
		converted[i] = c
	}
	return args.Pack(converted...)
}

// coerce converts a JSON value (string, json.Number, bool or array) to the
// exact Go type go-ethereum's packer expects for t.
func coerce(t abi.Type, raw any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		s, err := scalarString(t, raw)
		if err != nil {
			return nil, err
		}
		if !common.IsHexAddress(s) {
			return nil, &TypeMismatchError{Expected: "address", Got: s}
		}
		return common.HexToAddress(s), nil

	case abi.UintTy, abi.IntTy:
		s, err := scalarString(t, raw)
		if err != nil {
			return nil, err
		}
		n, err := parseInteger(s)
		if err != nil {
			return nil, err
		}
		if err := checkRange(t, n); err != nil {
			return nil, err
		}
		return sizedInteger(t, n), nil

	case abi.BoolTy:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		s, err := scalarString(t, raw)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(s) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, &TypeMismatchError{Expected: "bool", Got: s}

	case abi.StringTy:
		s, ok := raw.(string)
		if !ok {
			return nil, &TypeMismatchError{Expected: "string", Got: jsonKind(raw)}
		}
		return s, nil

	case abi.BytesTy:
		s, err := scalarString(t, raw)
		if err != nil {
			return nil, err
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		return b, nil

	case abi.FixedBytesTy:
		s, err := scalarString(t, raw)
		if err != nil {
			return nil, err
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, &TypeMismatchError{Expected: t.String(), Got: fmt.Sprintf("%d bytes", len(b))}
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		items, err := listValue(t, raw)
		if err != nil {
			return nil, err
		}
		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			if len(items) != t.Size {
				return nil, &TypeMismatchError{Expected: t.String(), Got: fmt.Sprintf("%d elements", len(items))}
			}
			out = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			v, err := coerce(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(v))
		}
		return out.Interface(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t.String())
	}
}

// scalarString accepts a JSON string or number.
func scalarString(t abi.Type, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", &TypeMismatchError{Expected: t.String(), Got: jsonKind(raw)}
	}
}

// listValue accepts a JSON array, or a string holding one. Decoded array
// parameters are displayed as JSON text, so the second form is what a
// round trip feeds back in.
func listValue(t abi.Type, raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case string:
		return parseParameters(v)
	default:
		return nil, &TypeMismatchError{Expected: t.String(), Got: jsonKind(raw)}
	}
}

// parseInteger parses a base-10 or 0x-prefixed hex integer.
func parseInteger(s string) (*big.Int, error) {
	digits, base := s, 10
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits, base = digits[2:], 16
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

func checkRange(t abi.Type, n *big.Int) error {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return fmt.Errorf("%s out of range for %s", n, t)
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	lo := new(big.Int).Neg(limit)
	hi := new(big.Int).Sub(limit, big.NewInt(1))
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return fmt.Errorf("%s out of range for %s", n, t)
	}
	return nil
}

// sizedInteger converts n to uint8..uint64/int8..int64 when the ABI type maps
// to a native Go integer, and leaves it as *big.Int otherwise.
func sizedInteger(t abi.Type, n *big.Int) any {
	rt := t.GetType()
	if rt == bigIntType {
		return new(big.Int).Set(n)
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(rt).Interface()
	}
	return reflect.ValueOf(n.Int64()).Convert(rt).Interface()
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// marshalStrings renders values as a JSON array of strings.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
