package evmscript

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FormatValue renders a value unpacked by go-ethereum as display text.
// Numbers are base-10, addresses checksummed hex, byte strings 0x-hex and
// arrays a JSON array of the element strings.
func FormatValue(t abi.Type, v any) (string, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		switch n := v.(type) {
		case *big.Int:
			return n.String(), nil
		case uint8, uint16, uint32, uint64:
			return strconv.FormatUint(reflect.ValueOf(n).Uint(), 10), nil
		case int8, int16, int32, int64:
			return strconv.FormatInt(reflect.ValueOf(n).Int(), 10), nil
		}

	case abi.AddressTy:
		if a, ok := v.(common.Address); ok {
			return a.Hex(), nil
		}

	case abi.BoolTy:
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b), nil
		}

	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case abi.BytesTy:
		if b, ok := v.([]byte); ok {
			return hexutil.Encode(b), nil
		}

	case abi.FixedBytesTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b), nil
		}

	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			items := make([]string, rv.Len())
			for i := range items {
				s, err := FormatValue(*t.Elem, rv.Index(i).Interface())
				if err != nil {
					return "", err
				}
				items[i] = s
			}
			return marshalStrings(items)
		}
	}
	return "", &TypeMismatchError{Expected: t.String(), Got: fmt.Sprintf("%T", v)}
}
