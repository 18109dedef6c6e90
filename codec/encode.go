package codec

import (
	"fmt"
	"math"
	"math/big"
)

// Encode maps a native Go value onto the requested wire kind. The kind always
// comes from the call signature, never from the dynamic type of the value: a
// count and an amount are different wire types even when both arrive as an
// int. Unsupported combinations fail with ErrUnsupportedKind.
func Encode(native any, kind Kind) (Value, error) {
	switch kind {
	case KindVoid:
		if native != nil {
			return Value{}, fmt.Errorf("%w: void cannot carry %T", ErrUnsupportedKind, native)
		}
		return Void(), nil
	case KindBool:
		b, ok := native.(bool)
		if !ok {
			return Value{}, fmt.Errorf("%w: %T as bool", ErrUnsupportedKind, native)
		}
		return NewBool(b), nil
	case KindU32:
		n, err := u32From(native)
		if err != nil {
			return Value{}, err
		}
		return NewU32(n), nil
	case KindI128:
		v, err := bigFrom(native)
		if err != nil {
			return Value{}, err
		}
		return NewI128FromBig(v)
	case KindSymbol:
		s, ok := native.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: %T as symbol", ErrUnsupportedKind, native)
		}
		return NewSymbol(s), nil
	case KindString:
		s, ok := native.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: %T as string", ErrUnsupportedKind, native)
		}
		return NewString(s), nil
	case KindAddress:
		s, ok := native.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: %T as address", ErrUnsupportedKind, native)
		}
		if err := ValidateAddress(s); err != nil {
			return Value{}, err
		}
		return NewAddress(s), nil
	case KindVec:
		switch t := native.(type) {
		case []Value:
			return NewVec(t...), nil
		case nil:
			return NewVec(), nil
		}
		return Value{}, fmt.Errorf("%w: %T as vec", ErrUnsupportedKind, native)
	case KindMap:
		switch t := native.(type) {
		case []MapEntry:
			return NewMap(t...), nil
		case nil:
			return NewMap(), nil
		}
		return Value{}, fmt.Errorf("%w: %T as map", ErrUnsupportedKind, native)
	default:
		return Value{}, fmt.Errorf("%w: kind %s", ErrUnsupportedKind, kind)
	}
}

func u32From(native any) (uint32, error) {
	switch t := native.(type) {
	case uint32:
		return t, nil
	case int:
		if t < 0 || t > math.MaxUint32 {
			return 0, fmt.Errorf("codec: %d outside the 32-bit range", t)
		}
		return uint32(t), nil
	case int64:
		if t < 0 || t > math.MaxUint32 {
			return 0, fmt.Errorf("codec: %d outside the 32-bit range", t)
		}
		return uint32(t), nil
	case uint64:
		if t > math.MaxUint32 {
			return 0, fmt.Errorf("codec: %d outside the 32-bit range", t)
		}
		return uint32(t), nil
	default:
		return 0, fmt.Errorf("%w: %T as u32", ErrUnsupportedKind, native)
	}
}

func bigFrom(native any) (*big.Int, error) {
	switch t := native.(type) {
	case *big.Int:
		if t == nil {
			return nil, fmt.Errorf("codec: nil *big.Int as i128")
		}
		return t, nil
	case int:
		return big.NewInt(int64(t)), nil
	case int64:
		return big.NewInt(t), nil
	case uint64:
		return new(big.Int).SetUint64(t), nil
	case string:
		v, ok := new(big.Int).SetString(t, 10)
		if !ok {
			return nil, fmt.Errorf("codec: %q is not a base-10 integer", t)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T as i128", ErrUnsupportedKind, native)
	}
}
