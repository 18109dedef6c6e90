package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
)

// Kind identifies the wire-level type of a Value. The ledger virtual machine
// is kind-sensitive: a 32-bit counter and a 128-bit amount are distinct wire
// types even when both are written as a plain integer by the caller.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindU32
	KindI128
	KindSymbol
	KindString
	KindAddress
	KindVec
	KindMap
)

// String returns the wire tag used for the kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindU32:
		return "u32"
	case KindI128:
		return "i128"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindAddress:
		return "address"
	case KindVec:
		return "vec"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the tagged union exchanged with the ledger virtual machine. Exactly
// one payload field is meaningful for a given Kind.
type Value struct {
	Kind    Kind
	Bool    bool
	U32     uint32
	Hi      int64  // i128 high half, two's complement
	Lo      uint64 // i128 low half
	Str     string // symbol, string and address payloads
	Vec     []Value
	Entries []MapEntry
}

// MapEntry is one ordered key/value pair of a map value. Keys are symbols on
// the wire.
type MapEntry struct {
	Key string
	Val Value
}

// Void returns the unit value.
func Void() Value { return Value{Kind: KindVoid} }

// NewBool wraps a boolean.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewU32 wraps a 32-bit counter.
func NewU32(n uint32) Value { return Value{Kind: KindU32, U32: n} }

// NewI128 wraps a signed 128-bit integer given as its two halves.
func NewI128(hi int64, lo uint64) Value { return Value{Kind: KindI128, Hi: hi, Lo: lo} }

// NewSymbol wraps a short identifier.
func NewSymbol(s string) Value { return Value{Kind: KindSymbol, Str: s} }

// NewString wraps free-form text.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// NewAddress wraps a ledger address. The payload is not validated here; use
// Encode with KindAddress when validation is required.
func NewAddress(s string) Value { return Value{Kind: KindAddress, Str: s} }

// NewVec wraps an ordered sequence.
func NewVec(items ...Value) Value { return Value{Kind: KindVec, Vec: items} }

// NewMap wraps an ordered key/value record.
func NewMap(entries ...MapEntry) Value { return Value{Kind: KindMap, Entries: entries} }

// NewI128FromBig converts an arbitrary-precision integer into its 128-bit
// halves. Values outside the signed 128-bit range are rejected.
func NewI128FromBig(v *big.Int) (Value, error) {
	hi, lo, err := SplitI128(v)
	if err != nil {
		return Value{}, err
	}
	return NewI128(hi, lo), nil
}

// BigInt reconstructs the arbitrary-precision integer of an i128 value.
func (v Value) BigInt() (*big.Int, error) {
	if v.Kind != KindI128 {
		return nil, decodeErrorf("value is %s, not i128", v.Kind)
	}
	return JoinI128(v.Hi, v.Lo), nil
}

// Equal reports deep equality of two values, including map entry order.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindVoid:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindU32:
		return v.U32 == o.U32
	case KindI128:
		return v.Hi == o.Hi && v.Lo == o.Lo
	case KindSymbol, KindString, KindAddress:
		return v.Str == o.Str
	case KindVec:
		if len(v.Vec) != len(o.Vec) {
			return false
		}
		for i := range v.Vec {
			if !v.Vec[i].Equal(o.Vec[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Entries) != len(o.Entries) {
			return false
		}
		for i := range v.Entries {
			if v.Entries[i].Key != o.Entries[i].Key || !v.Entries[i].Val.Equal(o.Entries[i].Val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON emits the canonical tagged-object wire form. The i128 halves are
// written as decimal strings so peers without 64-bit integers keep precision.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindVoid:
		return []byte(`{"void":null}`), nil
	case KindBool:
		return json.Marshal(map[string]bool{"bool": v.Bool})
	case KindU32:
		return json.Marshal(map[string]uint32{"u32": v.U32})
	case KindI128:
		return json.Marshal(map[string]map[string]string{"i128": {
			"hi": fmt.Sprintf("%d", v.Hi),
			"lo": fmt.Sprintf("%d", v.Lo),
		}})
	case KindSymbol:
		return json.Marshal(map[string]string{"symbol": v.Str})
	case KindString:
		return json.Marshal(map[string]string{"string": v.Str})
	case KindAddress:
		return json.Marshal(map[string]string{"address": v.Str})
	case KindVec:
		items := v.Vec
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(map[string][]Value{"vec": items})
	case KindMap:
		var buf bytes.Buffer
		buf.WriteString(`{"map":[`)
		for i, entry := range v.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(NewSymbol(entry.Key))
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(entry.Val)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, `{"key":%s,"val":%s}`, key, val)
		}
		buf.WriteString(`]}`)
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("codec: marshal unknown kind %s", v.Kind)
	}
}

// UnmarshalJSON accepts any of the tolerated wire shapes.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
