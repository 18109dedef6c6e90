package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Parse reconstructs a Value from whichever of the tolerated wire shapes is
// present: the canonical tagged-object form, the bare-value form produced by
// pre-converted results, or the nested _arm/_value/_attributes form leaked by
// serializer internals. Every shape of the same logical value parses to the
// same Value; anything else fails with a DecodeError rather than degrading to
// a default.
func Parse(raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, decodeErrorf("invalid JSON: %v", err)
	}
	return fromAny(v)
}

func fromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Void(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return numberValue(t)
	case string:
		return NewString(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			parsed, err := fromAny(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, parsed)
		}
		return NewVec(items...), nil
	case map[string]any:
		return objectValue(t)
	default:
		return Value{}, decodeErrorf("unsupported JSON value %T", v)
	}
}

// numberValue classifies a bare number. Wire integers are either 32-bit
// counters or 128-bit amounts; fractional numbers have no wire kind.
func numberValue(n json.Number) (Value, error) {
	if strings.ContainsAny(n.String(), ".eE") {
		return Value{}, decodeErrorf("non-integer number %q has no wire kind", n.String())
	}
	if u, err := strconv.ParseUint(n.String(), 10, 32); err == nil {
		return NewU32(uint32(u)), nil
	}
	hi, lo, err := ParseI128String(n.String())
	if err != nil {
		return Value{}, decodeErrorf("number %q: %v", n.String(), err)
	}
	return NewI128(hi, lo), nil
}

func objectValue(m map[string]any) (Value, error) {
	// Canonical tagged-object form: a single recognized tag key.
	if len(m) == 1 {
		for tag, payload := range m {
			if v, ok, err := taggedValue(tag, payload); ok || err != nil {
				return v, err
			}
		}
	}
	// Serializer-internal form.
	if attrs, ok := m["_attributes"]; ok {
		return i128Value(attrs)
	}
	if arm, ok := m["_arm"].(string); ok {
		payload, hasPayload := m["_value"]
		if !hasPayload {
			return Value{}, decodeErrorf("arm %q carries no _value", arm)
		}
		if v, handled, err := taggedValue(arm, payload); handled || err != nil {
			return v, err
		}
		return Value{}, decodeErrorf("unknown arm %q", arm)
	}
	if payload, ok := m["_value"]; ok && len(m) == 1 {
		return fromAny(payload)
	}
	// A bare {hi, lo} attribute pair is an i128 that lost its tag.
	if len(m) == 2 {
		if _, hasHi := m["hi"]; hasHi {
			if _, hasLo := m["lo"]; hasLo {
				return i128Value(m)
			}
		}
	}
	// Bare-object form: a map whose keys arrive as plain JSON keys. Key order
	// is not recoverable from a generic object, so entries are sorted for
	// deterministic output.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]MapEntry, 0, len(keys))
	for _, k := range keys {
		val, err := fromAny(m[k])
		if err != nil {
			return Value{}, decodeErrorf("map key %q: %v", k, err)
		}
		entries = append(entries, MapEntry{Key: k, Val: val})
	}
	return NewMap(entries...), nil
}

// taggedValue parses one tagged payload. The bool result reports whether the
// tag was recognized.
func taggedValue(tag string, payload any) (Value, bool, error) {
	switch tag {
	case "void":
		if payload != nil {
			return Value{}, true, decodeErrorf("void carries payload %v", payload)
		}
		return Void(), true, nil
	case "bool":
		b, ok := payload.(bool)
		if !ok {
			return Value{}, true, decodeErrorf("bool payload is %T", payload)
		}
		return NewBool(b), true, nil
	case "u32":
		n, err := parseUint32(payload)
		if err != nil {
			return Value{}, true, err
		}
		return NewU32(n), true, nil
	case "i128":
		v, err := i128Value(payload)
		return v, true, err
	case "symbol", "sym":
		s, err := stringPayload(tag, payload)
		if err != nil {
			return Value{}, true, err
		}
		return NewSymbol(s), true, nil
	case "string", "str":
		s, err := stringPayload(tag, payload)
		if err != nil {
			return Value{}, true, err
		}
		return NewString(s), true, nil
	case "address":
		s, err := stringPayload(tag, payload)
		if err != nil {
			return Value{}, true, err
		}
		return NewAddress(s), true, nil
	case "vec":
		items, ok := payload.([]any)
		if !ok {
			if payload == nil {
				return NewVec(), true, nil
			}
			return Value{}, true, decodeErrorf("vec payload is %T", payload)
		}
		parsed := make([]Value, 0, len(items))
		for _, item := range items {
			v, err := fromAny(item)
			if err != nil {
				return Value{}, true, err
			}
			parsed = append(parsed, v)
		}
		return NewVec(parsed...), true, nil
	case "map":
		v, err := mapValue(payload)
		return v, true, err
	default:
		return Value{}, false, nil
	}
}

func stringPayload(tag string, payload any) (string, error) {
	switch t := payload.(type) {
	case string:
		return t, nil
	case map[string]any:
		if inner, ok := t["_value"]; ok {
			return stringPayload(tag, inner)
		}
	}
	return "", decodeErrorf("%s payload is %T, not a string", tag, payload)
}

// mapValue parses the entry-list form: [{"key":…,"val":…}, …] in wire order.
// Keys must decode as symbols.
func mapValue(payload any) (Value, error) {
	items, ok := payload.([]any)
	if !ok {
		if m, isObject := payload.(map[string]any); isObject {
			return objectValue(m)
		}
		return Value{}, decodeErrorf("map payload is %T", payload)
	}
	entries := make([]MapEntry, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return Value{}, decodeErrorf("map entry %d is %T", i, item)
		}
		rawKey, hasKey := entry["key"]
		rawVal, hasVal := entry["val"]
		if !hasKey || !hasVal {
			return Value{}, decodeErrorf("map entry %d is missing key or val", i)
		}
		key, err := fromAny(rawKey)
		if err != nil {
			return Value{}, err
		}
		if key.Kind != KindSymbol && key.Kind != KindString {
			return Value{}, decodeErrorf("map entry %d key is %s, not a symbol", i, key.Kind)
		}
		val, err := fromAny(rawVal)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, MapEntry{Key: key.Str, Val: val})
	}
	return NewMap(entries...), nil
}

// i128Value accepts every observed i128 shape: an attribute pair, the nested
// _attributes/_value form, or an already-converted string or number.
func i128Value(payload any) (Value, error) {
	switch t := payload.(type) {
	case json.Number:
		hi, lo, err := ParseI128String(t.String())
		if err != nil {
			return Value{}, decodeErrorf("i128 number: %v", err)
		}
		return NewI128(hi, lo), nil
	case string:
		hi, lo, err := ParseI128String(t)
		if err != nil {
			return Value{}, decodeErrorf("i128 string: %v", err)
		}
		return NewI128(hi, lo), nil
	case map[string]any:
		if attrs, ok := t["_attributes"]; ok {
			return i128Value(attrs)
		}
		if inner, ok := t["_value"]; ok && len(t) == 1 {
			return i128Value(inner)
		}
		rawHi, hasHi := t["hi"]
		rawLo, hasLo := t["lo"]
		if !hasHi || !hasLo {
			return Value{}, decodeErrorf("i128 object is missing hi or lo halves")
		}
		hi, err := parseInt64(rawHi)
		if err != nil {
			return Value{}, decodeErrorf("i128 hi: %v", err)
		}
		lo, err := parseUint64(rawLo)
		if err != nil {
			return Value{}, decodeErrorf("i128 lo: %v", err)
		}
		return NewI128(hi, lo), nil
	default:
		return Value{}, decodeErrorf("i128 payload is %T", payload)
	}
}

func parseUint32(payload any) (uint32, error) {
	n, err := parseUint64(payload)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, decodeErrorf("%d exceeds the 32-bit range", n)
	}
	return uint32(n), nil
}

func parseInt64(payload any) (int64, error) {
	switch t := payload.(type) {
	case json.Number:
		return strconv.ParseInt(t.String(), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	case map[string]any:
		if inner, ok := t["_value"]; ok {
			return parseInt64(inner)
		}
	}
	return 0, decodeErrorf("%T is not a 64-bit integer", payload)
}

func parseUint64(payload any) (uint64, error) {
	switch t := payload.(type) {
	case json.Number:
		return strconv.ParseUint(t.String(), 10, 64)
	case string:
		return strconv.ParseUint(t, 10, 64)
	case map[string]any:
		if inner, ok := t["_value"]; ok {
			return parseUint64(inner)
		}
	}
	return 0, decodeErrorf("%T is not an unsigned 64-bit integer", payload)
}
