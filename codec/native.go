package codec

// Native converts a Value into its native Go representation: bool, uint32,
// base-10 string for i128 (floats would lose precision), string for the
// textual kinds, []any for vectors and map[string]any for maps. Unknown map
// keys survive the conversion untouched so callers stay forward compatible
// with contract upgrades.
func Native(v Value) (any, error) {
	switch v.Kind {
	case KindVoid:
		return nil, nil
	case KindBool:
		return v.Bool, nil
	case KindU32:
		return v.U32, nil
	case KindI128:
		return I128String(v.Hi, v.Lo), nil
	case KindSymbol, KindString, KindAddress:
		return v.Str, nil
	case KindVec:
		items := make([]any, 0, len(v.Vec))
		for _, item := range v.Vec {
			native, err := Native(item)
			if err != nil {
				return nil, err
			}
			items = append(items, native)
		}
		return items, nil
	case KindMap:
		record := make(map[string]any, len(v.Entries))
		for _, entry := range v.Entries {
			native, err := Native(entry.Val)
			if err != nil {
				return nil, err
			}
			record[entry.Key] = native
		}
		return record, nil
	default:
		return nil, decodeErrorf("unknown kind %s", v.Kind)
	}
}

// Record exposes a map value as a key-indexed lookup. Duplicate keys keep the
// first occurrence, matching wire iteration order.
func Record(v Value) (map[string]Value, error) {
	if v.Kind != KindMap {
		return nil, decodeErrorf("value is %s, not a map", v.Kind)
	}
	record := make(map[string]Value, len(v.Entries))
	for _, entry := range v.Entries {
		if _, seen := record[entry.Key]; !seen {
			record[entry.Key] = entry.Val
		}
	}
	return record, nil
}

// EnumName normalizes the wire encodings observed for enum variants: a bare
// symbol or string, a one-element vector holding the variant symbol, or a
// {tag, values} record. Anything else is a decode error, never a guessed
// default.
func EnumName(v Value) (string, error) {
	switch v.Kind {
	case KindSymbol, KindString:
		return v.Str, nil
	case KindVec:
		if len(v.Vec) >= 1 {
			head := v.Vec[0]
			if head.Kind == KindSymbol || head.Kind == KindString {
				return head.Str, nil
			}
		}
		return "", decodeErrorf("vector does not start with a variant symbol")
	case KindMap:
		for _, entry := range v.Entries {
			if entry.Key != "tag" {
				continue
			}
			if entry.Val.Kind == KindSymbol || entry.Val.Kind == KindString {
				return entry.Val.Str, nil
			}
			return "", decodeErrorf("enum tag is %s, not a symbol", entry.Val.Kind)
		}
		return "", decodeErrorf("enum record carries no tag entry")
	default:
		return "", decodeErrorf("%s cannot name an enum variant", v.Kind)
	}
}
