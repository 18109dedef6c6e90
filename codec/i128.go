package codec

import (
	"fmt"
	"math/big"
)

var (
	two64   = new(big.Int).Lsh(big.NewInt(1), 64)
	i128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	i128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// JoinI128 reconstructs (hi << 64) | lo at arbitrary precision. The high half
// is signed two's complement, the low half unsigned, so the result equals
// hi*2^64 + lo exactly. Ordinary floats lose precision above 2^53 and must
// never appear on this path.
func JoinI128(hi int64, lo uint64) *big.Int {
	result := new(big.Int).Mul(big.NewInt(hi), two64)
	return result.Add(result, new(big.Int).SetUint64(lo))
}

// I128String renders the reconstructed 128-bit integer in base 10.
func I128String(hi int64, lo uint64) string {
	return JoinI128(hi, lo).String()
}

// SplitI128 is the exact inverse of JoinI128. Values outside the signed
// 128-bit range are rejected rather than truncated.
func SplitI128(v *big.Int) (hi int64, lo uint64, err error) {
	if v == nil {
		return 0, 0, fmt.Errorf("codec: nil i128 value")
	}
	if v.Cmp(i128Max) > 0 || v.Cmp(i128Min) < 0 {
		return 0, 0, fmt.Errorf("codec: %s exceeds the signed 128-bit range", v.String())
	}
	// Two's complement over 128 bits, then carve out the halves.
	twos := new(big.Int).Set(v)
	if twos.Sign() < 0 {
		twos.Add(twos, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	lo = new(big.Int).Mod(twos, two64).Uint64()
	hiBig := new(big.Int).Rsh(twos, 64)
	if hiBig.Cmp(new(big.Int).Lsh(big.NewInt(1), 63)) >= 0 {
		hiBig.Sub(hiBig, two64)
	}
	hi = hiBig.Int64()
	return hi, lo, nil
}

// ParseI128String parses a base-10 string into 128-bit halves.
func ParseI128String(s string) (hi int64, lo uint64, err error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, 0, fmt.Errorf("codec: %q is not a base-10 integer", s)
	}
	return SplitI128(v)
}
