package codec

import (
	"math/big"
	"testing"
)

func TestJoinI128(t *testing.T) {
	cases := []struct {
		name string
		hi   int64
		lo   uint64
		want string
	}{
		{name: "zero", hi: 0, lo: 0, want: "0"},
		{name: "low half only", hi: 0, lo: 10_000_000_000, want: "10000000000"},
		{name: "max uint64 low", hi: 0, lo: 18446744073709551615, want: "18446744073709551615"},
		{name: "one in high half", hi: 1, lo: 0, want: "18446744073709551616"},
		{name: "both halves", hi: 1, lo: 1, want: "18446744073709551617"},
		{name: "minus one", hi: -1, lo: 18446744073709551615, want: "-1"},
		{name: "negative amount", hi: -1, lo: 18446744073709551615 - 999, want: "-1000"},
		{name: "i128 max", hi: 9223372036854775807, lo: 18446744073709551615, want: "170141183460469231731687303715884105727"},
		{name: "i128 min", hi: -9223372036854775808, lo: 0, want: "-170141183460469231731687303715884105728"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := I128String(tc.hi, tc.lo); got != tc.want {
				t.Fatalf("I128String(%d, %d) = %s, want %s", tc.hi, tc.lo, got, tc.want)
			}
			// The reconstruction must agree with hi*2^64 + lo computed
			// independently at arbitrary precision.
			independent := new(big.Int).Mul(big.NewInt(tc.hi), new(big.Int).Lsh(big.NewInt(1), 64))
			independent.Add(independent, new(big.Int).SetUint64(tc.lo))
			if independent.String() != tc.want {
				t.Fatalf("independent check disagrees: %s vs %s", independent, tc.want)
			}
		})
	}
}

func TestSplitI128RoundTrip(t *testing.T) {
	for _, s := range []string{
		"0",
		"1",
		"-1",
		"10000000000",
		"1000000000000000000000000000",
		"-1000000000000000000000000000",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105728",
	} {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatalf("bad test input %q", s)
		}
		hi, lo, err := SplitI128(v)
		if err != nil {
			t.Fatalf("SplitI128(%s): %v", s, err)
		}
		if got := JoinI128(hi, lo); got.Cmp(v) != 0 {
			t.Fatalf("round trip of %s produced %s (hi=%d lo=%d)", s, got, hi, lo)
		}
	}
}

func TestSplitI128RejectsOutOfRange(t *testing.T) {
	over := new(big.Int).Lsh(big.NewInt(1), 127)
	if _, _, err := SplitI128(over); err == nil {
		t.Fatalf("expected range error for 2^127")
	}
	under := new(big.Int).Neg(new(big.Int).Add(over, big.NewInt(1)))
	if _, _, err := SplitI128(under); err == nil {
		t.Fatalf("expected range error for -(2^127+1)")
	}
	if _, _, err := SplitI128(nil); err == nil {
		t.Fatalf("expected error for nil value")
	}
}

func TestParseI128String(t *testing.T) {
	hi, lo, err := ParseI128String("18446744073709551617")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hi != 1 || lo != 1 {
		t.Fatalf("got hi=%d lo=%d, want 1/1", hi, lo)
	}
	if _, _, err := ParseI128String("not-a-number"); err == nil {
		t.Fatalf("expected parse error")
	}
}
