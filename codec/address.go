package codec

import (
	"encoding/base32"
	"fmt"
)

// Ledger addresses are strkeys: base32(version byte || 32-byte payload ||
// 16-bit checksum). Account keys carry version byte 0x30 ('G'), contract
// identifiers 0x10 ('C'). The checksum is CRC16-XMODEM over the version byte
// and payload, appended little-endian.
const (
	strkeyLen             = 56
	strkeyVersionAccount  = 6 << 3
	strkeyVersionContract = 2 << 3
)

var strkeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ValidateAddress rejects strings that are not well-formed account or
// contract strkeys. Addresses come from user input and external records, so
// they are checked before they reach the wire.
func ValidateAddress(s string) error {
	if len(s) != strkeyLen {
		return fmt.Errorf("codec: address %q has length %d, want %d", s, len(s), strkeyLen)
	}
	decoded, err := strkeyEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("codec: address %q is not base32: %w", s, err)
	}
	if len(decoded) != 35 {
		return fmt.Errorf("codec: address %q decodes to %d bytes, want 35", s, len(decoded))
	}
	version := decoded[0]
	if version != strkeyVersionAccount && version != strkeyVersionContract {
		return fmt.Errorf("codec: address %q has unsupported version byte %#x", s, version)
	}
	payload := decoded[:33]
	want := crc16XModem(payload)
	got := uint16(decoded[33]) | uint16(decoded[34])<<8
	if want != got {
		return fmt.Errorf("codec: address %q fails its checksum", s)
	}
	return nil
}

// IsContractAddress reports whether a valid strkey names a contract rather
// than an account.
func IsContractAddress(s string) bool {
	if ValidateAddress(s) != nil {
		return false
	}
	decoded, err := strkeyEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	return decoded[0] == strkeyVersionContract
}

// StrkeyPayload returns the 32-byte payload of a valid strkey.
func StrkeyPayload(s string) ([]byte, error) {
	if err := ValidateAddress(s); err != nil {
		return nil, err
	}
	decoded, err := strkeyEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 32)
	copy(payload, decoded[1:33])
	return payload, nil
}

// FormatStrkey renders a version byte and 32-byte payload as a strkey.
// Used by tests and tooling that fabricate addresses.
func FormatStrkey(version byte, payload [32]byte) string {
	raw := make([]byte, 0, 35)
	raw = append(raw, version)
	raw = append(raw, payload[:]...)
	sum := crc16XModem(raw)
	raw = append(raw, byte(sum), byte(sum>>8))
	return strkeyEncoding.EncodeToString(raw)
}

func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
