package wallet

import (
	"errors"
	"fmt"
	"strings"
)

// Minimal bech32 encoder (BIP-173), enough to render account addresses.
// Decoding and error correction are not needed here.

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32Generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func bech32Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= bech32Generator[i]
			}
		}
	}
	return chk
}

func bech32HRPExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func bech32CreateChecksum(hrp string, data []byte) []byte {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	polymod := bech32Polymod(values) ^ 1
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((polymod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

// convertBits regroups 8-bit bytes into 5-bit groups with padding.
func convertBits(data []byte) ([]byte, error) {
	var out []byte
	acc := uint32(0)
	bits := uint(0)
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, byte((acc>>bits)&31))
		}
	}
	if bits > 0 {
		out = append(out, byte((acc<<(5-bits))&31))
	}
	return out, nil
}

// bech32Encode encodes a byte payload under a human-readable prefix.
func bech32Encode(hrp string, payload []byte) (string, error) {
	if hrp == "" {
		return "", errors.New("empty bech32 prefix")
	}

	data, err := convertBits(payload)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range append(data, bech32CreateChecksum(hrp, data)...) {
		if int(v) >= len(bech32Charset) {
			return "", fmt.Errorf("invalid data value %d", v)
		}
		sb.WriteByte(bech32Charset[v])
	}
	return sb.String(), nil
}
