// ABOUTME: ULID codec: order-preserving base-32 time encoding, crypto/rand random
// ABOUTME: field, and validation for the 26-symbol identifiers used as primary keys.
package ulid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// Alphabet is the Crockford base-32 symbol set. I, L, O, and U are excluded
// to avoid visual ambiguity when identifiers are transcribed by hand.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	// TimeLen is the number of symbols encoding the 48-bit millisecond timestamp.
	TimeLen = 10
	// RandLen is the number of symbols encoding the 80-bit random field.
	RandLen = 16
	// EncodedLen is the total identifier length.
	EncodedLen = TimeLen + RandLen

	// maxTimestamp is the largest millisecond count representable in 48 bits
	// (roughly the year 10895).
	maxTimestamp = int64(1)<<48 - 1
)

// ErrTimestampRange indicates a timestamp outside the 48-bit encodable range.
// Hitting it implies a corrupted clock, not a normal runtime condition;
// callers should propagate it, not retry.
var ErrTimestampRange = errors.New("ulid: timestamp outside 48-bit range")

// FormatError indicates a string that is not a structurally valid identifier
// or time field.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ulid: invalid %q: %s", e.Input, e.Reason)
}

// decodeTable maps an ASCII byte to its base-32 value, or 0xFF for bytes
// outside the alphabet. Lowercase letters map like their uppercase forms;
// OR-ing 0x20 onto a digit is a no-op, so digits need no special case.
var decodeTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 0xFF
	}
	for v := 0; v < len(Alphabet); v++ {
		c := Alphabet[v]
		t[c] = byte(v)
		t[c|0x20] = byte(v)
	}
	return t
}()

// EncodeTime encodes a millisecond timestamp as a 10-symbol base-32 string,
// most significant symbol first, zero-padded to exactly TimeLen symbols.
// Because every timestamp encodes at fixed width, plain string comparison of
// two encodings matches numeric comparison of their timestamps.
func EncodeTime(ms int64) (string, error) {
	if ms < 0 || ms > maxTimestamp {
		return "", ErrTimestampRange
	}
	var buf [TimeLen]byte
	v := uint64(ms)
	for i := TimeLen - 1; i >= 0; i-- {
		buf[i] = Alphabet[v%32]
		v /= 32
	}
	return string(buf[:]), nil
}

// DecodeTime decodes a 10-symbol time field back to a millisecond count.
// Input is case-insensitive.
func DecodeTime(s string) (int64, error) {
	if len(s) != TimeLen {
		return 0, &FormatError{Input: s, Reason: fmt.Sprintf("time field must be %d symbols", TimeLen)}
	}
	var v int64
	for i := 0; i < TimeLen; i++ {
		d := decodeTable[s[i]]
		if d == 0xFF {
			return 0, &FormatError{Input: s, Reason: fmt.Sprintf("symbol %q not in alphabet", s[i])}
		}
		v = v*32 + int64(d)
	}
	return v, nil
}

// randomField draws enough bytes from crypto/rand for n base-32 symbols and
// unpacks them into 5-bit groups. Group i occupies bit offset i*5 of the byte
// stream, so a group either sits inside one byte or spans two consecutive
// bytes; the two cases are handled separately.
func randomField(n int) string {
	byteLen := (n*5 + 7) / 8
	raw := make([]byte, byteLen)
	if _, err := rand.Read(raw); err != nil {
		// Entropy exhaustion is a fatal environment error, not a condition
		// callers can recover from.
		panic(fmt.Sprintf("ulid: reading entropy: %v", err))
	}

	out := make([]byte, n)
	for i := 0; i < n; i++ {
		bit := i * 5
		byteIdx := bit / 8
		bitIdx := bit % 8

		var v byte
		if bitIdx <= 3 {
			// Group fits inside one byte: shift down, mask 5 bits.
			v = (raw[byteIdx] >> (3 - bitIdx)) & 0x1F
		} else {
			// Group spans two bytes: low bits of the first byte become the
			// high bits of the group, topped up from the next byte.
			fromFirst := 8 - bitIdx
			v = (raw[byteIdx] & (1<<fromFirst - 1)) << (5 - fromFirst)
			if byteIdx+1 < byteLen {
				v |= raw[byteIdx+1] >> (8 - (5 - fromFirst))
			}
		}
		out[i] = Alphabet[v]
	}
	return string(out)
}

// Generate mints a new 26-symbol identifier from the current wall clock and
// fresh crypto/rand entropy. Safe for concurrent use from any number of
// goroutines; each call reads the clock and draws randomness independently.
// Identifiers minted within the same millisecond have no relative ordering
// guarantee.
func Generate() string {
	tp, err := EncodeTime(time.Now().UnixMilli())
	if err != nil {
		// Unreachable with a sane clock until the year 10895.
		panic(err)
	}
	return tp + randomField(RandLen)
}

// GenerateAt mints an identifier with a caller-supplied timestamp. Exposed
// for composing identifiers with a known time field (backfills, tests).
func GenerateAt(ms int64) (string, error) {
	tp, err := EncodeTime(ms)
	if err != nil {
		return "", err
	}
	return tp + randomField(RandLen), nil
}

// IsValid reports whether s is a structurally well-formed identifier: exactly
// 26 symbols, every one in the alphabet. Case-insensitive; the canonical form
// is uppercase. IsValid never errors and does not inspect the timestamp value.
func IsValid(s string) bool {
	if len(s) != EncodedLen {
		return false
	}
	for i := 0; i < EncodedLen; i++ {
		if decodeTable[s[i]] == 0xFF {
			return false
		}
	}
	return true
}

// Timestamp extracts the millisecond timestamp from a full identifier,
// validating structure first.
func Timestamp(s string) (int64, error) {
	if !IsValid(s) {
		return 0, &FormatError{Input: s, Reason: "not a valid identifier"}
	}
	return DecodeTime(s[:TimeLen])
}

// Time returns the identifier's creation instant as a UTC time.Time. The
// codec stays timezone-naive; callers wanting wall-clock display localize
// the result themselves (see core.Localize).
func Time(s string) (time.Time, error) {
	ms, err := Timestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
