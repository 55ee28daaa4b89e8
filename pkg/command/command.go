// Package command parses the free-text configuration messages received over
// the serial link.
//
// A message may carry any subset of three tokens, in any order:
//
//	active:<run of 0/1>   replace the enabled sensor pattern (MSB first)
//	freq:<run of digits>  request a new poll interval in milliseconds
//	check                 request one out-of-band report sweep
//
// Everything else in the message is ignored. The parser never fails.
package command

import (
	"bytes"
	"strconv"
	"strings"
)

const (
	tokenActive = "active:"
	tokenFreq   = "freq:"
	tokenCheck  = "check"
)

// Update is the set of changes requested by a single message.
// A field that was not present in the message leaves the node configuration
// untouched.
type Update struct {
	// Active is the parsed bit pattern. Bit 0 is the last character of the run.
	Active    uint64
	HasActive bool
	// ActiveWidth is the length of the 0/1 run that produced Active.
	ActiveWidth int

	// Interval is the requested poll interval in milliseconds, unfiltered.
	Interval    uint64
	HasInterval bool

	// Check is set when the message contains the "check" token.
	Check bool
}

// Empty reports whether the update requests no change at all.
func (u Update) Empty() bool {
	return !u.HasActive && !u.HasInterval && !u.Check
}

// Parse scans text for the active, freq and check tokens. Only the first
// occurrence of each token is considered.
func Parse(text []byte) Update {
	var u Update

	if run, ok := runAfter(text, tokenActive, isBit); ok {
		u.Active, u.ActiveWidth = ParseBits(run)
		u.HasActive = true
	}

	if run, ok := runAfter(text, tokenFreq, isDigit); ok {
		// An interval that does not fit into 64 bits is treated as absent.
		if v, err := strconv.ParseUint(string(run), 10, 64); err == nil {
			u.Interval = v
			u.HasInterval = true
		}
	}

	u.Check = bytes.Contains(text, []byte(tokenCheck))

	return u
}

// String renders the update as a message that parses back to the same
// update. An empty update renders as "".
func (u Update) String() string {
	var parts []string
	if u.HasActive {
		width := u.ActiveWidth
		if width <= 0 {
			width = 1
		}
		parts = append(parts, tokenActive+FormatBits(u.Active, width))
	}
	if u.HasInterval {
		parts = append(parts, tokenFreq+strconv.FormatUint(u.Interval, 10))
	}
	if u.Check {
		parts = append(parts, tokenCheck)
	}
	return strings.Join(parts, " ")
}

// ParseBits converts a run of '0'/'1' characters into a bit pattern, most
// significant bit first. Runs longer than 64 characters keep the 64
// low-order bits. Characters other than '1' count as zero.
func ParseBits[T ~string | ~[]byte](run T) (bits uint64, width int) {
	for i := 0; i < len(run); i++ {
		bits <<= 1
		if run[i] == '1' {
			bits |= 1
		}
	}
	return bits, len(run)
}

// FormatBits renders the low width bits of pattern MSB first, the inverse of
// ParseBits.
func FormatBits(pattern uint64, width int) string {
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		if pattern&(1<<uint(width-1-i)) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// runAfter returns the longest run of bytes matching accept that immediately
// follows the first occurrence of token. ok is false when the token is
// missing or the run is empty.
func runAfter(text []byte, token string, accept func(byte) bool) (run []byte, ok bool) {
	idx := bytes.Index(text, []byte(token))
	if idx < 0 {
		return nil, false
	}
	rest := text[idx+len(token):]
	n := 0
	for n < len(rest) && accept(rest[n]) {
		n++
	}
	if n == 0 {
		return nil, false
	}
	return rest[:n], true
}

func isBit(b byte) bool {
	return b == '0' || b == '1'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
