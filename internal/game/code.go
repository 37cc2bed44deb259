package game

import "crypto/rand"

// codeAlphabet deliberately omits 0/o/l/1 so codes survive being read aloud
// or copied by hand.
const codeAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

// CodeLength is the number of characters in a shareable game code.
const CodeLength = 6

// NewCode returns a random game code. Uniqueness against live games is the
// caller's job; see UniqueCode.
func NewCode() string {
	buf := make([]byte, CodeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// UniqueCode draws codes until exists reports a free one. With a 31^6 space
// and short-lived games, collisions are rare enough that retrying is cheap.
func UniqueCode(exists func(string) bool) string {
	for {
		code := NewCode()
		if !exists(code) {
			return code
		}
	}
}
