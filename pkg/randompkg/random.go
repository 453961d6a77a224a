// Package randompkg provides functionality for generating random application items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// AccountNumberPrefix is the fixed series every account number starts with.
const AccountNumberPrefix = "009"

// AccountNumberLength is the total number of digits of an account number.
const AccountNumberLength = 9

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer in [min, max].
func Int64Between(min, max int64) int64 {
	return min + Intn(int(max-min+1))
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	k := len(set)

	for i := 0; i < n; i++ {
		c := set[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// Digits generates a random string of n decimal digits.
func Digits(n int) string {
	return fromSet(digits, n)
}

// AccountNumber generates a candidate account number: the fixed prefix followed by random digits.
//
// Uniqueness is not checked here; the store enforces it.
func AccountNumber() string {
	return AccountNumberPrefix + Digits(AccountNumberLength-len(AccountNumberPrefix))
}

// NationalID generates a random 8 digit national ID.
func NationalID() string {
	return Digits(8)
}

// FullName generates a random full name.
func FullName() string {
	return String(6) + " " + String(8)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
