//   Copyright (C) 2018 ZVChain
//
//   This program is free software: you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation, either version 3 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License
//   along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package common provides common data structures and common utility functions.
package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"
)

const HexPrefix = "0x"
const AddrPrefix = "zv"

const (
	AddressLength = 32 //Length of Address( golang.SHA3，256-bit)
	HashLength    = 32 //Length of Hash (golang.SHA3, 256-bit)。
)

// Special account address
// They hold the records of each sale component and are never used as a participant
var (
	hashT    = reflect.TypeOf(Hash{})
	addressT = reflect.TypeOf(Address{})

	LedgerStoreAddr   = BigToAddress(big.NewInt(1)) // token balances, supply and the reserved pool
	SaleStoreAddr     = BigToAddress(big.NewInt(2)) // sale state and contributions, its fund balance is the escrow
	ScheduleStoreAddr = BigToAddress(big.NewInt(3)) // current stage index, start and deadline
	ReferralStoreAddr = BigToAddress(big.NewInt(4)) // participant -> referrer links
	VestingStoreAddr  = BigToAddress(big.NewInt(5)) // vesting schedules
	TimelockStoreAddr = BigToAddress(big.NewInt(6)) // timelock entries
	ConfigStoreAddr   = BigToAddress(big.NewInt(7)) // sale configuration written at genesis
)

var storeAddrs = []Address{LedgerStoreAddr, SaleStoreAddr, ScheduleStoreAddr, ReferralStoreAddr,
	VestingStoreAddr, TimelockStoreAddr, ConfigStoreAddr}

var (
	PrefixBalance      = []byte("b")
	PrefixContribution = []byte("c")
	KeyMeta            = []byte("meta")
	KeyState           = []byte("state")
	KeyConfig          = []byte("config")
)

// IsStoreAddress checks if the address is one of the reserved store addresses
func IsStoreAddress(addr Address) bool {
	for _, a := range storeAddrs {
		if a == addr {
			return true
		}
	}
	return false
}

func ShortHex(hex string) string {
	if len(hex) < 12 {
		return hex
	}
	return hex[:6] + "-" + hex[len(hex)-6:]
}

// Address data struct
type Address [AddressLength]byte

// MarshalJSON encodes the address as byte array with json format
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte("\"" + a.AddrPrefixString() + "\""), nil
}

// BytesToAddress returns the Address imported from the input byte array
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// BigToAddress returns the address of the input big integer assignment
func BigToAddress(b *big.Int) Address { return BytesToAddress(b.Bytes()) }

// StringToAddress returns the address of the input string assignment
func StringToAddress(s string) Address {
	s = strings.TrimSpace(s)
	if len(s) > len(AddrPrefix) {
		if AddrPrefix == strings.ToLower(s[0:len(AddrPrefix)]) {
			s = s[len(AddrPrefix):]
		}
		if len(s)%2 == 1 {
			s = "0" + s
		}
	}
	bs, _ := hex.DecodeString(s)
	return BytesToAddress(bs)
}

// ValidateAddress checks if the string is a legal zv address
func ValidateAddress(s string) bool {
	if len(s) != len(AddrPrefix)+2*AddressLength {
		return false
	}
	if strings.ToLower(s[:len(AddrPrefix)]) != AddrPrefix {
		return false
	}
	_, err := hex.DecodeString(s[len(AddrPrefix):])
	return err == nil
}

// SetBytes returns the address of the input byte array assignment
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b[:])
}

// Set sets other to a
func (a *Address) Set(other Address) {
	copy(a[:], other[:])
}

// UnmarshalJSON parses an address in zv prefixed hex syntax with json format.
func (a *Address) UnmarshalJSON(input []byte) error {
	if len(input) < 2 || input[0] != '"' || input[len(input)-1] != '"' {
		return &invalidTypeError{addressT}
	}
	s := string(input[1 : len(input)-1])
	if !ValidateAddress(s) {
		return ErrInvalidAddress
	}
	*a = StringToAddress(s)
	return nil
}

// AddrPrefixString returns the hex string representation of a with the zv prefix
func (a Address) AddrPrefixString() string {
	return ToAddrHex(a.Bytes())
}

// Bytes returns the byte array representation of a
func (a Address) Bytes() []byte { return a[:] }

// BigInteger returns the big integer representation of a
func (a Address) BigInteger() *big.Int { return new(big.Int).SetBytes(a[:]) }

// Hash converts a to hash
func (a Address) Hash() Hash { return BytesToHash(a[:]) }

// IsZero checks if all bytes of the address are zero
func (a Address) IsZero() bool { return a == Address{} }

func (a Address) String() string {
	return ShortHex(a.AddrPrefixString())
}

///////////////////////////////////////////////////////////////////////////////
// Hash data struct (256-bits)
type Hash [HashLength]byte

var EmptyHash = Hash{}

// BytesToHash
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

// Get the string representation of the underlying hash
func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return ToHex(h[:]) }

// TerminalString formats a string for console output during logging.
func (h Hash) TerminalString() string {
	return fmt.Sprintf("%x…%x", h[:3], h[29:])
}

// MarshalText returns the hex representation of h.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	s := string(input)
	if !IsHex(s) {
		return &invalidTypeError{hashT}
	}
	b := FromHex(s)
	if len(b) != HashLength {
		return fmt.Errorf("hex string has length %d, want %d for Hash", len(b)*2, HashLength*2)
	}
	h.SetBytes(b)
	return nil
}

// SetBytes sets the hash to the value of b. If b is larger than len(h), 'b' will be cropped (from the left).
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}

	copy(h[HashLength-len(b):], b)
}

func (h Hash) String() string {
	return ShortHex(h.Hex())
}

type invalidTypeError struct {
	typ reflect.Type
}

func (e *invalidTypeError) Error() string {
	return "invalid input for Go value of type " + e.typ.String()
}

var (
	Big0   = big.NewInt(0)
	Big100 = big.NewInt(100)

	ErrInvalidAddress = errors.New("invalid address format")
)

const (
	MaxInt64  = 1<<63 - 1
	MaxUint64 = 1<<64 - 1
)
