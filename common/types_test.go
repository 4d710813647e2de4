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

package common

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	wrongAddr := []string{
		"",
		"zv",
		"0x123",
		" zved890e78fc5d07e85e66b7926d8370c095570abb5259e346438abd3ea7a56a8",
		"zved890e78fc5d07e85e66b7926d8370 095570abb5259e346438abd3ea7a56a8a",
		"zved890e78fc5d07e85e66b7926d8370c095570abb5259e346438abd3ea7a56a8g",
	}
	rightAddr := []string{
		"zved890e78fc5d07e85e66b7926d8370c095570abb5259e346438abd3ea7a56a8a",
		"zVed890e78fc5d07e85e66b7926d8370c095570abb5259e346438abd3ea7a56a8a",
		"ZVed890e78fc5d07e85E66b7926d8370c095570abb5259e346438Abd3ea7a56a8a",
	}
	for _, addr := range wrongAddr {
		if ValidateAddress(addr) {
			t.Errorf("wanted false; got true! %v", addr)
		}
	}
	for _, addr := range rightAddr {
		if !ValidateAddress(addr) {
			t.Errorf("wanted true; got false! %v", addr)
		}
	}
}

func TestAddressJSON(t *testing.T) {
	addr := BigToAddress(big.NewInt(0xabcdef))
	bs, err := json.Marshal(addr)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Address
	if err := json.Unmarshal(bs, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != addr {
		t.Errorf("wanted: %v, got: %v", addr, decoded)
	}
	if StringToAddress(addr.AddrPrefixString()) != addr {
		t.Errorf("string conversion mismatch")
	}
	if err := json.Unmarshal([]byte(`"zv12"`), &decoded); err == nil {
		t.Errorf("short address should be rejected")
	}
}

func TestIsStoreAddress(t *testing.T) {
	if !IsStoreAddress(SaleStoreAddr) {
		t.Errorf("sale store address not recognized")
	}
	if IsStoreAddress(StringToAddress("zved890e78fc5d07e85e66b7926d8370c095570abb5259e346438abd3ea7a56a8a")) {
		t.Errorf("normal address recognized as store address")
	}
}

func TestBigBytes(t *testing.T) {
	if len(BigToBytes(big.NewInt(0))) != 0 {
		t.Errorf("zero should be encoded as empty bytes")
	}
	v := new(big.Int).Lsh(big.NewInt(1), 100)
	if BytesToBig(BigToBytes(v)).Cmp(v) != 0 {
		t.Errorf("wanted: %v, got: %v", v, BytesToBig(BigToBytes(v)))
	}
	if BytesToBig(nil).Sign() != 0 {
		t.Errorf("nil should decode to zero")
	}
}
