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
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Units of the native fund amounts
const (
	RA  uint64 = 1
	KRA        = 1000
	MRA        = 1000000
	ZVC        = 1000000000
)

var (
	ErrEmptyStr   = fmt.Errorf("empty string")
	ErrIllegalStr = fmt.Errorf("illegal amount string")
)

var re = regexp.MustCompile("^([0-9]+)(ra|kra|mra|zvc)?$")

// ParseCoin parses an amount like "150zvc" or "12000kra" to its value in ra.
// A bare number is taken as ra
func ParseCoin(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, ErrEmptyStr
	}

	ret := re.FindStringSubmatch(s)
	if len(ret) != 3 {
		return nil, ErrIllegalStr
	}
	num, ok := new(big.Int).SetString(ret[1], 10)
	if !ok {
		return nil, ErrIllegalStr
	}
	unit := RA
	switch ret[2] {
	case "kra":
		unit = KRA
	case "mra":
		unit = MRA
	case "zvc":
		unit = ZVC
	}
	return num.Mul(num, new(big.Int).SetUint64(unit)), nil
}

// ZVC2RA converts the whole zvc amount to ra
func ZVC2RA(v uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(v), new(big.Int).SetUint64(ZVC))
}

// RA2ZVC converts the ra amount to zvc for displaying
func RA2ZVC(v *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), new(big.Float).SetUint64(ZVC)).Float64()
	return f
}
