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

package types

import (
	"math/big"

	"github.com/zvchain/zvsale/common"
)

// AccountDB is the journaled state every sale component reads and writes.
// Changes made after Snapshot can be discarded with RevertToSnapshot
type AccountDB interface {
	GetBalance(common.Address) *big.Int
	AddBalance(common.Address, *big.Int)
	SubBalance(common.Address, *big.Int)
	Transfer(common.Address, common.Address, *big.Int)
	CanTransfer(common.Address, *big.Int) bool

	GetData(common.Address, []byte) []byte
	SetData(common.Address, []byte, []byte)
	RemoveData(common.Address, []byte)

	Exist(common.Address) bool

	RevertToSnapshot(int)
	Snapshot() int
}
