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

package account

import (
	"math/big"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

type transitionEntry interface {
	undo(*AccountDB)
}

// transition is the journal of changes since the last commit, undone in reverse order
type transition []transitionEntry

type (
	createObjectChange struct {
		account *common.Address
	}
	balanceChange struct {
		account   *common.Address
		prev      *big.Int
		prevDirty bool
	}
	storageChange struct {
		account   *common.Address
		key       string
		prevalue  []byte
		prevDirty bool
	}
)

func (ch createObjectChange) undo(s *AccountDB) {
	s.accountObjects.Delete(*ch.account)
	s.accountObjectsDirty.Remove(*ch.account)
}

func (ch balanceChange) undo(s *AccountDB) {
	obj := s.getAccountObject(*ch.account)
	obj.data.Balance = types.BigIntFrom(ch.prev)
	obj.dirtyAccount = ch.prevDirty
	s.cleanDirty(obj)
}

func (ch storageChange) undo(s *AccountDB) {
	obj := s.getAccountObject(*ch.account)
	if ch.prevDirty {
		obj.dirtyStorage[ch.key] = ch.prevalue
	} else {
		delete(obj.dirtyStorage, ch.key)
	}
	s.cleanDirty(obj)
}
