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

package notify

import (
	"github.com/zvchain/zvsale/middleware/types"
)

// SaleEventMessage carries one event emitted by an executed operation together with its receipt
type SaleEventMessage struct {
	Receipt *types.Receipt
	Event   *types.Event
}

func (m *SaleEventMessage) GetRaw() []byte {
	return []byte{}
}

func (m *SaleEventMessage) GetData() interface{} {
	return m.Event
}

// RejectedMessage is published when an operation is rejected
type RejectedMessage struct {
	Receipt *types.Receipt
}

func (m *RejectedMessage) GetRaw() []byte {
	return []byte{}
}

func (m *RejectedMessage) GetData() interface{} {
	return m.Receipt
}
