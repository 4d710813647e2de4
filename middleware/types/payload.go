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
	"fmt"

	"github.com/vmihailenco/msgpack"
	"github.com/zvchain/zvsale/common"
)

// ReferralPayload links a participant to its referrer
type ReferralPayload struct {
	Participant common.Address `msgpack:"p"`
	Referrer    common.Address `msgpack:"r"`
}

// ReferralBatchPayload holds pairwise participant/referrer lists
type ReferralBatchPayload struct {
	Participants []common.Address `msgpack:"ps"`
	Referrers    []common.Address `msgpack:"rs"`
}

// VestingPayload describes a linear schedule, the amount is the transaction value
type VestingPayload struct {
	Start    int64  `msgpack:"s"`
	Duration uint64 `msgpack:"d"`
}

// TimelockPayload describes a single date release, the amount is the transaction value
type TimelockPayload struct {
	ReleaseTime int64 `msgpack:"rt"`
}

// EncodePayload serializes the payload for the Data field of a transaction
func EncodePayload(payload interface{}) ([]byte, error) {
	return msgpack.Marshal(payload)
}

// DecodePayload deserializes the Data field into payload
func DecodePayload(data []byte, payload interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("empty payload")
	}
	return msgpack.Unmarshal(data, payload)
}
