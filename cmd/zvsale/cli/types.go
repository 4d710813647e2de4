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

package cli

import (
	"github.com/zvchain/zvsale/core"
	"github.com/zvchain/zvsale/middleware/types"
)

// Result status codes
const (
	StatusSuccess  = 0
	StatusFailed   = -1 // the request could not be served
	StatusRejected = 1  // the operation ran and was rejected, data holds its receipt
)

// Result is the envelope of every rpc response
type Result struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
}

func (r *Result) IsSuccess() bool {
	return r.Status == StatusSuccess
}

func successResult(data interface{}) *Result {
	return &Result{
		Message: "success",
		Status:  StatusSuccess,
		Data:    data,
	}
}

func failResult(err string) *Result {
	return &Result{
		Message: err,
		Status:  StatusFailed,
		Data:    nil,
	}
}

func rejectedResult(r *types.Receipt) *Result {
	return &Result{
		Message: r.Error,
		Status:  StatusRejected,
		Data:    r,
	}
}

// TxRequest is the json body of POST /tx. Amounts accept the unit suffixes of common.ParseCoin
type TxRequest struct {
	Type         string   `json:"type"`
	Source       string   `json:"source"`
	Target       string   `json:"target,omitempty"`
	Value        string   `json:"value,omitempty"`
	Now          int64    `json:"now,omitempty"` // evaluation time, refused unless the server allows time override
	Participant  string   `json:"participant,omitempty"`
	Referrer     string   `json:"referrer,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Referrers    []string `json:"referrers,omitempty"`
	Start        int64    `json:"start,omitempty"`
	Duration     uint64   `json:"duration,omitempty"`
	ReleaseTime  int64    `json:"releaseTime,omitempty"`
}

// VestingView is the response of GET /vesting/{addr}
type VestingView struct {
	*core.VestingSchedule
	Releasable string `json:"releasable"`
}

// AmountView wraps a single amount of an account
type AmountView struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// ReferralView is the response of GET /referral/{addr}
type ReferralView struct {
	Participant string `json:"participant"`
	Referrer    string `json:"referrer"`
}
