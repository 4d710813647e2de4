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

// defines all of current used event ids
const (
	TokenPurchase    = "token_purchase"
	ReferralSet      = "referral_set"
	StageAdvanced    = "stage_advanced"
	SaleFinalized    = "sale_finalized"
	RefundClaimed    = "refund_claimed"
	VestingGranted   = "vesting_granted"
	VestingReleased  = "vesting_released"
	TimelockGranted  = "timelock_granted"
	TimelockReleased = "timelock_released"
	TokensTransfered = "tokens_transfered"
	ReserveMinted    = "reserve_minted"

	// OperationRejected is published for every operation that failed validation
	OperationRejected = "operation_rejected"
)

// AllEvents lists every event id published by the sale engine
var AllEvents = []string{TokenPurchase, ReferralSet, StageAdvanced, SaleFinalized, RefundClaimed,
	VestingGranted, VestingReleased, TimelockGranted, TimelockReleased, TokensTransfered, ReserveMinted,
	OperationRejected}
