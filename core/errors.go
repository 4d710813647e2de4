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

package core

import "errors"

// Rejections of sale operations. Every rejected operation leaves the state untouched
var (
	ErrNotStarted         = errors.New("sale not started")
	ErrSaleEnded          = errors.New("sale ended")
	ErrAlreadyFinalized   = errors.New("sale already finalized")
	ErrBelowMinimum       = errors.New("contribution below minimum")
	ErrStageInactive      = errors.New("no active stage")
	ErrHardCapExceeded    = errors.New("hard cap exceeded")
	ErrNotYetEligible     = errors.New("sale not yet eligible for finalization")
	ErrNotRefundable      = errors.New("sale not refunding")
	ErrNothingContributed = errors.New("nothing contributed")

	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid stage transition")

	ErrAlreadySet      = errors.New("referral already set")
	ErrStageIneligible = errors.New("referral only allowed in the first stage")
	ErrSelfReferral    = errors.New("self referral")

	ErrMintingClosed       = errors.New("minting closed")
	ErrInsufficientReserve = errors.New("insufficient reserve")
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrTooEarly         = errors.New("release time not reached")
	ErrAlreadyReleased  = errors.New("already released")
	ErrNothingToRelease = errors.New("nothing to release")
	ErrAlreadyGranted   = errors.New("already granted")

	ErrInvalidArgument  = errors.New("invalid argument")
	ErrConfigMismatch   = errors.New("config mismatch with the stored genesis config")
	ErrUnknownOperation = errors.New("unknown operation")
)
