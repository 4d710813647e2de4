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

import "errors"

var (
	// ErrUnConnected means the console has no node to talk to
	ErrUnConnected = errors.New("please connect to a node first")
	// ErrNoAccount means no account was selected in the console
	ErrNoAccount = errors.New("please select an account with use")
	// ErrUnknownType means the tx type name is not supported
	ErrUnknownType = errors.New("unknown transaction type")
	// ErrTimeOverride means the request carried its own time but the server only uses its clock
	ErrTimeOverride = errors.New("request time not allowed, the server clock is used")
)
