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

//const SaleVersion = "0.1.0"	//stage schedule, referrals and escrow
//const SaleVersion = "0.2.0"	//vesting and timelock books over the reserved pool

const SaleVersion = "0.3.0"

// StateDataVersion is bumped whenever the layout of the persisted records changes
const StateDataVersion = 1
