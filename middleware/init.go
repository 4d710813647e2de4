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

// Package middleware provides the event bus and the time service shared by
// the sale engine, the rpc server and the monitor.
package middleware

import (
	"github.com/zvchain/zvsale/middleware/notify"
	"github.com/zvchain/zvsale/middleware/time"
)

// InitMiddleware creates the global bus and time service. The ntp calibration
// is skipped when servers is empty
func InitMiddleware(ntpServers []string) error {
	notify.BUS = notify.NewBus()
	if len(ntpServers) == 0 {
		time.TSInstance = time.NewLocalTime()
		return nil
	}
	time.InitTimeSync(ntpServers)
	return nil
}
