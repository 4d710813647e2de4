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

// Package log holds the named loggers of each subsystem.
// They write to stderr until Init redirects them to rotated json files.
package log

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var RusPlus *Logrusplus

var (
	DefaultLogger = logrus.StandardLogger()
	CoreLogger    = logrus.StandardLogger()
	StorageLogger = logrus.StandardLogger()
	RPCLogger     = logrus.StandardLogger()
	MonitorLogger = logrus.StandardLogger()
)

// Init redirects all loggers to files under logsDir. An empty level keeps the build default
func Init(logsDir string, level string) error {
	lvl := Level
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return err
	}
	RusPlus = New()

	DefaultLogger = RusPlus.Logger(filepath.Join(logsDir, "default"), MaxFileSize, DefaultMaxFiles, lvl)
	CoreLogger = RusPlus.Logger(filepath.Join(logsDir, "core"), MaxFileSize, CoreMaxFiles, lvl)
	StorageLogger = RusPlus.Logger(filepath.Join(logsDir, "storage"), MaxFileSize, DefaultMaxFiles, lvl)
	RPCLogger = RusPlus.Logger(filepath.Join(logsDir, "rpc"), MaxFileSize, DefaultMaxFiles, lvl)
	MonitorLogger = RusPlus.Logger(filepath.Join(logsDir, "monitor"), MaxFileSize, DefaultMaxFiles, lvl)
	return nil
}
