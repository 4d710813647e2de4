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

package log

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLogFileWriter_Rotate(t *testing.T) {
	dir, err := ioutil.TempDir("", "zvsale_log")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "rotate")
	w := newLogFileWriter(name, 16, 2)
	if w == nil {
		t.Fatal("writer not created")
	}
	line := []byte("0123456789abcdef0123\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatal(err)
		}
	}
	// each write exceeds the max size, so the oldest files are removed
	if _, err := os.Stat(name + "_0.log"); !os.IsNotExist(err) {
		t.Errorf("oldest log file should be removed")
	}
	if _, err := os.Stat(name + "_3.log"); err != nil {
		t.Errorf("current log file missing: %v", err)
	}
}

func TestInit(t *testing.T) {
	dir, err := ioutil.TempDir("", "zvsale_log")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	defer func() {
		DefaultLogger = logrus.StandardLogger()
		CoreLogger = logrus.StandardLogger()
		StorageLogger = logrus.StandardLogger()
		RPCLogger = logrus.StandardLogger()
		MonitorLogger = logrus.StandardLogger()
	}()

	if err := Init(dir, "warn"); err != nil {
		t.Fatal(err)
	}
	CoreLogger.WithFields(logrus.Fields{
		"test":  "core",
		"count": 1,
	}).Warn("hello world")

	bs, err := ioutil.ReadFile(filepath.Join(dir, "core_0.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bs), `"msg":"hello world"`) {
		t.Errorf("json log line not written: %s", bs)
	}
	if CoreLogger.GetLevel() != logrus.WarnLevel {
		t.Errorf("wanted: %v, got: %v", logrus.WarnLevel, CoreLogger.GetLevel())
	}

	if err := Init(dir, "verbose"); err == nil {
		t.Errorf("unknown level should be rejected")
	}
}
