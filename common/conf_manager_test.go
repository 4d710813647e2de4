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

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func newTestConf(t *testing.T) (ConfManager, string) {
	dir, err := ioutil.TempDir("", "zvsale_conf")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "zvsale_test.ini")
	cm, err := NewConfINIManager(path)
	if err != nil {
		t.Fatal(err)
	}
	return cm, dir
}

func TestConfFileManager_Get_SetString(t *testing.T) {
	cm, dir := newTestConf(t)
	defer os.RemoveAll(dir)

	cm.SetString("test", "hello", "world")
	s := cm.GetString("test", "hello", "")
	if s != "world" {
		t.Errorf("get value error, wanted: world, got: %v", s)
	}
	if v := cm.GetString("test", "missing", "dft"); v != "dft" {
		t.Errorf("default value not returned, got: %v", v)
	}
}

func TestConfFileManager_Get_SetBool(t *testing.T) {
	cm, dir := newTestConf(t)
	defer os.RemoveAll(dir)

	cm.SetBool("test", "hello", true)
	if !cm.GetBool("test", "hello", false) {
		t.Error("get value error")
	}
}

func TestConfFileManager_Get_SetInt(t *testing.T) {
	cm, dir := newTestConf(t)
	defer os.RemoveAll(dir)

	cm.SetInt("test", "hello", 1)
	if s := cm.GetInt("test", "hello", 0); s != 1 {
		t.Errorf("get value error, wanted: 1, got: %v", s)
	}
	cm.Del("test", "hello")
	if s := cm.GetInt("test", "hello", 7); s != 7 {
		t.Errorf("deleted key should fall back to default, got: %v", s)
	}
}

func TestSectionConfManager(t *testing.T) {
	cm, dir := newTestConf(t)
	defer os.RemoveAll(dir)

	sm := cm.GetSectionManager("sale")
	sm.SetString("Wallet", "zv01")
	if v := cm.GetString("sale", "wallet", ""); v != "zv01" {
		t.Errorf("wanted: zv01, got: %v", v)
	}

	// reload from file
	reloaded, err := NewConfINIManager(filepath.Join(dir, "zvsale_test.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if v := reloaded.GetString("sale", "wallet", ""); v != "zv01" {
		t.Errorf("value not persisted, got: %v", v)
	}
}
