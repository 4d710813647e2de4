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
	"encoding/json"
	"testing"
)

func TestParseResult(t *testing.T) {
	ret, err := parseResult([]byte(`{"message":"success","status":0,"data":{"address":"zv01","amount":"12"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !ret.IsSuccess() || ret.Message != "success" {
		t.Errorf("unexpected result %+v", ret)
	}
	raw, ok := ret.Data.(json.RawMessage)
	if !ok {
		t.Fatalf("data should be kept raw: %T", ret.Data)
	}
	if string(raw) != `{"address":"zv01","amount":"12"}` {
		t.Errorf("wanted: %v, got: %s", `{"address":"zv01","amount":"12"}`, raw)
	}

	ret, err = parseResult([]byte(`{"message":"no referrer","status":-1,"data":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if ret.Status != StatusFailed || ret.Data != nil {
		t.Errorf("unexpected result %+v", ret)
	}
}

func TestParseResult_Invalid(t *testing.T) {
	for _, body := range []string{"", "404 page not found", `{"message":"x"}`} {
		if _, err := parseResult([]byte(body)); err == nil {
			t.Errorf("parse %q should fail", body)
		}
	}
}

func TestRemoteClient_Connect(t *testing.T) {
	rc := NewRemoteClient("", false)
	if ret := rc.Stage(); ret.Status != StatusFailed || ret.Message != ErrUnConnected.Error() {
		t.Errorf("unexpected result %+v", ret)
	}
	rc.Connect("127.0.0.1:8102/")
	if rc.Endpoint() != "http://127.0.0.1:8102" {
		t.Errorf("wanted: %v, got: %v", "http://127.0.0.1:8102", rc.Endpoint())
	}
	rc.Connect("https://sale.example.org")
	if rc.Endpoint() != "https://sale.example.org" {
		t.Errorf("wanted: %v, got: %v", "https://sale.example.org", rc.Endpoint())
	}
}
