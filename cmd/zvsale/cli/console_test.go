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
	"testing"
)

func TestParseCommandLine(t *testing.T) {
	cases := []struct {
		line string
		args []string
	}{
		{"balance", []string{"balance"}},
		{"  send  -type contribute\t-value 5zvc ", []string{"send", "-type", "contribute", "-value", "5zvc"}},
		{`send -participants "zv01, zv02"`, []string{"send", "-participants", "zv01, zv02"}},
		{`use 'zv03'`, []string{"use", "zv03"}},
		{`say a\ b`, []string{"say", "a b"}},
		{"", nil},
	}
	for _, c := range cases {
		args, err := parseCommandLine(c.line)
		if err != nil {
			t.Fatal(err)
		}
		if len(args) != len(c.args) {
			t.Fatalf("wanted: %v, got: %v", c.args, args)
		}
		for i := range args {
			if args[i] != c.args[i] {
				t.Errorf("wanted: %v, got: %v", c.args[i], args[i])
			}
		}
	}
	if _, err := parseCommandLine(`send -type "contribute`); err == nil {
		t.Errorf("unclosed quote should fail")
	}
}

func TestSendCmd(t *testing.T) {
	cmd := genSendCmd()
	args := []string{"-type", "setReferralBatch", "-participants", "zv01,zv02", "-referrers", "zv03,zv04", "-now", "1500"}
	if !cmd.parse(args) {
		t.Fatal("parse failed")
	}
	req := cmd.toTxRequest(ownerAddr.AddrPrefixString())
	if req.Type != "setReferralBatch" || req.Source != ownerAddr.AddrPrefixString() || req.Now != 1500 {
		t.Errorf("unexpected request %+v", req)
	}
	if len(req.Participants) != 2 || req.Referrers[1] != "zv04" {
		t.Errorf("unexpected batch %v %v", req.Participants, req.Referrers)
	}

	if genSendCmd().parse([]string{"-value", "1zvc"}) {
		t.Errorf("send without type should fail")
	}
	if genSendCmd().parse([]string{"-type", "transfer", "-target", "zv12"}) {
		t.Errorf("bad target should fail")
	}
}

func TestConsole_Use(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	c := &console{client: env.client}
	if c.execute("use zv12") || c.account != "" {
		t.Errorf("bad address should not be selected")
	}
	c.execute("use " + alice.AddrPrefixString())
	if c.account != alice.AddrPrefixString() {
		t.Errorf("wanted: %v, got: %v", alice.AddrPrefixString(), c.account)
	}
	c.execute("send -type contribute -value 2zvc")
	if n := env.chain.ReceiptCount(); n != 1 {
		t.Errorf("wanted: %v, got: %v", 1, n)
	}
	if bal := env.chain.BalanceOf(alice); bal.String() != "200000000000" {
		t.Errorf("wanted: %v, got: %v", "200000000000", bal)
	}
	if !c.execute("exit") {
		t.Errorf("exit should quit the console")
	}
}
