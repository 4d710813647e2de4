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
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// RemoteClient talks to a running sale server
type RemoteClient struct {
	base string
	show bool
	http *http.Client
}

// NewRemoteClient creates a client of the server at endpoint (host:port or a full url)
func NewRemoteClient(endpoint string, show bool) *RemoteClient {
	rc := &RemoteClient{
		show: show,
		http: &http.Client{Timeout: 10 * time.Second},
	}
	rc.Connect(endpoint)
	return rc
}

// Connect switches the client to another endpoint
func (rc *RemoteClient) Connect(endpoint string) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	rc.base = endpoint
}

// Endpoint returns the connected endpoint
func (rc *RemoteClient) Endpoint() string {
	return rc.base
}

// parseResult reads the envelope of a response. The data is kept raw for printing
func parseResult(body []byte) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid response: %s", body)
	}
	ret := gjson.ParseBytes(body)
	status := ret.Get("status")
	if !status.Exists() {
		return nil, fmt.Errorf("unexpected response: %s", body)
	}
	res := &Result{
		Message: ret.Get("message").String(),
		Status:  int(status.Int()),
	}
	if data := ret.Get("data"); data.Exists() && data.Type != gjson.Null {
		res.Data = json.RawMessage(data.Raw)
	}
	return res, nil
}

func (rc *RemoteClient) do(req *http.Request) *Result {
	if rc.base == "" {
		return failResult(ErrUnConnected.Error())
	}
	resp, err := rc.http.Do(req)
	if err != nil {
		return failResult(err.Error())
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return failResult(err.Error())
	}
	res, err := parseResult(body)
	if err != nil {
		return failResult(err.Error())
	}
	return res
}

func (rc *RemoteClient) get(path string, query url.Values) *Result {
	u := rc.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	if rc.show {
		fmt.Println("Request: GET", u)
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return failResult(err.Error())
	}
	return rc.do(req)
}

// Send posts the transaction request
func (rc *RemoteClient) Send(tx *TxRequest) *Result {
	bs, err := json.Marshal(tx)
	if err != nil {
		return failResult(err.Error())
	}
	if rc.show {
		fmt.Println("Request:")
		pretty, _ := json.MarshalIndent(tx, "", "\t")
		fmt.Println(string(pretty))
	}
	req, err := http.NewRequest(http.MethodPost, rc.base+"/tx", bytes.NewReader(bs))
	if err != nil {
		return failResult(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	return rc.do(req)
}

func (rc *RemoteClient) Balance(addr string) *Result {
	return rc.get("/balance/"+addr, nil)
}

func (rc *RemoteClient) Funds(addr string) *Result {
	return rc.get("/funds/"+addr, nil)
}

func (rc *RemoteClient) Contribution(addr string) *Result {
	return rc.get("/contribution/"+addr, nil)
}

func (rc *RemoteClient) Referral(addr string) *Result {
	return rc.get("/referral/"+addr, nil)
}

func (rc *RemoteClient) Vesting(addr string) *Result {
	return rc.get("/vesting/"+addr, nil)
}

func (rc *RemoteClient) Timelock(addr string) *Result {
	return rc.get("/timelock/"+addr, nil)
}

func (rc *RemoteClient) Stage() *Result {
	return rc.get("/stage", nil)
}

func (rc *RemoteClient) Sale() *Result {
	return rc.get("/sale", nil)
}

func (rc *RemoteClient) Ledger() *Result {
	return rc.get("/ledger", nil)
}

func (rc *RemoteClient) Root() *Result {
	return rc.get("/root", nil)
}

func (rc *RemoteClient) Receipts(from uint64, limit int) *Result {
	q := url.Values{}
	q.Set("from", fmt.Sprint(from))
	q.Set("limit", fmt.Sprint(limit))
	return rc.get("/receipts", q)
}

func (rc *RemoteClient) Receipt(hash string) *Result {
	return rc.get("/receipt/"+hash, nil)
}
