package wallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPNode talks to a chain node over its HTTP API.
type HTTPNode struct {
	endpoint  string
	apiSecret string
	c         *http.Client
}

func NewHTTPNode(c *http.Client, endpoint, apiSecret string) (*HTTPNode, error) {
	if strings.HasSuffix(endpoint, "/") {
		return nil, errors.New("endpoint must not have a trailing slash")
	}
	return &HTTPNode{
		endpoint:  endpoint,
		apiSecret: apiSecret,
		c:         c,
	}, nil
}

func (n *HTTPNode) do(method, path string, req, resp interface{}) error {
	var body io.Reader
	if req != nil {
		buf, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	hreq, err := http.NewRequest(method, n.endpoint+path, body)
	if err != nil {
		return err
	}
	if n.apiSecret != "" {
		hreq.SetBasicAuth("grin", n.apiSecret)
	}

	hresp, err := n.c.Do(hreq)
	if err != nil {
		return err
	}
	defer hresp.Body.Close()

	respBuf, err := io.ReadAll(hresp.Body)
	if err != nil {
		return err
	}
	if hresp.StatusCode != http.StatusOK {
		return fmt.Errorf("node: http error code %d", hresp.StatusCode)
	}

	if resp == nil {
		return nil
	}
	return json.Unmarshal(respBuf, resp)
}

type pushTxRequest struct {
	Tx []byte `json:"tx"`
}

type tipResponse struct {
	Height uint64 `json:"height"`
}

func (n *HTTPNode) PostTx(tx []byte) error {
	return n.do(http.MethodPost, "/v1/pool/push", pushTxRequest{Tx: tx}, nil)
}

func (n *HTTPNode) Height() (uint64, error) {
	var tip tipResponse
	if err := n.do(http.MethodGet, "/v1/chain", nil, &tip); err != nil {
		return 0, err
	}
	return tip.Height, nil
}

// Make sure HTTPNode implements NodeClient.
var _ NodeClient = &HTTPNode{}
