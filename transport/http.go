package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mimblenet/slatewire/slate"
)

// ReceivePath is the foreign API endpoint a listening wallet serves slates
// on.
const ReceivePath = "/v2/receive_tx"

// HTTPAdapter performs the synchronous request/reply exchange with a peer
// wallet URL.
type HTTPAdapter struct {
	c *http.Client
}

func NewHTTPAdapter(c *http.Client) *HTTPAdapter {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPAdapter{c: c}
}

func (a *HTTPAdapter) SendAndAwait(ctx context.Context, dest Destination,
	s *slate.Slate) (*slate.Slate, *slate.TxProof, error) {

	buf, err := s.Marshal()
	if err != nil {
		return nil, nil, err
	}

	url := dest.URL + ReceivePath
	log.Debugf("POST %s slate %s", url, s.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		bytes.NewReader(buf))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.c.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBuf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: http error code %d",
			ErrTransport, resp.StatusCode)
	}

	reply, err := slate.Parse(respBuf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if reply.ID != s.ID {
		return nil, nil, fmt.Errorf("%w: reply slate id mismatch",
			ErrTransport)
	}

	// No proof over HTTP: the peer URL itself is the audit trail.
	return reply, nil, nil
}

// ServeReceive exposes a receive handler as an HTTP endpoint, the mirror
// image of SendAndAwait for the listening side.
func ServeReceive(handle func(*slate.Slate) (*slate.Slate, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s, err := slate.Parse(buf)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		reply, err := handle(s)
		if err != nil {
			log.Warnf("receive failed for slate %s: %v", s.ID, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	})
}

var _ Adapter = &HTTPAdapter{}
