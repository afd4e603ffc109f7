package export

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/hb9tf/hackrfsweep/sdr"
)

const (
	spectreEndpoint         = "/spectre/v1/collect"
	defaultSendSampleAmount = 100
	wsHandshakeTimeout      = 10 * time.Second
)

// SpectreServer is a collector feeding a remote aggregation server over a
// persistent WebSocket connection: samples are batched to SendSamplesAmount
// and pushed as one JSON text frame per batch, reconnecting once on a
// failed send rather than giving up the whole export.
type SpectreServer struct {
	Server            string
	SendSamplesAmount int
	// InsecureSkipVerify disables TLS certificate validation, for talking
	// to a server running with a self-signed certificate.
	InsecureSkipVerify bool
}

func (s *SpectreServer) dial() (*websocket.Conn, error) {
	u, err := url.Parse(s.Server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", s.Server, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + spectreEndpoint

	dialer := websocket.Dialer{
		HandshakeTimeout: wsHandshakeTimeout,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify},
	}
	conn, _, err := dialer.Dial(u.String(), nil)
	return conn, err
}

func (s *SpectreServer) Write(ctx context.Context, samples <-chan sdr.Sample) error {
	sendSamplesAmount := defaultSendSampleAmount
	if s.SendSamplesAmount > 0 {
		sendSamplesAmount = s.SendSamplesAmount
	}

	conn, err := s.dial()
	if err != nil {
		return fmt.Errorf("unable to connect to spectre server: %w", err)
	}
	defer conn.Close()

	var samplesToSend []sdr.Sample
	flush := func() {
		if len(samplesToSend) == 0 {
			return
		}
		body, err := json.Marshal(samplesToSend)
		if err != nil {
			glog.Warningf("error marshalling samples to JSON: %s\n", err)
			samplesToSend = nil
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			glog.Warningf("error sending samples over websocket, reconnecting: %s\n", err)
			if newConn, dialErr := s.dial(); dialErr == nil {
				conn.Close()
				conn = newConn
				_ = conn.WriteMessage(websocket.TextMessage, body)
			}
		}
		samplesToSend = nil
	}

	for sample := range samples {
		samplesToSend = append(samplesToSend, sample)
		if len(samplesToSend) < sendSamplesAmount {
			continue
		}
		flush()
	}
	flush()

	return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
