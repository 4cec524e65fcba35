// Package mcpquic carries MCP JSON-RPC over a single bidirectional QUIC
// stream. A connection negotiates ALPN floorspeech-mcp-v1, the client writes
// the 4-byte magic then newline-delimited JSON-RPC messages.
package mcpquic

import (
	"crypto/tls"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	ALPNProtocolMCP         = "floorspeech-mcp-v1"
	MagicBytesMCP           = "FSM1"
	MaxMessageSize          = 32 * 1024 * 1024 // a full Record issue fits
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultIdleTimeout      = 5 * time.Minute
	DefaultKeepAlive        = 30 * time.Second
)

// QUICConfig is shared by the chassis listener and the client.
func QUICConfig() *quic.Config {
	return &quic.Config{
		HandshakeIdleTimeout:       DefaultHandshakeTimeout,
		MaxStreamReceiveWindow:     MaxMessageSize,
		MaxConnectionReceiveWindow: 2 * MaxMessageSize,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// ClientTLSConfig offers only the MCP ALPN. insecure skips certificate
// verification, which the self-signed development chassis needs.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPNProtocolMCP},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}
