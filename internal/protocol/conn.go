// Package protocol implements pgwire's connection state machine and query
// drivers (spec components C3, C6, C7, C8): startup, TLS negotiation,
// authentication, and the Simple/Extended query cycles over a single
// PostgreSQL connection.
package protocol

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/polarwire/pgwire/internal/scram"
	"github.com/polarwire/pgwire/internal/wire"
)

// State is the connection's lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateConnected
	StateBusy
	StateBroken
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateConnected:
		return "connected"
	case StateBusy:
		return "busy"
	case StateBroken:
		return "broken"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TxStatus mirrors the byte ReadyForQuery carries.
type TxStatus byte

const (
	TxIdle                TxStatus = 'I'
	TxInTransaction       TxStatus = 'T'
	TxInFailedTransaction TxStatus = 'E'
)

// TLSMode selects whether and how a connection attempts TLS.
type TLSMode string

const (
	TLSDisable TLSMode = "disable"
	TLSPrefer  TLSMode = "prefer"
	TLSRequire TLSMode = "require"
)

// Config carries everything needed to dial and authenticate one connection.
// It is built and owned by the root package's Config; protocol never reads
// configuration from files or the environment itself.
type Config struct {
	Host        string
	Port        uint16
	User        string
	Database    string
	Password    string
	TLSMode     TLSMode
	TLSConfig   *tls.Config // nil uses a default derived from TLSMode
	DialTimeout time.Duration
}

// Conn owns one live PostgreSQL session. It is not safe for concurrent use:
// the pool (or the caller) guarantees single-writer, single-reader access
// for the duration of a checkout.
type Conn struct {
	cfg    Config
	raw    net.Conn
	r      *wire.Reader
	w      *wire.Writer
	logger *slog.Logger

	state        State
	txStatus     TxStatus
	serverParams map[string]string
	backendKey   wire.BackendKeyData
	statements   *StatementCache
}

// Dial opens a TCP connection, negotiates TLS if requested, runs the
// startup/authentication handshake, and returns a Conn in state Connected.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		cfg:          cfg,
		logger:       logger,
		state:        StateConnecting,
		serverParams: make(map[string]string),
		statements:   NewStatementCache(),
	}

	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.state = StateBroken
		return nil, fmt.Errorf("protocol: dial %s: %w", addr, err)
	}
	c.raw = raw
	c.r = wire.NewReader(raw)
	c.w = wire.NewWriter(raw)

	if cfg.TLSMode != TLSDisable {
		if err := c.negotiateTLS(); err != nil {
			raw.Close()
			c.state = StateBroken
			return nil, err
		}
	}

	c.state = StateAuthenticating
	if err := c.startup(); err != nil {
		raw.Close()
		c.state = StateBroken
		return nil, err
	}

	c.state = StateConnected
	c.logger.Debug("connection established", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	return c, nil
}

func (c *Conn) negotiateTLS() error {
	if err := c.w.WriteSSLRequest(); err != nil {
		return fmt.Errorf("protocol: sending SSLRequest: %w", err)
	}
	resp, err := c.r.ReadByte()
	if err != nil {
		return fmt.Errorf("protocol: reading SSLRequest response: %w", err)
	}
	switch resp {
	case 'N':
		if c.cfg.TLSMode == TLSRequire {
			return fmt.Errorf("protocol: server does not support TLS but tls_mode=require")
		}
		return nil
	case 'S':
		tlsCfg := c.cfg.TLSConfig
		if tlsCfg == nil {
			tlsCfg = defaultTLSConfig(c.cfg)
		}
		tlsConn := tls.Client(c.raw, tlsCfg)
		if err := tlsConn.HandshakeContext(context.Background()); err != nil {
			return fmt.Errorf("protocol: TLS handshake: %w", err)
		}
		c.raw = tlsConn
		c.r = wire.NewReader(tlsConn)
		c.w = wire.NewWriter(tlsConn)
		return nil
	default:
		return fmt.Errorf("protocol: unexpected SSLRequest response byte %q", resp)
	}
}

// defaultTLSConfig honors tls_mode: require verifies the server like any
// TLS client would; prefer stays permissive unless the caller supplied its
// own *tls.Config with a CA pool, matching the §9 redesign decision to ship
// a safer default than "verification always off."
func defaultTLSConfig(cfg Config) *tls.Config {
	if cfg.TLSMode == TLSRequire {
		return &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	return &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12, InsecureSkipVerify: true}
}

func (c *Conn) startup() error {
	params := map[string]string{
		"user": c.cfg.User,
	}
	if c.cfg.Database != "" {
		params["database"] = c.cfg.Database
	}
	if err := c.w.WriteStartupMessage(params); err != nil {
		return fmt.Errorf("protocol: sending startup message: %w", err)
	}

	if err := c.authenticate(); err != nil {
		return err
	}
	return c.awaitReadyForQuery()
}

func (c *Conn) authenticate() error {
	for {
		f, err := c.r.ReadFrame()
		if err != nil {
			return fmt.Errorf("protocol: reading auth message: %w", err)
		}
		switch f.Type {
		case wire.ErrorResponseTag:
			fields, _ := wire.ParseFields(f)
			return fmt.Errorf("protocol: authentication failed: %s", fields[wire.FieldMessage])
		case wire.Authentication:
			auth, err := wire.ParseAuthentication(f)
			if err != nil {
				return err
			}
			done, err := c.handleAuthMessage(auth)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		default:
			return fmt.Errorf("protocol: unexpected message %q during authentication", f.Type)
		}
	}
}

func (c *Conn) handleAuthMessage(auth wire.AuthMessage) (done bool, err error) {
	switch auth.Kind {
	case wire.AuthOK:
		return true, nil
	case wire.AuthSASL:
		mechs := scram.ParseMechanisms(auth.Payload)
		if !scram.Supported(mechs) {
			return false, fmt.Errorf("protocol: server does not offer SCRAM-SHA-256")
		}
		return false, c.runSCRAM()
	case wire.AuthKerberosV5, wire.AuthCleartextPassword, wire.AuthMD5Password,
		wire.AuthSCMCredential, wire.AuthGSS, wire.AuthSSPI:
		return false, fmt.Errorf("protocol: unsupported authentication method %d", auth.Kind)
	default:
		return false, fmt.Errorf("protocol: unrecognized authentication message kind %d", auth.Kind)
	}
}

func (c *Conn) runSCRAM() error {
	client, clientFirst, err := scram.NewClient(c.cfg.User, c.cfg.Password)
	if err != nil {
		return fmt.Errorf("protocol: starting SCRAM: %w", err)
	}
	if err := c.w.WriteSASLInitialResponse(scram.Mechanism, []byte(clientFirst)); err != nil {
		return fmt.Errorf("protocol: sending SASL initial response: %w", err)
	}

	f, err := c.r.ReadFrame()
	if err != nil {
		return fmt.Errorf("protocol: reading SASL continue: %w", err)
	}
	auth, err := wire.ParseAuthentication(f)
	if err != nil {
		return err
	}
	if auth.Kind != wire.AuthSASLContinue {
		return fmt.Errorf("protocol: expected AuthenticationSASLContinue, got kind %d", auth.Kind)
	}
	clientFinal, err := client.ServerFirst(string(auth.Payload))
	if err != nil {
		return fmt.Errorf("protocol: processing SASL server-first: %w", err)
	}
	if err := c.w.WriteSASLResponse([]byte(clientFinal)); err != nil {
		return fmt.Errorf("protocol: sending SASL response: %w", err)
	}

	f, err = c.r.ReadFrame()
	if err != nil {
		return fmt.Errorf("protocol: reading SASL final: %w", err)
	}
	auth, err = wire.ParseAuthentication(f)
	if err != nil {
		return err
	}
	if auth.Kind != wire.AuthSASLFinal {
		return fmt.Errorf("protocol: expected AuthenticationSASLFinal, got kind %d", auth.Kind)
	}
	if err := client.ServerFinal(string(auth.Payload)); err != nil {
		return fmt.Errorf("protocol: verifying SASL server-final: %w", err)
	}

	f, err = c.r.ReadFrame()
	if err != nil {
		return fmt.Errorf("protocol: reading post-SASL authentication result: %w", err)
	}
	auth, err = wire.ParseAuthentication(f)
	if err != nil {
		return err
	}
	if auth.Kind != wire.AuthOK {
		return fmt.Errorf("protocol: expected AuthenticationOk after SCRAM, got kind %d", auth.Kind)
	}
	return nil
}

// awaitReadyForQuery drains ParameterStatus/BackendKeyData until the first
// ReadyForQuery, which ends the startup/authentication phase.
func (c *Conn) awaitReadyForQuery() error {
	for {
		f, err := c.r.ReadFrame()
		if err != nil {
			return fmt.Errorf("protocol: reading post-auth message: %w", err)
		}
		switch f.Type {
		case wire.ParameterStatus:
			name, value, err := wire.ParseParameterStatus(f)
			if err != nil {
				return err
			}
			c.serverParams[name] = value
		case wire.BackendKeyDataTag:
			bk, err := wire.ParseBackendKeyData(f)
			if err != nil {
				return err
			}
			c.backendKey = bk
		case wire.ReadyForQuery:
			status, err := wire.ParseReadyForQuery(f)
			if err != nil {
				return err
			}
			c.txStatus = TxStatus(status)
			return nil
		case wire.ErrorResponseTag:
			fields, _ := wire.ParseFields(f)
			return fmt.Errorf("protocol: server error during startup: %s", fields[wire.FieldMessage])
		case wire.NoticeResponseTag:
			// surfaced to the caller via logging only; no NOTICE channel yet.
			fields, _ := wire.ParseFields(f)
			c.logger.Info("server notice", "message", fields[wire.FieldMessage])
		default:
			return fmt.Errorf("protocol: unexpected message %q waiting for ReadyForQuery", f.Type)
		}
	}
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() State { return c.state }

// TxStatus returns the transaction status observed on the last ReadyForQuery.
func (c *Conn) TxStatus() TxStatus { return c.txStatus }

// ServerParameter returns a parameter reported during startup (e.g. "server_version").
func (c *Conn) ServerParameter(name string) (string, bool) {
	v, ok := c.serverParams[name]
	return v, ok
}

// Close sends Terminate and closes the underlying stream. Idempotent.
func (c *Conn) Close() error {
	if c.state == StateClosed {
		return nil
	}
	if c.raw != nil && c.state != StateBroken {
		_ = c.w.WriteTerminate()
	}
	c.state = StateClosed
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// markBroken transitions the connection to Broken on an unrecoverable I/O
// or protocol error, per §4.3.
func (c *Conn) markBroken() {
	c.state = StateBroken
}
