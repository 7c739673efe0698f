// Package scram implements the client side of RFC 5802 SCRAM-SHA-256 SASL
// authentication against a PostgreSQL backend.
package scram

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Mechanism is the only SASL mechanism pgwire performs.
const Mechanism = "SCRAM-SHA-256"

// Client drives one SCRAM-SHA-256 exchange. Create with NewClient, then
// feed server messages through ServerFirst and ServerFinal in order.
type Client struct {
	user     string
	password string

	clientNonce      string
	clientFirstBare  string
	gs2Header        string
	serverFirstMsg   string
	saltedPassword   []byte
	clientKey        []byte
	storedKey        []byte
	authMessage      string
	clientFinalNoPf  string
}

// NewClient starts a new exchange for the given username/password and
// returns the client-first-message to send as the SASLInitialResponse body.
func NewClient(user, password string) (*Client, string, error) {
	nonceBytes := make([]byte, 18)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, "", fmt.Errorf("scram: generating client nonce: %w", err)
	}
	clientNonce := base64.StdEncoding.EncodeToString(nonceBytes)

	gs2Header := "n,,"
	clientFirstBare := fmt.Sprintf("n=%s,r=%s", escapeUsername(user), clientNonce)

	c := &Client{
		user:            user,
		password:        password,
		clientNonce:     clientNonce,
		clientFirstBare: clientFirstBare,
		gs2Header:       gs2Header,
	}
	return c, gs2Header + clientFirstBare, nil
}

// ServerFirst consumes the server-first-message (the AuthenticationSASLContinue
// payload) and returns the client-final-message to send as the SASLResponse.
func (c *Client) ServerFirst(serverFirstMsg string) (string, error) {
	c.serverFirstMsg = serverFirstMsg

	nonce, salt, iterations, err := parseServerFirst(serverFirstMsg)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(nonce, c.clientNonce) {
		return "", fmt.Errorf("scram: server nonce does not start with client nonce")
	}

	c.saltedPassword = pbkdf2.Key([]byte(c.password), salt, iterations, 32, sha256.New)
	c.clientKey = hmacSHA256(c.saltedPassword, []byte("Client Key"))
	c.storedKey = sha256Sum(c.clientKey)

	channelBinding := "c=" + base64.StdEncoding.EncodeToString([]byte(c.gs2Header))
	c.clientFinalNoPf = fmt.Sprintf("%s,r=%s", channelBinding, nonce)
	c.authMessage = c.clientFirstBare + "," + serverFirstMsg + "," + c.clientFinalNoPf

	clientSignature := hmacSHA256(c.storedKey, []byte(c.authMessage))
	clientProof := xorBytes(c.clientKey, clientSignature)

	return c.clientFinalNoPf + ",p=" + base64.StdEncoding.EncodeToString(clientProof), nil
}

// ServerFinal verifies the server-final-message (the AuthenticationSASLFinal
// payload) against the expected server signature. A mismatch returns an
// error the caller should surface as an authentication failure.
func (c *Client) ServerFinal(serverFinalMsg string) error {
	serverKey := hmacSHA256(c.saltedPassword, []byte("Server Key"))
	expectedSig := hmacSHA256(serverKey, []byte(c.authMessage))
	expected := "v=" + base64.StdEncoding.EncodeToString(expectedSig)
	if serverFinalMsg != expected {
		return fmt.Errorf("scram: server signature mismatch")
	}
	return nil
}

// parseServerFirst parses "r=<nonce>,s=<salt-b64>,i=<iterations>".
func parseServerFirst(msg string) (nonce string, salt []byte, iterations int, err error) {
	for _, part := range strings.Split(msg, ",") {
		switch {
		case strings.HasPrefix(part, "r="):
			nonce = part[2:]
		case strings.HasPrefix(part, "s="):
			salt, err = base64.StdEncoding.DecodeString(part[2:])
			if err != nil {
				return "", nil, 0, fmt.Errorf("scram: decoding salt: %w", err)
			}
		case strings.HasPrefix(part, "i="):
			iterations, err = strconv.Atoi(part[2:])
			if err != nil {
				return "", nil, 0, fmt.Errorf("scram: parsing iteration count: %w", err)
			}
		}
	}
	if nonce == "" || salt == nil || iterations == 0 {
		return "", nil, 0, fmt.Errorf("scram: incomplete server-first-message: %q", msg)
	}
	return nonce, salt, iterations, nil
}

// escapeUsername replaces "=" with "=3D" and "," with "=2C" per RFC 5802 §5.1.
func escapeUsername(user string) string {
	user = strings.ReplaceAll(user, "=", "=3D")
	user = strings.ReplaceAll(user, ",", "=2C")
	return user
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
