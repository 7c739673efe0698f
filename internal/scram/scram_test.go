package scram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"
)

// simulateServer runs the server half of RFC 5802 for a known password and
// returns the server-first-message and a function to compute server-final
// given the client-final-message, mirroring what a real backend would send.
func simulateServer(t *testing.T, password string, clientFirstBare, clientNonce string, iterations int) (serverFirstMsg string, salt []byte, finalize func(clientFinalMsg string) (string, bool)) {
	t.Helper()
	salt = []byte("fixedsaltfortest")
	serverNonce := clientNonce + "SERVERPART"
	serverFirstMsg = "r=" + serverNonce + ",s=" + base64.StdEncoding.EncodeToString(salt) + ",i=" + itoa(iterations)

	saltedPassword := pbkdf2.Key([]byte(password), salt, iterations, 32, sha256.New)
	clientKey := hmacFn(saltedPassword, []byte("Client Key"))
	storedKey := sha256Fn(clientKey)
	serverKey := hmacFn(saltedPassword, []byte("Server Key"))

	finalize = func(clientFinalMsg string) (string, bool) {
		// clientFinalMsg = "c=...,r=...,p=<proof>"
		parts := strings.Split(clientFinalMsg, ",")
		var proofB64 string
		for _, p := range parts {
			if strings.HasPrefix(p, "p=") {
				proofB64 = p[2:]
			}
		}
		clientFinalNoPf := clientFinalMsg[:strings.LastIndex(clientFinalMsg, ",p=")]
		authMessage := clientFirstBare + "," + serverFirstMsg + "," + clientFinalNoPf

		expectedSig := hmacFn(storedKey, []byte(authMessage))
		proof, err := base64.StdEncoding.DecodeString(proofB64)
		if err != nil || len(proof) != len(expectedSig) {
			return "", false
		}
		clientSig := make([]byte, len(proof))
		for i := range proof {
			clientSig[i] = proof[i] ^ expectedSig[i]
		}
		// clientSig should now equal ClientKey; verify against StoredKey.
		if sha256B64(clientSig) != sha256B64(clientKey) {
			return "", false
		}

		serverSig := hmacFn(serverKey, []byte(authMessage))
		return "v=" + base64.StdEncoding.EncodeToString(serverSig), true
	}
	return serverFirstMsg, salt, finalize
}

func TestSCRAMFullExchangeSucceeds(t *testing.T) {
	for _, iterations := range []int{1, 4096, 65536} {
		iterations := iterations
		t.Run(itoa(iterations), func(t *testing.T) {
			client, clientFirstMsg, err := NewClient("alice", "s3cr3t")
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			clientFirstBare := clientFirstMsg[3:] // strip "n,,"
			clientNonce := clientFirstBare[strings.Index(clientFirstBare, "r=")+2:]

			serverFirstMsg, _, finalize := simulateServer(t, "s3cr3t", clientFirstBare, clientNonce, iterations)

			clientFinalMsg, err := client.ServerFirst(serverFirstMsg)
			if err != nil {
				t.Fatalf("ServerFirst: %v", err)
			}

			serverFinalMsg, ok := finalize(clientFinalMsg)
			if !ok {
				t.Fatalf("server rejected client proof")
			}

			if err := client.ServerFinal(serverFinalMsg); err != nil {
				t.Fatalf("ServerFinal: %v", err)
			}
		})
	}
}

func TestSCRAMWrongPasswordFailsServerVerification(t *testing.T) {
	client, clientFirstMsg, err := NewClient("alice", "wrong-password")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	clientFirstBare := clientFirstMsg[3:]
	clientNonce := clientFirstBare[strings.Index(clientFirstBare, "r=")+2:]

	serverFirstMsg, _, finalize := simulateServer(t, "s3cr3t", clientFirstBare, clientNonce, 4096)

	clientFinalMsg, err := client.ServerFirst(serverFirstMsg)
	if err != nil {
		t.Fatalf("ServerFirst: %v", err)
	}

	if _, ok := finalize(clientFinalMsg); ok {
		t.Fatalf("expected server to reject client proof with wrong password")
	}
}

func TestServerNonceMustStartWithClientNonce(t *testing.T) {
	client, _, err := NewClient("bob", "pw")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	badServerFirst := "r=totally-different-nonce,s=" + base64.StdEncoding.EncodeToString([]byte("salt12345678")) + ",i=4096"
	if _, err := client.ServerFirst(badServerFirst); err == nil {
		t.Fatalf("expected error for mismatched server nonce")
	}
}

func TestParseMechanisms(t *testing.T) {
	data := append([]byte("SCRAM-SHA-256"), 0)
	data = append(data, "SCRAM-SHA-256-PLUS"...)
	data = append(data, 0, 0)
	mechs := ParseMechanisms(data)
	if len(mechs) != 2 || mechs[0] != "SCRAM-SHA-256" || mechs[1] != "SCRAM-SHA-256-PLUS" {
		t.Fatalf("unexpected mechanisms: %v", mechs)
	}
	if !Supported(mechs) {
		t.Fatalf("expected SCRAM-SHA-256 to be supported")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func hmacFn(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func sha256Fn(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func sha256B64(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}
