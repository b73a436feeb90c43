// Mock identity provider for local testing.
//
// Usage:
//   go run ./scripts/mock-identity
//
// Serves the two identity endpoints the stack needs locally: a
// client-credentials token endpoint issuing RS256-signed identity tokens,
// and the JWKS document the user service validates them against. Keys are
// generated at startup (not for production use).
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	keyID    = "mock-identity-key"
	tokenTTL = time.Hour
)

type server struct {
	key    *rsa.PrivateKey
	issuer string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func main() {
	port := flag.Int("port", 8088, "listen port")
	flag.Parse()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("generate signing key: %v", err)
	}

	s := &server{
		key:    key,
		issuer: fmt.Sprintf("http://localhost:%d/", *port),
	}

	http.HandleFunc("/oauth/token", s.handleToken)
	http.HandleFunc("/.well-known/jwks.json", s.handleJWKS)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock identity provider starting on http://localhost%s", addr)
	log.Printf("POST /oauth/token           - Returns RS256-signed identity token")
	log.Printf("GET  /.well-known/jwks.json - JWKS for token validation")
	log.Fatal(http.ListenAndServe(addr, nil))
}

func (s *server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	var clientID string

	if strings.Contains(contentType, "application/json") {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Failed to parse JSON body", http.StatusBadRequest)
			return
		}
		clientID = body["client_id"]
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		clientID = r.FormValue("client_id")
	}

	// The client_id becomes the principal (sub claim).
	subject := clientID
	if subject == "" {
		subject = "local-user"
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   s.issuer,
		"sub":   subject,
		"email": subject + "@local.test",
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	token.Header["kid"] = keyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		http.Error(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenTTL.Seconds()),
	})

	log.Printf("Issued token for sub=%s", subject)
}

func (s *server) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := &s.key.PublicKey
	jwks := map[string]any{
		"keys": []map[string]string{{
			"kid": keyID,
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwks)
}
