// Package main provides a CLI tool for generating dev tokens for the brique API.
// These tokens use the dev signing key and will NOT work in production.
package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "brique/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	// Default admin token for local/dev environments
	devAdminToken = "demo-admin-token"

	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	walletCmd := flag.NewFlagSet("wallet", flag.ExitOnError)
	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)

	walletAddr := walletCmd.String("wallet", "", "Caller wallet address (0x...). Generated if empty.")
	walletTTL := walletCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	walletKey := walletCmd.String("key", devSigningKey, "HMAC signing key (must match JWT_SIGNING_KEY)")
	walletJSON := walletCmd.Bool("json", false, "Output as JSON")

	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "wallet":
		walletCmd.Parse(os.Args[2:])
		generateWalletToken(*walletAddr, *walletKey, *walletTTL, *walletJSON)
	case "admin":
		adminCmd.Parse(os.Args[2:])
		showAdminToken(*adminJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate dev tokens for the brique API

WARNING: These tokens use the dev signing key and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  wallet    Generate a caller JWT bound to a wallet address
  admin     Show the admin API token

Examples:
  # Generate a token for a fresh random wallet
  tokengen wallet

  # Generate a token for a known address with a custom TTL
  tokengen wallet -wallet 0x1111111111111111111111111111111111111111 -ttl 1h

  # Get the admin token for the X-Admin-Token header
  tokengen admin

  # Output as JSON
  tokengen wallet -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generateWalletToken(addr, signingKey string, ttl time.Duration, jsonOutput bool) {
	wallet := parseOrGenerateWallet(addr)

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   wallet.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "wallet_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub": wallet.Hex(),
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Wallet Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Wallet:     %s\n", wallet.Hex())
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/...")
}

func showAdminToken(jsonOutput bool) {
	if jsonOutput {
		printJSON(tokenOutput{
			Token: devAdminToken,
			Type:  "admin_token",
			Usage: map[string]string{
				"header": "X-Admin-Token: " + devAdminToken,
				"note":   "Matches the default ADMIN_TOKEN; override both in production",
			},
		})
		return
	}

	fmt.Println("Admin API Token")
	fmt.Println("===============")
	fmt.Printf("Token: %s\n", devAdminToken)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"X-Admin-Token: " + devAdminToken + "\" http://localhost:8080/...")
}

func parseOrGenerateWallet(input string) id.Address {
	if input == "" {
		var raw [20]byte
		if _, err := rand.Read(raw[:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating wallet: %v\n", err)
			os.Exit(1)
		}
		return id.Address(raw)
	}
	wallet, err := id.ParseAddress(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid wallet address: %s\n", input)
		os.Exit(1)
	}
	return wallet
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
