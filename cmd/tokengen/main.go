package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"fieldservice-backend/internal/config"
	"fieldservice-backend/internal/security"
)

// tokengen mints an access token signed with the server's JWT secret, for
// local development and smoke tests.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	userID := flag.Int("user-id", 0, "User id to embed in the token")
	name := flag.String("name", "", "Display name used as the notification sender")
	roles := flag.String("roles", "", "Comma separated roles")
	ttl := flag.Duration("ttl", 0, "Token lifetime (defaults to jwt.access_token_expiry_minutes)")
	flag.Parse()

	if *userID <= 0 {
		log.Fatal("-user-id is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lifetime := *ttl
	if lifetime == 0 {
		lifetime = time.Duration(cfg.JWT.AccessTokenExpiry) * time.Minute
	}

	var roleList []string
	if *roles != "" {
		roleList = strings.Split(*roles, ",")
	}

	token, err := security.NewTokenManager(cfg.JWT.Secret, lifetime).GenerateAccessToken(int32(*userID), *name, roleList)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
