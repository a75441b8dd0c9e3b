// File: cmd/admintoken/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/iyunix/go-meddy/internal/auth"
	"github.com/iyunix/go-meddy/internal/config"
)

// Prints a bearer token for the admin routes, signed with ADMIN_JWT_SECRET.
func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if cfg.AdminJWTSecret == "" {
		log.Fatal("FATAL: ADMIN_JWT_SECRET is not set")
	}

	token, err := auth.GenerateJWT(*subject, auth.RoleAdmin, *ttl, []byte(cfg.AdminJWTSecret))
	if err != nil {
		log.Fatalf("FATAL: could not sign token: %v", err)
	}
	fmt.Println(token)
}
