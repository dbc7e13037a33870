// Mints an operator token for the /api/admin endpoints.
//
//	ADMIN_JWT_SECRET=... go run scripts/genadmintoken.go -sub ops@agency.dev -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"agency-site-backend/internal/domain"
	"agency-site-backend/pkg/auth"

	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if len(secret) < 32 {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET must be set (at least 32 characters)")
		os.Exit(1)
	}

	token, err := auth.IssueAdminToken([]byte(secret), *subject, domain.RoleAdmin, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
