// Command tokengen mints an access token for local testing against the API.
//
//	go run ./cmd/tokengen -user 0190c3a2-... -email ana@example.com -role admin
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id placed in the user_id claim")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", string(user.RoleEmployee), "role claim (admin or employee)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET_KEY"), "HS256 signing secret")
	exp := flag.String("exp", envOr("JWT_ACCESS_EXPIRATION_TIME", "1h"), "token lifetime")
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "tokengen: -user and -secret (or JWT_SECRET_KEY) are required")
		flag.Usage()
		os.Exit(2)
	}

	r := user.Role(*role)
	if r != user.RoleAdmin && r != user.RoleEmployee {
		fmt.Fprintf(os.Stderr, "tokengen: unknown role %q\n", *role)
		os.Exit(2)
	}

	token, expiresAt, err := jwt.NewJWTService(*secret, *exp, "").GenerateAccessToken(*userID, *email, r)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
	fmt.Println(token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
