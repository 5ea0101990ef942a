// Mints an admin session token for local testing. Paste the output into the
// ecollect_admin_session cookie to skip the login form against a dev backend.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	email := flag.String("email", "admin@example.com", "session email")
	name := flag.String("name", "Dev Admin", "session display name")
	role := flag.String("role", "admin", "session role")
	flag.Parse()

	secret := os.Getenv("APP_SIGNING_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "APP_SIGNING_SECRET is required")
		os.Exit(1)
	}

	claims := jwt.MapClaims{
		"sid":   uuid.NewString(),
		"email": *email,
		"name":  *name,
		"role":  *role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(8 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	fmt.Println(signedToken)
}
