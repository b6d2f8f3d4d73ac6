// Command devtoken prints a signed access token for local testing.  It
// reads JWT_SECRET and ACCESS_TOKEN_TTL_MIN like the server does.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/utils"
)

func main() {
	userID := flag.Uint64("user", 1, "user id placed in the sub claim")
	role := flag.String("role", model.RoleCustomer, "CUSTOMER or STAFF")
	ttl := flag.Int("ttl", 60, "lifetime in minutes")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required env var: JWT_SECRET")
	}
	r := strings.ToUpper(*role)
	if r != model.RoleCustomer && r != model.RoleStaff {
		log.Fatalf("unknown role %q", *role)
	}
	tok, err := utils.NewAccessToken(secret, *userID, r, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}
