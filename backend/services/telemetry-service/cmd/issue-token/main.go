// Command issue-token mints a viewer or admin token for the dashboard when
// auth is enabled, and bcrypt-hashes device keys for ingest.deviceKeyHash.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pltsmonitor/backend/services/telemetry-service/internal/auth"
)

func main() {
	secret := flag.String("secret", os.Getenv("PLTS_JWT_SECRET"), "HS256 signing secret")
	username := flag.String("user", "", "username claim")
	role := flag.String("role", "viewer", "role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	deviceKey := flag.String("device-key", "", "print a bcrypt hash of this device key instead of a token")
	flag.Parse()

	if *deviceKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*deviceKey), bcrypt.DefaultCost)
		if err != nil {
			fail(err)
		}
		fmt.Println(string(hash))
		return
	}

	if *secret == "" || *username == "" {
		fail(fmt.Errorf("secret and user are required"))
	}
	token, err := auth.IssueToken(*secret, *username, *role, *ttl)
	if err != nil {
		fail(err)
	}
	fmt.Println(token)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "issue-token:", err)
	os.Exit(1)
}
