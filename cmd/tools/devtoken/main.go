// Command devtoken mints a gateway bearer token for local testing. Users
// normally sign in elsewhere; the gateway only verifies tokens.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"mealplan-system/config"
	"mealplan-system/internal/orders"
	"mealplan-system/internal/utils"
)

func main() {
	fs := flag.NewFlagSet("devtoken", flag.ExitOnError)
	userID := fs.String("user", "", "customer id the token is issued for")
	username := fs.String("name", "", "display name carried in the token")
	role := fs.String("role", string(orders.RoleCustomer), "CUSTOMER | GUEST | ADMIN | COMPANY_ADMIN")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	r := orders.Role(*role)
	if *userID == "" || !r.Valid() {
		fs.Usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	token, exp, err := utils.GenerateToken([]byte(cfg.Auth.JWTSecret), *userID, *username, r, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	log.Printf("token for %s (%s) expires %s", *userID, r, exp.Format("2006-01-02 15:04"))
	fmt.Println(token)
}
