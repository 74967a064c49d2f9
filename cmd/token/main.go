package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
	"github.com/DTyss/GymApp-sub000/pkg/utils"
)

// token mints a bearer token for desk terminals and local testing. Accounts
// live in the identity provider; this only signs claims with JWT_SECRET.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	userID := flag.String("user", "", "user id to put in the token")
	role := flag.String("role", services.RoleMember, "member or staff")
	ttl := flag.Duration("ttl", utils.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	if id, err := models.ParseID(*userID); err != nil || id <= 0 {
		log.Fatalf("invalid -user %q", *userID)
	}
	if *role != services.RoleMember && *role != services.RoleStaff {
		log.Fatalf("invalid -role %q", *role)
	}
	if *ttl <= 0 {
		log.Fatalf("invalid -ttl %s", *ttl)
	}

	token, err := utils.GenerateTokenWithTTL(*userID, *role, secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
