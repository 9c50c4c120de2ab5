// Command admin_token issues a bearer token for a dashboard operator. Tokens
// are normally minted by the identity provider; this covers local setups.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"tokenadmin/internal/config"
	"tokenadmin/internal/models"
	"tokenadmin/internal/utils"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		log.Fatal("ADMIN_EMAIL must be set in environment")
	}
	role := config.GetEnv("ADMIN_ROLE", models.RoleAdmin)
	if len(models.GetDefaultPermissions(role)) == 0 {
		log.Fatalf("unknown role %q", role)
	}

	token, err := utils.GenerateToken(models.AdminClaims{
		UserID: adminEmail,
		Email:  adminEmail,
		Role:   role,
	}, config.GetEnv("JWT_SECRET", ""), config.GetDurationEnv("TOKEN_TTL", 12*time.Hour))
	if err != nil {
		log.Fatal("Failed to sign token:", err)
	}

	fmt.Println(token)
}
