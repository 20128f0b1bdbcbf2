// Command createuser provisions an account from the terminal, mirroring the
// back-office flow: name, email, password, then one or more roles.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/config"
	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/postgres"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

func main() {
	cfg := config.Load()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)
	roles := postgres.NewRoleRepo(db)

	reader := bufio.NewReader(os.Stdin)
	name := prompt(reader, "Name: ")
	email := strings.ToLower(prompt(reader, "Email: "))
	password := prompt(reader, "Password: ")
	roleList := prompt(reader, "Roles (comma separated, e.g. ADMIN,EDITOR,USER): ")

	if err := util.ValidatePassword(password); err != nil {
		log.Fatalf("invalid password: %v", err)
	}

	var roleNames []domain.RoleName
	for _, raw := range strings.Split(roleList, ",") {
		name := domain.RoleName(strings.ToUpper(strings.TrimSpace(raw)))
		if name == "" {
			continue
		}
		if !name.Valid() {
			log.Fatalf("unknown role %q", name)
		}
		roleNames = append(roleNames, name)
	}
	if len(roleNames) == 0 {
		roleNames = []domain.RoleName{domain.RoleUser}
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx := context.Background()
	user, err := users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	roleIDs := make([]uuid.UUID, 0, len(roleNames))
	for _, roleName := range roleNames {
		role, roleErr := roles.GetOrCreate(ctx, roleName)
		if roleErr != nil {
			log.Fatalf("resolve role %s: %v", roleName, roleErr)
		}
		roleIDs = append(roleIDs, role.ID)
	}
	if err := roles.AssignToUser(ctx, user.ID, roleIDs); err != nil {
		log.Fatalf("assign roles: %v", err)
	}

	fmt.Printf("created user %s (%s) with roles %v\n", user.Email, user.ID, roleNames)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	return strings.TrimSpace(line)
}
