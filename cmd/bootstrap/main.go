// Command bootstrap provisions the reserved administrator account (display
// identifier 10000) with the full capability set, prompting for its password
// on the terminal. Running it against an existing installation resets that
// account's credential.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dkachan/equiadmin/internal/server/config"
	"github.com/dkachan/equiadmin/internal/server/repositories/repomanager"
	"github.com/dkachan/equiadmin/internal/server/services"
	"github.com/dkachan/equiadmin/internal/server/shared/db"
	"golang.org/x/term"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	conn, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer conn.Close()

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, conn); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	fmt.Println("Enter bootstrap account password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("password read error: %v", err)
	}

	svc := services.NewAccountService(conn, manager, cfg)
	account, err := svc.EnsureBootstrap(ctx, string(password))
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	fmt.Printf("Bootstrap account %s ready\n", account.LoginID)
}
