package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/osse101/MentionBot_Go/internal/checkpoint"
	"github.com/osse101/MentionBot_Go/internal/config"
	"github.com/osse101/MentionBot_Go/internal/vault"
)

// Operational reset tool: wipes the credential vault and the ingestion
// checkpoint so the next run starts from a clean slate. Destructive, so it
// refuses to run without an explicit -confirm.
func main() {
	confirm := flag.Bool("confirm", false, "required; actually erase the credential vault and checkpoint")
	flag.Parse()

	if !*confirm {
		log.Fatal("Refusing to erase state without -confirm")
	}

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	credVault := vault.New(cfg.StateDir)
	erased, err := credVault.Erase()
	if err != nil {
		log.Fatalf("Failed to erase credential vault: %v", err)
	}
	if erased {
		log.Printf("Credential vault erased: %s\n", credVault.Path())
	} else {
		log.Println("No credential vault on disk, nothing to erase")
	}

	cpStore := checkpoint.NewStore(cfg.StateDir)
	erased, err = cpStore.Reset()
	if err != nil {
		log.Fatalf("Failed to reset checkpoint: %v", err)
	}
	if erased {
		log.Println("Checkpoint reset")
	} else {
		log.Println("No checkpoint on disk, nothing to reset")
	}

	log.Println("Reset complete. Re-authorize via /auth/begin before the next run.")
}
