package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"levant-va/operations/internal/db"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/models/entities"
)

// Mints an API key for an ACARS tracking client and prints it once.
func main() {
	label := flag.String("label", "acars-client", "label identifying the client")
	flag.Parse()

	conn, err := sqlx.Connect("postgres", db.PostgresDSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		log.Fatalf("generate key: %v", err)
	}

	key := &entities.ApiKey{
		ApiKey: hex.EncodeToString(raw),
		Label:  *label,
	}

	keysRepo := repositories.NewKeysRepository(conn)
	if err := keysRepo.Insert(context.Background(), key); err != nil {
		log.Fatalf("insert api key: %v", err)
	}

	fmt.Println("New API Key:", key.ApiKey)
	fmt.Println("Label:      ", key.Label)
	fmt.Println("Created At: ", key.CreatedAt)
}
