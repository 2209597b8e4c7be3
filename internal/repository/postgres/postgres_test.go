package postgres

import (
	"context"
	"os"
	"testing"

	"pet-adoption-backend/internal/repository/repotest"
)

// Requires DATABASE_URL pointing at a disposable database; all tables are truncated.
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = pool.Exec(ctx, `TRUNCATE adoption_details, reports, messages, conversations,
		pet_features, pets, adoption_user_details, users CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	repotest.Run(t, NewStore(pool))
}
