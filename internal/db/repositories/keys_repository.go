package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/models/entities"
)

// KeysRepository stores ACARS client API keys through sqlx.
type KeysRepository struct {
	db *sqlx.DB
}

func NewKeysRepository(db *sqlx.DB) *KeysRepository {
	return &KeysRepository{db: db}
}

func (r *KeysRepository) GetStatus(ctx context.Context, apiKey string) (*entities.ApiKeyStatus, error) {
	var status entities.ApiKeyStatus
	err := r.db.QueryRowxContext(ctx, constants.GetApiKeyStatus, apiKey).StructScan(&status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *KeysRepository) Insert(ctx context.Context, key *entities.ApiKey) error {
	return r.db.QueryRowxContext(ctx, constants.InsertApiKey, key.ApiKey, key.Label).
		Scan(&key.ID, &key.CreatedAt)
}
