package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

const vaultRowID = 1

// VaultRepository mutates the airline funds row through atomic increments
// only. Debits are conditional on the balance covering the amount, so two
// concurrent repairs cannot both proceed past what the vault can afford.
type VaultRepository struct {
	db *gorm.DB
}

func NewVaultRepository(db *gorm.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

func (r *VaultRepository) Balance(ctx context.Context) (float64, error) {
	var vault gormModels.Vault
	err := r.db.WithContext(ctx).Where("id = ?", vaultRowID).First(&vault).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pipeline.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return vault.Balance, nil
}

// Credit adds amount to the vault. Negative amounts are allowed for
// settlement of loss-making flights.
func (r *VaultRepository) Credit(db *gorm.DB, amount float64) error {
	res := db.Model(&gormModels.Vault{}).
		Where("id = ?", vaultRowID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pipeline.ErrNotFound
	}
	return nil
}

// DebitIfSufficient subtracts amount only when the balance covers it.
func (r *VaultRepository) DebitIfSufficient(db *gorm.DB, amount float64) error {
	res := db.Model(&gormModels.Vault{}).
		Where("id = ? AND balance >= ?", vaultRowID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pipeline.ErrInsufficientFunds
	}
	return nil
}
