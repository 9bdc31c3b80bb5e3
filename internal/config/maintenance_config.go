package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/constants"
	gormModels "levant-va/operations/internal/models/gorm"
)

// MaintenanceConfig holds the read-mostly knobs of the adjudication and
// ledger pipeline. Loaded from env defaults, overridable per key through the
// airline_settings table, cached, and hot-reloadable by administration.
type MaintenanceConfig struct {
	GroundedThreshold    float64
	HysteresisMargin     float64
	RepairRatePerPercent float64
	AutoRejectLanding    float64 // negative fpm; rate <= this rejects
	BidTTL               time.Duration
	SessionIdleWindow    time.Duration

	FarePerPax         float64
	CargoRatePerKg     float64
	FuelPricePerKg     float64
	AirportFee         float64
	PilotWagePerHour   float64
	BaseDecayPerFlight float64
}

const settingsCacheTTL = 5 * time.Minute

var allowedKeys = []string{
	constants.CfgGroundedThreshold,
	constants.CfgHysteresisMargin,
	constants.CfgRepairRatePerPct,
	constants.CfgAutoRejectLanding,
	constants.CfgBidTTLHours,
	constants.CfgSessionIdleMinutes,
	constants.CfgFarePerPax,
	constants.CfgCargoRatePerKg,
	constants.CfgFuelPricePerKg,
	constants.CfgAirportFee,
	constants.CfgPilotWagePerHour,
	constants.CfgBaseDecayPerFlight,
}

// ListAllowedKeys returns the settable override keys for the admin API.
func ListAllowedKeys() []string { return allowedKeys }

func IsValidKey(k string) bool {
	for _, allowed := range allowedKeys {
		if allowed == k {
			return true
		}
	}
	return false
}

// MaintenanceConfigService resolves the effective config from env defaults
// plus DB overrides, with a short cache in front of the settings table.
type MaintenanceConfigService struct {
	db    *gorm.DB
	cache common.CacheInterface
}

func NewMaintenanceConfigService(db *gorm.DB, cache common.CacheInterface) *MaintenanceConfigService {
	return &MaintenanceConfigService{db: db, cache: cache}
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// defaults come from the environment, matching the operator-facing variable
// names of the legacy portal where one existed.
func defaults() MaintenanceConfig {
	return MaintenanceConfig{
		GroundedThreshold:    envFloat("GROUNDED_CONDITION_THRESHOLD", 20),
		HysteresisMargin:     envFloat("GROUNDED_HYSTERESIS_MARGIN", 5),
		RepairRatePerPercent: envFloat("REPAIR_RATE_PER_PERCENT", 100),
		AutoRejectLanding:    envFloat("AUTO_PIREP_REJECT_LANDING_RATE", -700),
		BidTTL:               time.Duration(envFloat("BID_TTL_HOURS", 24)) * time.Hour,
		SessionIdleWindow:    time.Duration(envFloat("SESSION_IDLE_MINUTES", 45)) * time.Minute,
		FarePerPax:           envFloat("FARE_PER_PAX", 110),
		CargoRatePerKg:       envFloat("CARGO_RATE_PER_KG", 0.35),
		FuelPricePerKg:       envFloat("FUEL_PRICE_PER_KG", 0.62),
		AirportFee:           envFloat("AIRPORT_FEE", 400),
		PilotWagePerHour:     envFloat("PILOT_WAGE_PER_HOUR", 45),
		BaseDecayPerFlight:   envFloat("BASE_DECAY_PER_FLIGHT", 0.8),
	}
}

// Current returns the effective config, consulting the cache first.
func (s *MaintenanceConfigService) Current(ctx context.Context) MaintenanceConfig {
	cacheKey := constants.CachePrefixSettings + "effective"
	if cached, found := s.cache.Get(cacheKey); found {
		if cfg, ok := cached.(MaintenanceConfig); ok {
			return cfg
		}
	}

	cfg := defaults()

	var rows []gormModels.Setting
	if s.db != nil {
		if err := s.db.WithContext(ctx).Find(&rows).Error; err == nil {
			for _, row := range rows {
				applyOverride(&cfg, row.Key, row.Value)
			}
		}
	}

	s.cache.Set(cacheKey, cfg, settingsCacheTTL)
	return cfg
}

// Set upserts one override and evicts the cache so the next read reloads.
func (s *MaintenanceConfigService) Set(ctx context.Context, key, value string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("%q is not a valid settings key", key)
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("value for %q must be numeric: %w", key, err)
	}

	setting := gormModels.Setting{Key: key, Value: value}
	err := s.db.WithContext(ctx).Save(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	s.cache.Delete(constants.CachePrefixSettings + "effective")
	return nil
}

func applyOverride(cfg *MaintenanceConfig, key, value string) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}

	switch key {
	case constants.CfgGroundedThreshold:
		cfg.GroundedThreshold = f
	case constants.CfgHysteresisMargin:
		cfg.HysteresisMargin = f
	case constants.CfgRepairRatePerPct:
		cfg.RepairRatePerPercent = f
	case constants.CfgAutoRejectLanding:
		cfg.AutoRejectLanding = f
	case constants.CfgBidTTLHours:
		cfg.BidTTL = time.Duration(f) * time.Hour
	case constants.CfgSessionIdleMinutes:
		cfg.SessionIdleWindow = time.Duration(f) * time.Minute
	case constants.CfgFarePerPax:
		cfg.FarePerPax = f
	case constants.CfgCargoRatePerKg:
		cfg.CargoRatePerKg = f
	case constants.CfgFuelPricePerKg:
		cfg.FuelPricePerKg = f
	case constants.CfgAirportFee:
		cfg.AirportFee = f
	case constants.CfgPilotWagePerHour:
		cfg.PilotWagePerHour = f
	case constants.CfgBaseDecayPerFlight:
		cfg.BaseDecayPerFlight = f
	}
}
