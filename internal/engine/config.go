package engine

import (
	"math"

	"github.com/pkg/errors"
)

// RobotSpec names one seat in the arena. The Agent implementation that
// fills the seat is supplied separately at battle construction time;
// the spec only carries display data plus the fixed index identity.
type RobotSpec struct {
	Name  string
	Color string
}

// BattleConfig is the immutable configuration for the lifetime of a
// battle. Every numeric default below matches the reference table; see
// Defaults().
type BattleConfig struct {
	ArenaWidth  float64
	ArenaHeight float64

	MaxSpeed         float64
	Acceleration     float64
	Deceleration     float64
	MaxBodyTurnRate  float64
	MaxGunTurnRate   float64
	MaxRadarTurnRate float64
	DefaultScanWidth float64
	MaxScanWidth     float64
	ScanRange        float64

	BulletBaseSpeed   float64
	BulletSpeedFactor float64
	DamageBase        float64
	DamageBonus       float64
	WallDamageFactor  float64
	RamDamageBase     float64
	RamDamageFactor   float64

	MineDamage   float64
	CookieHeal   float64
	MinFirePower float64
	MaxFirePower float64

	StartHealth     float64
	MaxHealth       float64
	StartEnergy     float64
	MaxEnergy       float64
	EnergyRegenRate float64
	FireCostFactor  float64

	RobotRadius  float64
	BulletRadius float64
	CookieRadius float64
	MineRadius   float64

	GunCooldownRate float64
	StartGunHeat    float64

	MineSpawnInterval         int
	CookieSpawnInterval       int
	MaxMines                  int
	MaxCookies                int
	MinSpawnDistanceFromRobot float64
	SpawnAttemptBudget        int

	TicksPerRound int
	RoundCount    int
	MasterSeed    uint32

	PlacementPoints []float64

	Robots []RobotSpec

	FuelPerTick float64
}

// Defaults returns the reference configuration table.
func Defaults() BattleConfig {
	return BattleConfig{
		ArenaWidth:  800,
		ArenaHeight: 600,

		MaxSpeed:         100,
		Acceleration:     1.0,
		Deceleration:     2.0,
		MaxBodyTurnRate:  10,
		MaxGunTurnRate:   20,
		MaxRadarTurnRate: 45,
		DefaultScanWidth: 10,
		MaxScanWidth:     45,
		ScanRange:        math.Inf(1),

		BulletBaseSpeed:   20,
		BulletSpeedFactor: 3,
		DamageBase:        4,
		DamageBonus:       2,
		WallDamageFactor:  0.5,
		RamDamageBase:     2,
		RamDamageFactor:   0.1,

		MineDamage:   30,
		CookieHeal:   20,
		MinFirePower: 0.1,
		MaxFirePower: 3,

		StartHealth:     100,
		MaxHealth:       100,
		StartEnergy:     100,
		MaxEnergy:       100,
		EnergyRegenRate: 0.1,
		FireCostFactor:  1.0,

		RobotRadius:  18,
		BulletRadius: 3,
		CookieRadius: 10,
		MineRadius:   8,

		GunCooldownRate: 0.1,
		StartGunHeat:    3.0,

		MineSpawnInterval:         250,
		CookieSpawnInterval:       150,
		MaxMines:                  5,
		MaxCookies:                5,
		MinSpawnDistanceFromRobot: 60,
		SpawnAttemptBudget:        16,

		TicksPerRound: 2000,
		RoundCount:    1,
		MasterSeed:    12345,

		PlacementPoints: []float64{3, 1},

		FuelPerTick: 0,
	}
}

// ValidateBase checks the bounds every configuration must satisfy
// regardless of whether a roster has been attached yet: a roster-less
// config is a legal intermediate (the loader hands one to a caller who
// seats robots later), so only battle construction insists on seats.
func ValidateBase(cfg BattleConfig) error {
	if cfg.ArenaWidth <= 0 || cfg.ArenaHeight <= 0 {
		return errors.Wrap(ErrInvalidConfig, "arena dimensions must be positive")
	}
	if cfg.TicksPerRound <= 0 {
		return errors.Wrap(ErrInvalidConfig, "ticksPerRound must be positive")
	}
	if len(cfg.PlacementPoints) == 0 {
		return errors.Wrap(ErrInvalidConfig, "placement points must not be empty")
	}
	return nil
}

// Validate rejects the configuration errors called out as caller
// errors: non-positive arena dimensions, a non-positive tick budget,
// an empty placement-points table, or an empty robot roster whenever
// RoundCount is positive.
func Validate(cfg BattleConfig) error {
	if err := ValidateBase(cfg); err != nil {
		return err
	}
	if cfg.RoundCount > 0 && len(cfg.Robots) == 0 {
		return errors.Wrap(ErrInvalidConfig, "robot roster must not be empty")
	}
	return nil
}
