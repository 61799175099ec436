package engine

// scanObservation is one radar detection queued for delivery next tick.
type scanObservation struct {
	distance float64
	bearing  float64
}

// pendingCallbacks holds the events this robot must be told about at
// the start of the next tick, in the fixed delivery order Phase 4
// requires. Only scan/scanned/death are lists; everything else has at
// most one pending value per tick.
type pendingCallbacks struct {
	hasWallHit  bool
	wallBearing float64

	hasRobotHit  bool
	robotBearing float64

	hasHit     bool
	hitDamage  float64
	hitBearing float64

	hasBulletHit bool
	bulletTarget int

	hasBulletMiss bool

	deaths []int

	scans    []scanObservation
	scanneds []scanObservation
}

func (p *pendingCallbacks) reset() {
	p.hasWallHit = false
	p.hasRobotHit = false
	p.hasHit = false
	p.hasBulletHit = false
	p.hasBulletMiss = false
	p.deaths = p.deaths[:0]
	p.scans = p.scans[:0]
	p.scanneds = p.scanneds[:0]
}

// robot is the mutable, internal representation of one arena
// participant. Snapshots are produced by copying the exported-shaped
// fields into an immutable RobotState; robot itself is never exposed
// outside the engine package.
type robot struct {
	id    int
	name  string
	color string

	x, y float64

	heading       float64
	speed         float64
	intendedSpeed float64

	gunHeading float64
	gunHeat    float64

	radarHeading     float64
	prevRadarHeading float64
	scanWidth        float64

	health float64
	energy float64
	alive  bool
	score  float64

	ticksSurvived  int
	damageDealt    float64
	damageReceived float64
	bulletsFired   int
	bulletsHit     int
	kills          int
	fuelUsedTick   float64

	bodyTurnIntent  float64
	gunTurnIntent   float64
	radarTurnIntent float64
	fireIntent      float64

	pending pendingCallbacks

	agent *agentHost
}

func newRobot(id int, spec RobotSpec, cfg BattleConfig) *robot {
	return &robot{
		id:        id,
		name:      spec.Name,
		color:     spec.Color,
		health:    cfg.StartHealth,
		energy:    cfg.StartEnergy,
		alive:     true,
		gunHeat:   cfg.StartGunHeat,
		scanWidth: cfg.DefaultScanWidth,
	}
}

// resetForRound restores combat state but preserves the cumulative
// score, matching BattleController.NextRound's "score persists" rule.
func (r *robot) resetForRound(cfg BattleConfig, x, y float64) {
	r.x, r.y = x, y
	r.heading = 0
	r.speed = 0
	r.intendedSpeed = 0
	r.gunHeading = 0
	r.gunHeat = cfg.StartGunHeat
	r.radarHeading = 0
	r.prevRadarHeading = 0
	r.scanWidth = cfg.DefaultScanWidth
	r.health = cfg.StartHealth
	r.energy = cfg.StartEnergy
	r.alive = true
	r.ticksSurvived = 0
	r.damageDealt = 0
	r.damageReceived = 0
	r.bulletsFired = 0
	r.bulletsHit = 0
	r.kills = 0
	r.fuelUsedTick = 0
	r.bodyTurnIntent = 0
	r.gunTurnIntent = 0
	r.radarTurnIntent = 0
	r.fireIntent = 0
	r.pending.reset()
}
