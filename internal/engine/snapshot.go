package engine

// RobotState is the immutable, publicly observable projection of one
// robot at the end of a tick. Every field is a value type; a consumer
// may retain a GameState indefinitely without the engine's later
// mutation of its own internal robot ever becoming visible through it.
type RobotState struct {
	ID    int
	Name  string
	Color string

	X, Y float64

	Heading      float64
	Speed        float64
	GunHeading   float64
	GunHeat      float64
	RadarHeading float64
	ScanWidth    float64

	Health float64
	Energy float64
	Alive  bool
	Score  float64

	TicksSurvived  int
	DamageDealt    float64
	DamageReceived float64
	BulletsFired   int
	BulletsHit     int
	Kills          int
}

// BulletState is the immutable projection of one live bullet.
type BulletState struct {
	ID      int
	OwnerID int
	X, Y    float64
	Heading float64
	Speed   float64
	Power   float64
}

// MineState is the immutable projection of one live mine.
type MineState struct {
	ID   int
	X, Y float64
}

// CookieState is the immutable projection of one live cookie.
type CookieState struct {
	ID   int
	X, Y float64
}

// GameState is a deep-immutable, self-contained snapshot of the whole
// arena at the end of one tick, built fresh every tick (no buffer
// reuse, unlike the triple-buffered pool this design is adapted from —
// see the grounding ledger for why reuse is unsafe for this contract).
type GameState struct {
	Tick  uint64
	Round int

	Robots  []RobotState
	Bullets []BulletState
	Mines   []MineState
	Cookies []CookieState

	Events []Event

	RoundOver   bool
	RoundReason string
}

func (r *robot) toState() RobotState {
	return RobotState{
		ID:             r.id,
		Name:           r.name,
		Color:          r.color,
		X:              r.x,
		Y:              r.y,
		Heading:        r.heading,
		Speed:          r.speed,
		GunHeading:     r.gunHeading,
		GunHeat:        r.gunHeat,
		RadarHeading:   r.radarHeading,
		ScanWidth:      r.scanWidth,
		Health:         r.health,
		Energy:         r.energy,
		Alive:          r.alive,
		Score:          r.score,
		TicksSurvived:  r.ticksSurvived,
		DamageDealt:    r.damageDealt,
		DamageReceived: r.damageReceived,
		BulletsFired:   r.bulletsFired,
		BulletsHit:     r.bulletsHit,
		Kills:          r.kills,
	}
}

func (b *bullet) toState() BulletState {
	return BulletState{
		ID:      b.id,
		OwnerID: b.ownerID,
		X:       b.x,
		Y:       b.y,
		Heading: b.heading,
		Speed:   b.speed,
		Power:   b.power,
	}
}
