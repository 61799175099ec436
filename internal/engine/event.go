package engine

// EventType discriminates the Event payloads emitted by the pipeline
// each tick, mirroring the teacher's discriminated game.Event design
// but carrying the battle-domain fields this spec names.
type EventType string

const (
	EventBulletFired    EventType = "bullet_fired"
	EventBulletHit      EventType = "bullet_hit"
	EventBulletWall     EventType = "bullet_wall"
	EventRobotHit       EventType = "robot_hit"
	EventRobotDied      EventType = "robot_died"
	EventWallHit        EventType = "wall_hit"
	EventRobotCollision EventType = "robot_collision"
	EventMineDetonated  EventType = "mine_detonated"
	EventCookiePickup   EventType = "cookie_pickup"
	EventScanDetection  EventType = "scan_detection"
	EventScanned        EventType = "scanned"
	EventMineSpawned    EventType = "mine_spawned"
	EventCookieSpawned  EventType = "cookie_spawned"
	EventRoundOver      EventType = "round_over"
)

// Event is the append-only record of one tick's occurrences. Only the
// fields relevant to Type are populated; the rest are zero.
type Event struct {
	Type EventType
	Tick uint64

	RobotID  int
	OtherID  int
	BulletID int
	MineID   int
	CookieID int

	X, Y float64

	Damage       float64
	HealthGained float64
	Bearing      float64
	Distance     float64

	KillerID  int
	HasKiller bool

	Reason string
}
