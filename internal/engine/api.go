package engine

import (
	"robowar/internal/geom"
)

// API is the restricted view an Agent receives through Init. Getters
// read the state captured at the start of the current tick; setters
// only ever record an intent for the pipeline to consume later in the
// same tick — an Agent can never reach past this view to mutate world
// state directly.
type API struct {
	robot *robot
	world *World
	cfg   BattleConfig

	onFault func(robotID int, site string, recovered any)
}

// --- observational getters ---

func (a *API) X() float64            { return a.robot.x }
func (a *API) Y() float64            { return a.robot.y }
func (a *API) Heading() float64      { return a.robot.heading }
func (a *API) Speed() float64        { return a.robot.speed }
func (a *API) GunHeading() float64   { return a.robot.gunHeading }
func (a *API) GunHeat() float64      { return a.robot.gunHeat }
func (a *API) RadarHeading() float64 { return a.robot.radarHeading }
func (a *API) ScanWidth() float64    { return a.robot.scanWidth }
func (a *API) Health() float64       { return a.robot.health }
func (a *API) Energy() float64       { return a.robot.energy }
func (a *API) Score() float64        { return a.robot.score }
func (a *API) RobotID() int          { return a.robot.id }
func (a *API) Tick() uint64          { return a.world.tick }
func (a *API) ArenaWidth() float64   { return a.cfg.ArenaWidth }
func (a *API) ArenaHeight() float64  { return a.cfg.ArenaHeight }
func (a *API) RobotCount() int       { return len(a.world.robots) }

// DistanceTo returns the Euclidean distance from this robot to the
// robot with the given id, or -1 if that id does not exist.
func (a *API) DistanceTo(otherID int) float64 {
	other := a.world.robotByID(otherID)
	if other == nil {
		return -1
	}
	return geom.Distance(a.robot.x, a.robot.y, other.x, other.y)
}

// BearingTo returns the absolute bearing from this robot to the robot
// with the given id, or 0 if that id does not exist.
func (a *API) BearingTo(otherID int) float64 {
	other := a.world.robotByID(otherID)
	if other == nil {
		return 0
	}
	return geom.BearingTo(a.robot.x, a.robot.y, other.x, other.y)
}

// Random returns a float64 in [0,1) drawn from the battle's single
// shared PRNG, so agent-observable randomness stays part of the
// deterministic replay stream.
func (a *API) Random() float64 {
	return a.world.rng.NextFloat()
}

// --- pure math helpers ---

// NormalizeAngle maps any degree value into [0, 360).
func (a *API) NormalizeAngle(deg float64) float64 { return geom.NormalizeDegrees(deg) }

// AngleDiff returns the signed shortest-path difference from `from`
// to `to` in (-180, 180].
func (a *API) AngleDiff(from, to float64) float64 { return geom.AngleDiff(from, to) }

// Distance returns the Euclidean distance between two points.
func (a *API) Distance(ax, ay, bx, by float64) float64 { return geom.Distance(ax, ay, bx, by) }

// --- intent setters ---

// SetSpeed records the target speed for the movement phase to
// approach via acceleration/deceleration.
func (a *API) SetSpeed(speed float64) {
	a.robot.intendedSpeed = geom.Clamp(speed, -a.cfg.MaxSpeed, a.cfg.MaxSpeed)
}

func (a *API) SetTurnRate(rate float64) {
	a.robot.bodyTurnIntent = geom.ClampTurn(rate, a.cfg.MaxBodyTurnRate)
}

// SetHeading computes the signed shortest turn rate toward heading,
// clamped to the body turn cap, and records it as this tick's intent.
func (a *API) SetHeading(heading float64) {
	diff := geom.AngleDiff(a.robot.heading, heading)
	a.robot.bodyTurnIntent = geom.ClampTurn(diff, a.cfg.MaxBodyTurnRate)
}

func (a *API) SetGunTurnRate(rate float64) {
	a.robot.gunTurnIntent = geom.ClampTurn(rate, a.cfg.MaxGunTurnRate)
}

func (a *API) SetGunHeading(heading float64) {
	diff := geom.AngleDiff(a.robot.gunHeading, heading)
	a.robot.gunTurnIntent = geom.ClampTurn(diff, a.cfg.MaxGunTurnRate)
}

func (a *API) SetRadarTurnRate(rate float64) {
	a.robot.radarTurnIntent = geom.ClampTurn(rate, a.cfg.MaxRadarTurnRate)
}

func (a *API) SetRadarHeading(heading float64) {
	diff := geom.AngleDiff(a.robot.radarHeading, heading)
	a.robot.radarTurnIntent = geom.ClampTurn(diff, a.cfg.MaxRadarTurnRate)
}

func (a *API) SetScanWidth(width float64) {
	a.robot.scanWidth = geom.Clamp(width, 1, a.cfg.MaxScanWidth)
}

// Fire records a fire intent; power is clamped to the configured range
// and actually consumed only if the gun is cool and energy suffices
// (§7: infeasible intents are silently ignored, not errors).
func (a *API) Fire(power float64) {
	if power <= 0 {
		return
	}
	a.robot.fireIntent = geom.Clamp(power, a.cfg.MinFirePower, a.cfg.MaxFirePower)
}
