package engine

import (
	"math"

	"robowar/internal/geom"
)

func degToRad(d float64) float64 { return d * math.Pi / 180 }

// phase0ResetIntents snapshots prevRadarHeading and clears the
// per-tick turn/fire intents before agents get a chance to set new
// ones this tick. Speed intent is deliberately NOT reset: it persists
// until an agent changes it.
func phase0ResetIntents(w *World) {
	for _, r := range w.robots {
		if !r.alive {
			continue
		}
		r.prevRadarHeading = r.radarHeading
		r.bodyTurnIntent = 0
		r.gunTurnIntent = 0
		r.radarTurnIntent = 0
		r.fireIntent = 0
	}
}

// phase1BulletMotion advances every live bullet along its heading.
func phase1BulletMotion(w *World) {
	for _, b := range w.bullets {
		b.prevX, b.prevY = b.x, b.y
		rad := degToRad(b.heading)
		b.x += b.speed * math.Sin(rad)
		b.y -= b.speed * math.Cos(rad)
	}
}

// phase2BulletRobotCollision resolves swept bullet-robot hits in
// bullet order, first hit per bullet wins (smallest robot index).
func phase2BulletRobotCollision(bc *BattleController) {
	w := bc.world
	cfg := bc.cfg
	hitRadius := cfg.RobotRadius + cfg.BulletRadius

	for _, b := range w.bullets {
		if b.removed {
			continue
		}
		for _, r := range w.robots {
			if !r.alive || r.id == b.ownerID {
				continue
			}
			hit, t := geom.SweptSegmentCircle(b.prevX, b.prevY, b.x, b.y, r.x, r.y, hitRadius)
			if !hit {
				continue
			}

			ix := b.prevX + t*(b.x-b.prevX)
			iy := b.prevY + t*(b.y-b.prevY)
			b.x, b.y = ix, iy

			damage := cfg.DamageBase*b.power + math.Max(0, b.power-1)*cfg.DamageBonus
			r.health = math.Max(0, r.health-damage)
			r.damageReceived += damage

			shooter := w.robotByID(b.ownerID)
			if shooter != nil {
				shooter.damageDealt += damage
				shooter.bulletsHit++
				shooter.energy = math.Min(cfg.MaxEnergy, shooter.energy+3*b.power)
				shooter.pending.hasBulletHit = true
				shooter.pending.bulletTarget = r.id
			}

			bearing := geom.AngleDiff(r.heading, geom.BearingTo(r.x, r.y, b.prevX, b.prevY))
			r.pending.hasHit = true
			r.pending.hitDamage = damage
			r.pending.hitBearing = bearing

			w.emit(Event{Type: EventBulletHit, RobotID: b.ownerID, OtherID: r.id, BulletID: b.id, X: ix, Y: iy, Damage: damage})
			// robot_hit mirrors the onHit callback from the target's own
			// perspective, carrying the same damage at the signed bearing
			// queued for delivery.
			w.emit(Event{Type: EventRobotHit, RobotID: r.id, OtherID: b.ownerID, BulletID: b.id, Damage: damage, Bearing: bearing})

			if r.health <= 0 && r.alive {
				r.alive = false
				if shooter != nil {
					shooter.kills++
				}
				w.emit(Event{Type: EventRobotDied, RobotID: r.id, KillerID: b.ownerID, HasKiller: true})
				for _, other := range w.robots {
					if other.id != r.id && other.alive {
						other.pending.deaths = append(other.pending.deaths, r.id)
					}
				}
			}

			b.removed = true
			break
		}
	}

	compactBullets(w)
}

// phase3BulletBounds removes bullets that left the arena, notifying
// their owner of a miss.
func phase3BulletBounds(w *World) {
	for _, b := range w.bullets {
		if b.removed {
			continue
		}
		if b.x < 0 || b.x > w.cfg.ArenaWidth || b.y < 0 || b.y > w.cfg.ArenaHeight {
			w.emit(Event{Type: EventBulletWall, RobotID: b.ownerID, BulletID: b.id, X: b.x, Y: b.y})
			shooter := w.robotByID(b.ownerID)
			if shooter != nil {
				shooter.pending.hasBulletMiss = true
			}
			b.removed = true
		}
	}
	compactBullets(w)
}

func compactBullets(w *World) {
	kept := w.bullets[:0]
	for _, b := range w.bullets {
		if !b.removed {
			kept = append(kept, b)
		}
	}
	w.bullets = kept
}

// phase4DeliverCallbacks delivers last tick's queued events in the
// fixed global order, then clears the queues.
func phase4DeliverCallbacks(w *World) {
	for _, r := range w.robots {
		if !r.alive || r.agent == nil {
			continue
		}
		p := &r.pending
		if p.hasWallHit {
			r.agent.onWallHit(p.wallBearing)
		}
		if p.hasRobotHit {
			r.agent.onRobotHit(p.robotBearing)
		}
		if p.hasHit {
			r.agent.onHit(p.hitDamage, p.hitBearing)
		}
		if p.hasBulletHit {
			r.agent.onBulletHit(p.bulletTarget)
		}
		if p.hasBulletMiss {
			r.agent.onBulletMiss()
		}
		for _, deadID := range p.deaths {
			r.agent.onRobotDeath(deadID)
		}
		for _, s := range p.scans {
			r.agent.onScan(s.distance, s.bearing)
		}
		for _, s := range p.scanneds {
			r.agent.onScanned(s.bearing)
		}
		p.reset()
	}
}

// phase5AgentTick invokes each live robot's Tick in index order.
func phase5AgentTick(w *World) {
	for _, r := range w.robots {
		if !r.alive || r.agent == nil {
			continue
		}
		r.fuelUsedTick = 0
		r.agent.tick()
		r.ticksSurvived++
	}
}

// phase6Movement rotates and moves each robot, clamps to arena bounds,
// and handles wall collision damage, gun/radar turn, heat cooldown,
// and energy regen.
func phase6Movement(w *World) {
	cfg := w.cfg
	for _, r := range w.robots {
		if !r.alive {
			continue
		}

		turn := geom.ClampTurn(r.bodyTurnIntent, cfg.MaxBodyTurnRate)
		r.heading = geom.NormalizeDegrees(r.heading + turn)

		if r.speed < r.intendedSpeed {
			r.speed = math.Min(r.intendedSpeed, r.speed+cfg.Acceleration)
		} else if r.speed > r.intendedSpeed {
			r.speed = math.Max(r.intendedSpeed, r.speed-cfg.Deceleration)
		}
		r.speed = geom.Clamp(r.speed, -cfg.MaxSpeed, cfg.MaxSpeed)

		rad := degToRad(r.heading - 90)
		nx := r.x + math.Cos(rad)*r.speed*0.1
		ny := r.y + math.Sin(rad)*r.speed*0.1

		clampedX := geom.Clamp(nx, cfg.RobotRadius, cfg.ArenaWidth-cfg.RobotRadius)
		clampedY := geom.Clamp(ny, cfg.RobotRadius, cfg.ArenaHeight-cfg.RobotRadius)

		hitWall := clampedX != nx || clampedY != ny
		r.x, r.y = clampedX, clampedY

		if hitWall {
			damage := math.Abs(r.speed) * cfg.WallDamageFactor
			r.health = math.Max(0, r.health-damage)
			r.damageReceived += damage

			var bearing float64
			switch {
			case ny < cfg.RobotRadius:
				bearing = geom.AngleDiff(r.heading, 0)
			case nx > cfg.ArenaWidth-cfg.RobotRadius:
				bearing = geom.AngleDiff(r.heading, 90)
			case ny > cfg.ArenaHeight-cfg.RobotRadius:
				bearing = geom.AngleDiff(r.heading, 180)
			default:
				bearing = geom.AngleDiff(r.heading, 270)
			}

			w.emit(Event{Type: EventWallHit, RobotID: r.id, Damage: damage, Bearing: bearing, X: r.x, Y: r.y})
			r.pending.hasWallHit = true
			r.pending.wallBearing = bearing
			r.speed = 0

			if r.health <= 0 && r.alive {
				r.alive = false
				w.emit(Event{Type: EventRobotDied, RobotID: r.id})
			}
		}

		r.gunHeading = geom.NormalizeDegrees(r.gunHeading + geom.ClampTurn(r.gunTurnIntent, cfg.MaxGunTurnRate))
		r.gunHeat = math.Max(0, r.gunHeat-cfg.GunCooldownRate)
		r.radarHeading = geom.NormalizeDegrees(r.radarHeading + geom.ClampTurn(r.radarTurnIntent, cfg.MaxRadarTurnRate))
		r.energy = math.Min(cfg.MaxEnergy, r.energy+cfg.EnergyRegenRate)
	}
}

// phase7RobotCollision applies ram damage exactly once per new
// overlap, queues onRobotHit for both sides, and separates overlapping
// pairs regardless of whether this is a fresh or continuing contact.
func phase7RobotCollision(w *World) {
	cfg := w.cfg
	minDist := cfg.RobotRadius * 2
	current := make(map[[2]int]bool)

	w.rebuildGrid()

	for i := 0; i < len(w.robots); i++ {
		a := w.robots[i]
		if !a.alive {
			continue
		}
		candidates := sortedCandidates(w.grid.QueryRadius(a.x, a.y, minDist))
		for _, candidateID := range candidates {
			if candidateID <= a.id {
				continue // unordered pair already resolved (or self)
			}
			b := w.robotByID(candidateID)
			if b == nil || !b.alive {
				continue
			}
			dist := geom.Distance(a.x, a.y, b.x, b.y)
			if dist >= minDist {
				continue
			}

			key := canonPair(a.id, b.id)
			current[key] = true

			if !w.collidingPairs[key] {
				damage := cfg.RamDamageBase + cfg.RamDamageFactor*(math.Abs(a.speed)+math.Abs(b.speed))
				applyRamDamage(w, a, b, damage)
				applyRamDamage(w, b, a, damage)
				w.emit(Event{Type: EventRobotCollision, RobotID: a.id, OtherID: b.id, Damage: damage})
			}

			overlap := minDist - dist
			if dist == 0 {
				dist = 0.0001
			}
			dx, dy := (b.x-a.x)/dist, (b.y-a.y)/dist
			a.x -= dx * overlap / 2
			a.y -= dy * overlap / 2
			b.x += dx * overlap / 2
			b.y += dy * overlap / 2
		}
	}

	w.collidingPairs = current
}

func applyRamDamage(w *World, self, other *robot, damage float64) {
	self.health = math.Max(0, self.health-damage)
	self.damageReceived += damage
	bearing := geom.AngleDiff(self.heading, geom.BearingTo(self.x, self.y, other.x, other.y))
	self.pending.hasRobotHit = true
	self.pending.robotBearing = bearing

	if self.health <= 0 && self.alive {
		self.alive = false
		w.emit(Event{Type: EventRobotDied, RobotID: self.id})
	}
}

// phase8DeathPropagation queues onRobotDeath for any death emitted in
// phases 6-7 that did not already queue one in phase 2.
func phase8DeathPropagation(w *World) {
	for _, ev := range w.events {
		if ev.Type != EventRobotDied {
			continue
		}
		if ev.HasKiller {
			continue // phase 2 already queued this one
		}
		for _, other := range w.robots {
			if other.id != ev.RobotID && other.alive {
				already := false
				for _, d := range other.pending.deaths {
					if d == ev.RobotID {
						already = true
						break
					}
				}
				if !already {
					other.pending.deaths = append(other.pending.deaths, ev.RobotID)
				}
			}
		}
	}
}

// phase9RadarScan detects targets within scan range whose bearing
// falls in the directed sweep arc since last tick. When scan range is
// finite, the spatial grid prefilters candidates (re-sorted ascending
// before use, per the engine's determinism rule); an infinite range
// degenerates to the full robot list, matching a plain full scan.
func phase9RadarScan(w *World) {
	finiteRange := !math.IsInf(w.cfg.ScanRange, 1)
	if finiteRange {
		w.rebuildGrid()
	}

	for _, scanner := range w.robots {
		if !scanner.alive {
			continue
		}

		var targets []*robot
		if finiteRange {
			for _, id := range sortedCandidates(w.grid.QueryRadius(scanner.x, scanner.y, w.cfg.ScanRange)) {
				if t := w.robotByID(id); t != nil {
					targets = append(targets, t)
				}
			}
		} else {
			targets = w.robots
		}

		for _, target := range targets {
			if target.id == scanner.id || !target.alive {
				continue
			}
			dist := geom.Distance(scanner.x, scanner.y, target.x, target.y)
			if dist > w.cfg.ScanRange {
				continue
			}
			bearing := geom.BearingTo(scanner.x, scanner.y, target.x, target.y)
			if !geom.InSweepArc(scanner.prevRadarHeading, scanner.radarHeading, bearing) {
				continue
			}

			relScanner := geom.AngleDiff(scanner.heading, bearing)
			relTarget := geom.AngleDiff(target.heading, geom.BearingTo(target.x, target.y, scanner.x, scanner.y))

			scanner.pending.scans = append(scanner.pending.scans, scanObservation{distance: dist, bearing: relScanner})
			target.pending.scanneds = append(target.pending.scanneds, scanObservation{bearing: relTarget})

			w.emit(Event{Type: EventScanDetection, RobotID: scanner.id, OtherID: target.id, Distance: dist, Bearing: bearing})
			w.emit(Event{Type: EventScanned, RobotID: target.id, OtherID: scanner.id, Bearing: bearing})
		}
	}
}

// phase10Spawning attempts to place a new mine and/or cookie on their
// configured cadence, subject to the cap and minimum-distance rule.
func phase10Spawning(w *World) {
	cfg := w.cfg
	if cfg.MineSpawnInterval > 0 && w.tick%uint64(cfg.MineSpawnInterval) == 0 && len(w.mines) < cfg.MaxMines {
		if x, y, ok := findSpawnPoint(w); ok {
			w.nextMineID++
			m := &mine{id: w.nextMineID, x: x, y: y}
			w.mines = append(w.mines, m)
			w.emit(Event{Type: EventMineSpawned, MineID: m.id, X: x, Y: y})
		}
	}
	if cfg.CookieSpawnInterval > 0 && w.tick%uint64(cfg.CookieSpawnInterval) == 0 && len(w.cookies) < cfg.MaxCookies {
		if x, y, ok := findSpawnPoint(w); ok {
			w.nextCookieID++
			c := &cookie{id: w.nextCookieID, x: x, y: y}
			w.cookies = append(w.cookies, c)
			w.emit(Event{Type: EventCookieSpawned, CookieID: c.id, X: x, Y: y})
		}
	}
}

func findSpawnPoint(w *World) (float64, float64, bool) {
	cfg := w.cfg
	for attempt := 0; attempt < cfg.SpawnAttemptBudget; attempt++ {
		x := w.rng.NextRange(0, cfg.ArenaWidth)
		y := w.rng.NextRange(0, cfg.ArenaHeight)
		ok := true
		for _, r := range w.robots {
			if !r.alive {
				continue
			}
			if geom.Distance(x, y, r.x, r.y) < cfg.MinSpawnDistanceFromRobot {
				ok = false
				break
			}
		}
		if ok {
			return x, y, true
		}
	}
	return 0, 0, false
}

// phase11Pickup resolves mine detonation and cookie pickup, robot
// index ascending, each item consumed by at most one robot.
func phase11Pickup(w *World) {
	cfg := w.cfg

	for _, r := range w.robots {
		for _, m := range w.mines {
			if !r.alive {
				break
			}
			if m.removed || geom.Distance(r.x, r.y, m.x, m.y) > cfg.RobotRadius+cfg.MineRadius {
				continue
			}
			m.removed = true
			r.health = math.Max(0, r.health-cfg.MineDamage)
			r.damageReceived += cfg.MineDamage
			w.emit(Event{Type: EventMineDetonated, RobotID: r.id, MineID: m.id, Damage: cfg.MineDamage})
			if r.health <= 0 {
				r.alive = false
				w.emit(Event{Type: EventRobotDied, RobotID: r.id})
				// Phase 8 already ran this tick, so the death
				// announcement is queued here directly.
				for _, other := range w.robots {
					if other.id != r.id && other.alive {
						other.pending.deaths = append(other.pending.deaths, r.id)
					}
				}
			}
		}
		if !r.alive {
			continue
		}
		for _, c := range w.cookies {
			if c.removed || geom.Distance(r.x, r.y, c.x, c.y) > cfg.RobotRadius+cfg.CookieRadius {
				continue
			}
			c.removed = true
			gained := math.Min(cfg.CookieHeal, cfg.MaxHealth-r.health)
			r.health += gained
			w.emit(Event{Type: EventCookiePickup, RobotID: r.id, CookieID: c.id, HealthGained: gained})
		}
	}

	keptMines := w.mines[:0]
	for _, m := range w.mines {
		if !m.removed {
			keptMines = append(keptMines, m)
		}
	}
	w.mines = keptMines

	keptCookies := w.cookies[:0]
	for _, c := range w.cookies {
		if !c.removed {
			keptCookies = append(keptCookies, c)
		}
	}
	w.cookies = keptCookies
}

// phase12FireIntents spawns bullets for robots whose fire intent is
// feasible: gun is cool and energy covers the cost.
func phase12FireIntents(w *World) {
	cfg := w.cfg
	for _, r := range w.robots {
		if !r.alive || r.fireIntent <= 0 || r.gunHeat > 0 {
			continue
		}
		power := geom.Clamp(r.fireIntent, cfg.MinFirePower, cfg.MaxFirePower)
		cost := power * cfg.FireCostFactor
		if r.energy < cost {
			continue
		}

		r.energy -= cost
		r.gunHeat = 1 + power/5
		r.bulletsFired++

		rad := degToRad(r.gunHeading)
		bx := r.x + cfg.RobotRadius*math.Sin(rad)
		by := r.y - cfg.RobotRadius*math.Cos(rad)

		w.nextBulletID++
		b := &bullet{
			id:      w.nextBulletID,
			ownerID: r.id,
			x:       bx,
			y:       by,
			prevX:   bx,
			prevY:   by,
			heading: r.gunHeading,
			speed:   cfg.BulletBaseSpeed - cfg.BulletSpeedFactor*power,
			power:   power,
		}
		w.bullets = append(w.bullets, b)
		w.emit(Event{Type: EventBulletFired, RobotID: r.id, BulletID: b.id, X: bx, Y: by})
	}
}

// phase13RoundEnd checks the two round-termination conditions and, if
// met, computes placements.
func phase13RoundEnd(bc *BattleController) *RoundResult {
	w := bc.world
	cfg := bc.cfg

	aliveCount := 0
	for _, r := range w.robots {
		if r.alive {
			aliveCount++
		}
	}

	timeUp := w.tick >= uint64(cfg.TicksPerRound)
	lastStanding := len(w.robots) > 1 && aliveCount <= 1

	if !timeUp && !lastStanding {
		return nil
	}

	reason := "time_limit"
	if lastStanding {
		reason = "last_standing"
	}

	ranked := make([]*robot, len(w.robots))
	copy(ranked, w.robots)
	sortRobotsByPlacement(ranked)

	result := &RoundResult{Round: w.round, Reason: reason}
	for i, r := range ranked {
		points := 0.0
		if i < len(cfg.PlacementPoints) {
			points = cfg.PlacementPoints[i]
		}
		r.score += points
		result.Ranking = append(result.Ranking, Placement{RobotID: r.id, Place: i + 1, Points: points})
	}

	w.emit(Event{Type: EventRoundOver, Reason: reason})
	return result
}

// sortRobotsByPlacement orders alive robots first, then by descending
// health, with a stable in-place insertion sort over a small roster.
// Dead robots all have health 0, so they keep their robot-index order;
// elimination order is not tracked.
func sortRobotsByPlacement(robots []*robot) {
	for i := 1; i < len(robots); i++ {
		j := i
		for j > 0 && less(robots[j], robots[j-1]) {
			robots[j], robots[j-1] = robots[j-1], robots[j]
			j--
		}
	}
}

func less(a, b *robot) bool {
	if a.alive != b.alive {
		return a.alive
	}
	return a.health > b.health
}
