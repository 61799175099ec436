package engine

import "robowar/internal/metrics"

// Agent is the capability interface every robot controller implements.
// The engine never inspects an Agent's internals beyond these methods —
// a deliberate tagged-capability design in place of inheritance, so the
// same interface serves compiled-sandbox agents and scripted test
// stubs alike.
type Agent interface {
	Init(api *API)
	Tick()

	OnScan(distance, bearing float64)
	OnScanned(bearing float64)
	OnHit(damage, bearing float64)
	OnBulletHit(targetID int)
	OnWallHit(bearing float64)
	OnRobotHit(bearing float64)
	OnBulletMiss()
	OnRobotDeath(robotID int)

	Destroy()
}

// agentHost wires one Agent to its robot and recovers faults at each of
// the call sites the spec names, so a single misbehaving agent never
// corrupts the shared tick loop.
type agentHost struct {
	agent  Agent
	api    *API
	faults *int
}

func newAgentHost(agent Agent, api *API, faultCounter *int) *agentHost {
	return &agentHost{agent: agent, api: api, faults: faultCounter}
}

func (h *agentHost) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			*h.faults++
			metrics.AgentFaultsTotal.Inc()
			if h.api != nil && h.api.onFault != nil {
				h.api.onFault(h.api.robot.id, name, r)
			}
		}
	}()
	fn()
}

func (h *agentHost) init() { h.safeCall("init", func() { h.agent.Init(h.api) }) }
func (h *agentHost) tick() { h.safeCall("tick", func() { h.agent.Tick() }) }
func (h *agentHost) onScan(d, b float64) {
	h.safeCall("onScan", func() { h.agent.OnScan(d, b) })
}
func (h *agentHost) onScanned(b float64) {
	h.safeCall("onScanned", func() { h.agent.OnScanned(b) })
}
func (h *agentHost) onHit(d, b float64) {
	h.safeCall("onHit", func() { h.agent.OnHit(d, b) })
}
func (h *agentHost) onBulletHit(id int) {
	h.safeCall("onBulletHit", func() { h.agent.OnBulletHit(id) })
}
func (h *agentHost) onWallHit(b float64) {
	h.safeCall("onWallHit", func() { h.agent.OnWallHit(b) })
}
func (h *agentHost) onRobotHit(b float64) {
	h.safeCall("onRobotHit", func() { h.agent.OnRobotHit(b) })
}
func (h *agentHost) onBulletMiss() {
	h.safeCall("onBulletMiss", func() { h.agent.OnBulletMiss() })
}
func (h *agentHost) onRobotDeath(id int) {
	h.safeCall("onRobotDeath", func() { h.agent.OnRobotDeath(id) })
}
func (h *agentHost) destroy() {
	h.safeCall("destroy", func() { h.agent.Destroy() })
}
