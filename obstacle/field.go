package obstacle

import (
	"math/rand"
	"time"

	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// Field owns the obstacle arena
// Dead obstacles stay in the arena as tombstones until the next Update sweeps them,
// so a death is never applied to a slice that is being compacted
// Not safe for concurrent use; touched only by the frame loop
type Field struct {
	cfg config.Field
	rng *rand.Rand

	arena  []Obstacle // ordered by ID
	nextID uint64

	sinceSpawn time.Duration
	nextSpawn  time.Duration
}

// NewField creates an empty field; a nil rng seeds from cfg.Seed or the clock
func NewField(cfg config.Field, rng *rand.Rand) *Field {
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	f := &Field{cfg: cfg, rng: rng, nextID: 1}
	f.nextSpawn = f.drawInterval()
	return f
}

// Reset clears the arena and restarts the spawn timer
func (f *Field) Reset() {
	f.arena = f.arena[:0]
	f.sinceSpawn = 0
	f.nextSpawn = f.drawInterval()
}

// Update sweeps tombstones from the previous tick and advances live obstacles by dt
func (f *Field) Update(dt time.Duration) {
	f.sweep()

	secs := dt.Seconds()
	for i := range f.arena {
		f.arena[i].advance(secs)
	}
}

// sweep compacts the arena in place, preserving ID order
func (f *Field) sweep() {
	live := f.arena[:0]
	for _, o := range f.arena {
		if !o.Dead {
			live = append(live, o)
		}
	}
	// Drop references held in the tail
	clear(f.arena[len(live):])
	f.arena = live
}

// MaybeSpawn accumulates dt and spawns one obstacle when the current interval elapses
func (f *Field) MaybeSpawn(dt time.Duration) (Obstacle, bool) {
	f.sinceSpawn += dt
	if f.sinceSpawn < f.nextSpawn {
		return Obstacle{}, false
	}

	// At most one spawn per tick; a long stall does not burst
	f.sinceSpawn = 0
	f.nextSpawn = f.drawInterval()

	return f.Spawn(f.randomY(), f.randomSpeed()), true
}

// Spawn places an obstacle at the spawn edge at y with speed
func (f *Field) Spawn(y, speed float64) Obstacle {
	size := vmath.Vec2{X: f.cfg.ObstacleWidth, Y: f.cfg.ObstacleHeight}
	y = vmath.Clamp(y, 0, max(f.cfg.Height-size.Y, 0))

	o := Obstacle{
		ID:       f.nextID,
		Position: vmath.Vec2{X: f.cfg.Width, Y: y},
		Size:     size,
		Speed:    speed,
	}
	f.nextID++
	f.arena = append(f.arena, o)
	return o
}

// SpawnAt inserts an obstacle at an explicit position, used for scripted layouts
func (f *Field) SpawnAt(pos vmath.Vec2, speed float64) Obstacle {
	o := Obstacle{
		ID:       f.nextID,
		Position: pos,
		Size:     vmath.Vec2{X: f.cfg.ObstacleWidth, Y: f.cfg.ObstacleHeight},
		Speed:    speed,
	}
	f.nextID++
	f.arena = append(f.arena, o)
	return o
}

// RetireExited marks obstacles whose right edge passed the player-side boundary as missed
// Returns the IDs retired by this call
func (f *Field) RetireExited() []uint64 {
	var retired []uint64
	for i := range f.arena {
		o := &f.arena[i]
		if o.Dead {
			continue
		}
		if o.Position.X+o.Size.X <= 0 {
			o.Dead = true
			o.Cause = CauseMissed
			retired = append(retired, o.ID)
		}
	}
	return retired
}

// Kill tombstones id as hit
// Returns false for unknown or already dead obstacles, so a hit is counted at most once
func (f *Field) Kill(id uint64) bool {
	i := f.find(id)
	if i < 0 || f.arena[i].Dead {
		return false
	}
	f.arena[i].Dead = true
	f.arena[i].Cause = CauseHit
	return true
}

// find locates id by binary search over the ID-ordered arena
func (f *Field) find(id uint64) int {
	lo, hi := 0, len(f.arena)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if f.arena[mid].ID < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(f.arena) && f.arena[lo].ID == id {
		return lo
	}
	return -1
}

// Candidates returns copies of the live obstacles
func (f *Field) Candidates() []Obstacle {
	out := make([]Obstacle, 0, len(f.arena))
	for _, o := range f.arena {
		if !o.Dead {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the arena size including tombstones
func (f *Field) Len() int {
	return len(f.arena)
}

func (f *Field) drawInterval() time.Duration {
	lo, hi := f.cfg.SpawnMin, f.cfg.SpawnMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(f.rng.Int63n(int64(hi-lo)+1))
}

func (f *Field) randomY() float64 {
	span := f.cfg.Height - f.cfg.ObstacleHeight
	if span <= 0 {
		return 0
	}
	return f.rng.Float64() * span
}

func (f *Field) randomSpeed() float64 {
	return f.cfg.SpeedMin + f.rng.Float64()*(f.cfg.SpeedMax-f.cfg.SpeedMin)
}
