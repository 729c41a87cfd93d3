package particles

import (
	"math"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum particle count to use the worker pool.
// Below this, single-threaded is faster due to dispatch overhead.
const parallelThreshold = 2048

// Params is the compute-relevant parameter snapshot for one tick.
type Params struct {
	Gravity     float32 // Pointer force strength (px/s^2 at MinDistance)
	Friction    float32 // Velocity retention per 60Hz tick, [0,1)
	MinDistance float32 // Force falloff clamp (pixels)
	Attract     bool    // true = attract toward pointer, false = repel
}

// Pointer is the pointer force state read once per tick.
type Pointer struct {
	X, Y   float32
	Active bool
}

// workChunk is a disjoint index range for one worker.
type workChunk struct {
	start, end int
}

// tickState holds the per-dispatch inputs shared by all workers. Written
// once before dispatch, read-only during integration.
type tickState struct {
	cur, nxt *Buffer
	params   Params
	pointer  Pointer
	w, h     float32
	dt       float32
}

// Integrator runs the per-tick physics update across a persistent worker
// pool. Chunks cover disjoint ranges of the next buffer, so results are
// deterministic regardless of worker scheduling.
type Integrator struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool

	tick tickState
}

// NewIntegrator creates an integrator sized to GOMAXPROCS. Workers start
// lazily on the first large dispatch.
func NewIntegrator() *Integrator {
	return &Integrator{numWorkers: runtime.GOMAXPROCS(0)}
}

// Step integrates one tick: reads store.Current(), writes store.Next().
// The caller swaps the store afterwards; Step itself never swaps.
func (it *Integrator) Step(store *Store, params Params, ptr Pointer, w, h, dt float32) {
	n := store.Count()
	if n == 0 {
		return
	}

	it.tick = tickState{
		cur:     store.Current(),
		nxt:     store.Next(),
		params:  params,
		pointer: ptr,
		w:       w,
		h:       h,
		dt:      dt,
	}

	if n < parallelThreshold {
		integrateChunk(&it.tick, 0, n)
		return
	}
	it.dispatch(n)
}

// dispatch fans chunks out to the worker pool and waits for completion.
func (it *Integrator) dispatch(n int) {
	if !it.running {
		it.start()
	}

	chunkSize := (n + it.numWorkers - 1) / it.numWorkers
	dispatched := 0
	for w := 0; w < it.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		it.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-it.doneChan
	}
}

// start launches persistent worker goroutines.
func (it *Integrator) start() {
	it.workChan = make(chan workChunk, it.numWorkers)
	it.doneChan = make(chan struct{}, it.numWorkers)
	it.stopChan = make(chan struct{})
	it.running = true

	for i := 0; i < it.numWorkers; i++ {
		it.wg.Add(1)
		go it.worker()
	}
}

// worker processes chunks until stopped.
func (it *Integrator) worker() {
	defer it.wg.Done()
	for {
		select {
		case <-it.stopChan:
			return
		case chunk, ok := <-it.workChan:
			if !ok {
				return
			}
			integrateChunk(&it.tick, chunk.start, chunk.end)
			it.doneChan <- struct{}{}
		}
	}
}

// Stop signals all workers to exit and waits for them. Safe to call twice
// and safe to call on an integrator that never started.
func (it *Integrator) Stop() {
	if !it.running {
		return
	}
	close(it.stopChan)
	it.wg.Wait()
	close(it.workChan)
	close(it.doneChan)
	it.running = false
}

// integrateChunk advances particles [i0, i1) by one tick. Pure per-particle
// math against the shared read-only tick state; each chunk writes a disjoint
// slice of the next buffer.
func integrateChunk(t *tickState, i0, i1 int) {
	cur, nxt := t.cur, t.nxt
	p := t.params

	// Friction is defined per 60Hz tick; rescale by actual dt so damping is
	// frame-rate independent.
	damp := powf(p.Friction, t.dt*60)

	for i := i0; i < i1; i++ {
		x := cur.X[i]
		y := cur.Y[i]
		vx := cur.VX[i]
		vy := cur.VY[i]

		// Pointer force: magnitude gravity/max(r, minDist) along the pointer
		// direction. The clamp keeps acceleration finite at close range.
		if t.pointer.Active && p.Gravity != 0 {
			dx := t.pointer.X - x
			dy := t.pointer.Y - y
			r := sqrtf(dx*dx + dy*dy)
			if r > 0 {
				rc := r
				if rc < p.MinDistance {
					rc = p.MinDistance
				}
				a := p.Gravity / rc
				if !p.Attract {
					a = -a
				}
				vx += a * dx / r * t.dt
				vy += a * dy / r * t.dt
			}
		}

		vx *= damp
		vy *= damp

		x += vx * t.dt
		y += vy * t.dt

		// Toroidal wrap keeps every particle inside [0,w) x [0,h)
		x = mod(x, t.w)
		y = mod(y, t.h)

		nxt.X[i] = x
		nxt.Y[i] = y
		nxt.VX[i] = vx
		nxt.VY[i] = vy
		nxt.Seed[i] = cur.Seed[i]
	}
}

// Speed returns the instantaneous speed of particle i in buf. This is the
// color-relevant scalar consumed by the render stage; pure in the state.
func Speed(buf *Buffer, i int) float32 {
	return sqrtf(buf.VX[i]*buf.VX[i] + buf.VY[i]*buf.VY[i])
}

// mod returns positive modulo for any magnitude of a (math.Mod keeps the
// sign of the dividend).
func mod(a, b float32) float32 {
	m := float32(math.Mod(float64(a), float64(b)))
	if m < 0 {
		m += b
	}
	return m
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func powf(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
