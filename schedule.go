package girder

import (
	"github.com/edwinsyarief/teishoku"
	"golang.org/x/sync/errgroup"
)

// System is one unit of per-frame work over the world.
type System func(*teishoku.World)

type phase struct {
	systems []System
	serial  bool
}

// Schedule is a fixed sequence of phases executed once per frame. Phases run
// in order; within a Phase the systems run concurrently, since they are
// expected to touch disjoint component sets. Work that mutates shared state
// outside the world, like the staging belt pool, goes in a Serial phase.
//
// Systems in a Phase must have registered their component types before the
// first Run: constructing a filter over a new type mutates world-level
// bookkeeping that is not synchronized. System constructors in this module
// build their filters eagerly, so composing the schedule on one goroutine,
// against the world it will run on, satisfies this.
type Schedule struct {
	phases []phase
}

// Phase appends a phase whose systems run concurrently.
func (s *Schedule) Phase(systems ...System) *Schedule {
	s.phases = append(s.phases, phase{systems: systems})
	return s
}

// Serial appends a phase whose systems run one after another on the calling
// goroutine.
func (s *Schedule) Serial(systems ...System) *Schedule {
	s.phases = append(s.phases, phase{systems: systems, serial: true})
	return s
}

// Run executes one frame. It returns once every phase has completed.
func (s *Schedule) Run(w *teishoku.World) {
	for _, p := range s.phases {
		if p.serial || len(p.systems) == 1 {
			for _, sys := range p.systems {
				sys(w)
			}
			continue
		}
		var g errgroup.Group
		for _, sys := range p.systems {
			g.Go(func() error {
				sys(w)
				return nil
			})
		}
		g.Wait()
	}
}
