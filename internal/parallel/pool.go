package parallel

import (
	"runtime"
	"sync"
)

// Pool runs functions on a bounded number of goroutines. The zero value is
// not usable; create pools with New.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// New returns a pool that runs at most workers functions at a time,
// GOMAXPROCS when workers < 1.
func New(workers int) *Pool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{slots: make(chan struct{}, workers)}
}

// Go runs f on its own goroutine once a slot is free, blocking the caller
// while every slot is taken.
func (p *Pool) Go(f func()) {
	p.slots <- struct{}{}
	p.wg.Go(func() {
		defer func() { <-p.slots }()
		f()
	})
}

// Wait blocks until every function passed to Go has returned.
// The pool can be reused afterwards.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size is the maximum number of functions running at a time.
func (p *Pool) Size() int {
	return cap(p.slots)
}
