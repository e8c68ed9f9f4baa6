package orchestrate

import "sync"

// workerPool runs analysis jobs across a fixed number of goroutines,
// adapted from a sort-dispatch thread pool to per-file analysis
// dispatch: jobs enqueue onto one shared channel, workers drain it
// until closed, and Wait blocks for every in-flight job to finish.
type workerPool struct {
	wg       sync.WaitGroup
	requests chan func()
}

func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	p := &workerPool{requests: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for job := range p.requests {
		job()
	}
}

// Enqueue blocks until a worker picks up job. Callers must not enqueue
// after Close: sending on the closed request channel panics.
func (p *workerPool) Enqueue(job func()) {
	p.requests <- job
}

func (p *workerPool) Close() {
	close(p.requests)
}

func (p *workerPool) Wait() {
	p.wg.Wait()
}
