package msgworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// activeTTL is how long a chat stays listed as active after its last dispatch.
const activeTTL = 2 * time.Second

// CommandJob is one inbound bot command waiting for execution.
// Jobs sharing Source and ChatKey always land on the same worker and run in order.
type CommandJob struct {
	Source  string // telegram, rest, mcp
	ChatKey string
	Command string
	Handler func(ctx context.Context) error
}

func (j CommandJob) key() string {
	return j.Source + "|" + j.ChatKey
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	NumWorkers      int            `json:"num_workers"`
	QueueSize       int            `json:"queue_size"`
	ActiveWorkers   int            `json:"active_workers"`
	TotalDispatched int64          `json:"total_dispatched"`
	TotalProcessed  int64          `json:"total_processed"`
	TotalDropped    int64          `json:"total_dropped"`
	TotalErrors     int64          `json:"total_errors"`
	Uptime          string         `json:"uptime"`
	WorkerStats     []WorkerStats  `json:"worker_stats"`
	ActiveChats     map[string]int `json:"active_chats"` // source|chat -> worker_id
}

type WorkerStats struct {
	WorkerID      int    `json:"worker_id"`
	QueueDepth    int    `json:"queue_depth"`
	IsProcessing  bool   `json:"is_processing"`
	CurrentJob    string `json:"current_job,omitempty"`
	JobsProcessed int64  `json:"jobs_processed"`
}

type activeChatEntry struct {
	workerID  int
	updatedAt time.Time
}

// CommandWorkerPool runs bot commands on a fixed set of workers sharded by chat.
// A slow command (a watering cycle) only delays later commands of the same chat.
type CommandWorkerPool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32
	stopCh     chan struct{}

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
	activeChatsMu   sync.Mutex
	activeChats     map[string]activeChatEntry
	startTime       time.Time

	OnJobStart func(workerID int, job CommandJob)
	OnJobEnd   func(workerID int, job CommandJob, err error, elapsed time.Duration)
}

type worker struct {
	id            int
	jobQueue      chan CommandJob
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	current       atomic.Value // string
	jobsProcessed int64
	pool          *CommandWorkerPool
}

func NewCommandWorkerPool(numWorkers, queueSize int) *CommandWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &CommandWorkerPool{
		numWorkers:  numWorkers,
		queueSize:   queueSize,
		workers:     make([]*worker, numWorkers),
		activeChats: make(map[string]activeChatEntry),
		stopCh:      make(chan struct{}),
		startTime:   time.Now(),
	}
}

// Start launches the workers and the janitor that expires idle chat entries.
func (p *CommandWorkerPool) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.activeChatsMu.Lock()
				p.pruneActiveLocked(time.Now())
				p.activeChatsMu.Unlock()
			}
		}
	}()

	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan CommandJob, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[CMD_WORKER_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues the job without blocking and reports whether it was accepted.
func (p *CommandWorkerPool) TryDispatch(job CommandJob) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardFor(job.key())
	atomic.AddInt64(&p.totalDispatched, 1)

	p.activeChatsMu.Lock()
	p.activeChats[job.key()] = activeChatEntry{workerID: shard, updatedAt: time.Now()}
	p.activeChatsMu.Unlock()

	sent := func() (ok bool) {
		// Stop may close the queue between the stopped check and the send.
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()
	if sent {
		return true
	}

	p.activeChatsMu.Lock()
	delete(p.activeChats, job.key())
	p.activeChatsMu.Unlock()

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[CMD_WORKER_POOL] Worker %d queue full (or stopped), dropping %q for %s",
		shard, job.Command, job.key())
	return false
}

// Dispatch is TryDispatch without the result.
func (p *CommandWorkerPool) Dispatch(job CommandJob) {
	_ = p.TryDispatch(job)
}

// Stop cancels the workers, lets them drain what is queued and waits for them.
func (p *CommandWorkerPool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		close(p.stopCh)
		logrus.Info("[CMD_WORKER_POOL] Stopping workers...")

		for _, w := range p.workers {
			if w == nil {
				continue
			}
			w.cancel()
			close(w.jobQueue)
		}
		p.wg.Wait()

		logrus.Info("[CMD_WORKER_POOL] All workers stopped")
	})
}

func (p *CommandWorkerPool) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *CommandWorkerPool) pruneActiveLocked(now time.Time) {
	for k, v := range p.activeChats {
		if now.Sub(v.updatedAt) > activeTTL {
			delete(p.activeChats, k)
		}
	}
}

func (p *CommandWorkerPool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	activeWorkers := 0

	for _, w := range p.workers {
		if w == nil {
			continue
		}
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}
		current, _ := w.current.Load().(string)
		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			CurrentJob:    current,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		})
	}

	p.activeChatsMu.Lock()
	p.pruneActiveLocked(time.Now())
	active := make(map[string]int, len(p.activeChats))
	for k, v := range p.activeChats {
		active[k] = v.workerID
	}
	p.activeChatsMu.Unlock()

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		Uptime:          time.Since(p.startTime).Round(time.Second).String(),
		WorkerStats:     workerStats,
		ActiveChats:     active,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	logrus.Debugf("[CMD_WORKER_POOL] Worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[CMD_WORKER_POOL] Worker %d shutting down", w.id)
				return
			}
			w.execute(job)
		case <-w.ctx.Done():
			logrus.Debugf("[CMD_WORKER_POOL] Worker %d context cancelled, draining queue...", w.id)
			w.drainQueue()
			return
		}
	}
}

// drainQueue runs what is already queued and returns as soon as the queue is empty.
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.execute(job)
		default:
			return
		}
	}
}

func (w *worker) execute(job CommandJob) {
	pool := w.pool
	if pool.OnJobStart != nil {
		pool.OnJobStart(w.id, job)
	}
	atomic.StoreInt32(&w.isProcessing, 1)
	w.current.Store(job.Command)
	start := time.Now()

	var err error
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&pool.totalErrors, 1)
			logrus.Errorf("[CMD_WORKER_POOL] Worker %d panic running %q for %s: %v", w.id, job.Command, job.key(), r)
		}
		if pool.OnJobEnd != nil {
			pool.OnJobEnd(w.id, job, err, time.Since(start))
		}
		w.current.Store("")
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&pool.totalProcessed, 1)
	}()

	err = job.Handler(w.ctx)
	if err != nil {
		atomic.AddInt64(&pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[CMD_WORKER_POOL] Worker %d job %q failed for %s", w.id, job.Command, job.key())
	}
}
