package msgworker

import (
	"context"
	"sync"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	"github.com/sirupsen/logrus"
)

var (
	globalPool     *CommandWorkerPool
	globalPoolOnce sync.Once
	globalCancel   context.CancelFunc
)

// GetGlobalPool returns the process-wide command pool, starting it on first use.
func GetGlobalPool() *CommandWorkerPool {
	globalPoolOnce.Do(func() {
		var ctx context.Context
		ctx, globalCancel = context.WithCancel(context.Background())

		size, queue := 4, 100
		if coreconfig.Global != nil {
			if coreconfig.Global.WorkerPool.Size > 0 {
				size = coreconfig.Global.WorkerPool.Size
			}
			if coreconfig.Global.WorkerPool.QueueSize > 0 {
				queue = coreconfig.Global.WorkerPool.QueueSize
			}
		}

		globalPool = NewCommandWorkerPool(size, queue)
		globalPool.Start(ctx)
		logrus.Infof("[CMD_WORKER_POOL] Global instance started with %d workers and queue size %d", size, queue)
	})
	return globalPool
}

// StopGlobalPool stops the singleton pool if it was ever started.
func StopGlobalPool() {
	if globalPool != nil {
		globalPool.Stop()
	}
	if globalCancel != nil {
		globalCancel()
	}
}

func GetGlobalStats() PoolStats {
	return GetGlobalPool().GetStats()
}
