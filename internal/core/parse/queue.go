package parse

import (
	"context"
	"sync"
	"sync/atomic"

	"recipe-parser/internal/core/cooklang"
	"recipe-parser/internal/infrastructure/config"
	"recipe-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// Request 佇列請求
type Request struct {
	ID        string
	Context   context.Context
	Source    string
	Overrides *Overrides
	Result    chan Result
}

// Result 處理結果
type Result struct {
	ID     string
	Recipe *cooklang.Recipe
	Error  error
}

// Status 佇列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Queue 批次解析佇列，以固定數量的 worker 消化請求
type Queue struct {
	config    *config.Config
	service   *Service
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewQueue 創建批次解析佇列並啟動 worker
func NewQueue(cfg *config.Config, service *Service) *Queue {
	q := &Queue{
		config:  cfg,
		service: service,
		queue:   make(chan *Request, cfg.Queue.MaxSize),
		done:    make(chan struct{}),
	}

	for i := 0; i < cfg.Queue.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	common.LogInfo("解析佇列已啟動",
		zap.Int("workers", cfg.Queue.Workers),
		zap.Int("max_queue_size", cfg.Queue.MaxSize),
	)

	return q
}

// Enqueue 將請求加入佇列
func (q *Queue) Enqueue(ctx context.Context, source string, ov *Overrides) (chan Result, error) {
	// 檢查隊列容量
	if len(q.queue) >= q.config.Queue.MaxSize {
		return nil, common.ErrQueueFull
	}

	req := Request{
		ID:        common.GenerateUUID(),
		Context:   ctx,
		Source:    source,
		Overrides: ov,
		Result:    make(chan Result, 1),
	}

	select {
	case q.queue <- &req:
		common.LogInfo("Request enqueued",
			zap.String("request_id", req.ID),
			zap.Int("queue_length", len(q.queue)),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		return nil, common.ErrServiceUnavailable
	}
}

// worker 循環處理佇列請求直到關閉
func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case req, ok := <-q.queue:
			if !ok {
				return
			}
			q.process(req)
		case <-q.done:
			return
		}
	}
}

func (q *Queue) process(req *Request) {
	// 呼叫端可能已放棄等待
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{ID: req.ID, Error: err}
		return
	}

	recipe, err := q.service.ParseText(req.Context, req.Source, req.Overrides, req.ID)
	atomic.AddInt64(&q.processed, 1)
	req.Result <- Result{ID: req.ID, Recipe: recipe, Error: err}
}

// GetStatus 獲取佇列狀態
func (q *Queue) GetStatus() *Status {
	return &Status{
		QueueLength:    len(q.queue),
		ProcessedCount: int(atomic.LoadInt64(&q.processed)),
		MaxQueueSize:   q.config.Queue.MaxSize,
		Workers:        q.config.Queue.Workers,
	}
}

// Close 關閉佇列並等待 worker 結束
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.wg.Wait()
	})
}
