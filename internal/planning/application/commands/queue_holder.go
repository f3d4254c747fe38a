package commands

import "sync/atomic"

// QueueHolder keeps the current Now Queue behind an atomic pointer.
// Readers always see a fully built queue; a refresh swaps the pointer
// only after the replacement is complete.
type QueueHolder struct {
	current atomic.Pointer[NowQueue]
}

// NewQueueHolder creates an empty holder.
func NewQueueHolder() *QueueHolder { return &QueueHolder{} }

// Store replaces the current queue.
func (h *QueueHolder) Store(queue *NowQueue) {
	h.current.Store(queue)
}

// Current returns the live queue, or nil before the first refresh.
func (h *QueueHolder) Current() *NowQueue {
	return h.current.Load()
}
