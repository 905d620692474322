package retune

import "container/heap"

// plannedMessage is one entry in a Queue: raw bytes due to be sent at or
// after DueAt. seq breaks ties between messages scheduled for the same
// tick, preserving enqueue order.
type plannedMessage struct {
	dueAt int64
	seq   int
	data  []byte
}

type messageHeap []*plannedMessage

func (h messageHeap) Len() int { return len(h) }
func (h messageHeap) Less(i, j int) bool {
	if h[i].dueAt != h[j].dueAt {
		return h[i].dueAt < h[j].dueAt
	}
	return h[i].seq < h[j].seq
}
func (h messageHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *messageHeap) Push(x any)   { *h = append(*h, x.(*plannedMessage)) }
func (h *messageHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is a due-time-ordered message queue, for staggering outgoing MTS
// and channel-voice messages rather than bursting them all at once.
type Queue struct {
	h   messageHeap
	seq int
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Enqueue schedules data to be sent at or after dueAt.
func (q *Queue) Enqueue(dueAt int64, data []byte) {
	heap.Push(&q.h, &plannedMessage{dueAt: dueAt, seq: q.seq, data: data})
	q.seq++
}

// FlushDue pops and returns, in due-time order, every message whose
// dueAt is <= now.
func (q *Queue) FlushDue(now int64) [][]byte {
	var due [][]byte
	for q.h.Len() > 0 && q.h[0].dueAt <= now {
		item := heap.Pop(&q.h).(*plannedMessage)
		due = append(due, item.data)
	}
	return due
}

// Len reports how many messages remain queued.
func (q *Queue) Len() int { return q.h.Len() }
