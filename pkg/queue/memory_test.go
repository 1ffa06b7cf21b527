package queue

import (
	"context"
	"testing"
)

func TestMemoryQueuePushReceive(t *testing.T) {
	q := NewMemoryQueue()
	job := Job{Kind: LocalCacheUpdate, Username: "Alice", Touch: true}

	if err := q.Push(context.Background(), job); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	got := <-q.Receive()
	if got != job {
		t.Errorf("received %+v, want %+v", got, job)
	}

	jobs := q.Jobs()
	if len(jobs) != 1 || jobs[0] != job {
		t.Errorf("Jobs() = %+v, want [%+v]", jobs, job)
	}
}

func TestMemoryQueueClosedPushIsNoop(t *testing.T) {
	q := NewMemoryQueue()
	q.Close()

	if err := q.Push(context.Background(), Job{Username: "Alice"}); err != nil {
		t.Fatalf("Push() after Close() error = %v", err)
	}
	if len(q.Jobs()) != 0 {
		t.Error("Push() after Close() recorded a job")
	}
}

func TestMemoryGroupSeparatesWikis(t *testing.T) {
	g := NewMemoryGroup()
	ctx := context.Background()

	_ = g.Queue("enwiki").Push(ctx, Job{Kind: LocalCacheUpdate, Username: "Alice"})
	_ = g.Queue("dewiki").Push(ctx, Job{Kind: LocalCacheUpdate, Username: "Bob"})

	if got := len(g.MemoryQueue("enwiki").Jobs()); got != 1 {
		t.Errorf("enwiki queue has %d jobs, want 1", got)
	}
	if got := len(g.MemoryQueue("dewiki").Jobs()); got != 1 {
		t.Errorf("dewiki queue has %d jobs, want 1", got)
	}
	if got := g.MemoryQueue("dewiki").Jobs()[0].Username; got != "Bob" {
		t.Errorf("dewiki job username = %q, want %q", got, "Bob")
	}

	if same := g.Queue("enwiki") == g.Queue("enwiki"); !same {
		t.Error("Queue() returned different instances for the same wiki")
	}
}

func TestJobKindString(t *testing.T) {
	if JobSubmit.String() == LocalCacheUpdate.String() {
		t.Error("job kinds stringify identically")
	}
}
