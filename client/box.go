package client

import (
	"sync"
)

// Box holds the latest of something, and lets you wait for a newer one.
type Box[T comparable] struct {
	l *sync.Mutex
	c *sync.Cond
	v T
}

func NewBox[T comparable]() *Box[T] {
	l := &sync.Mutex{}
	c := sync.NewCond(l)
	return &Box[T]{l: l, c: c}
}

func (b *Box[T]) Put(v T) {
	b.l.Lock()
	b.v = v
	b.l.Unlock()
	b.c.Broadcast()
}

func (b *Box[T]) Get() T {
	b.l.Lock()
	defer b.l.Unlock()
	return b.v
}

// Wait blocks until the box holds something other than seen.
func (b *Box[T]) Wait(seen T) T {
	b.l.Lock()
	defer b.l.Unlock()
	for b.v == seen {
		b.c.Wait()
	}
	return b.v
}

func (b *Box[T]) Listen(seen T) <-chan T {
	ch := make(chan T, 1)
	go func() {
		ch <- b.Wait(seen)
		close(ch)
	}()
	return ch
}
