package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBox(t *testing.T) {
	s0 := "ok"
	s1 := "test"
	box := NewBox[*string]()
	box.Put(&s0)
	go func() {
		time.Sleep(1000)
		box.Put(&s1)
	}()
	v := box.Wait(&s0)
	assert.Same(t, &s1, v)
	assert.Same(t, &s1, box.Get())
}

func TestBoxListen(t *testing.T) {
	box := NewBox[int]()
	ch := box.Listen(0)
	box.Put(3)
	select {
	case v := <-ch:
		assert.Equal(t, 3, v)
	case <-time.After(time.Second):
		t.Fatal("no value")
	}
}
