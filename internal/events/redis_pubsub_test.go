package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisMirror(t *testing.T) {
	mirror := NewRedisMirror(nil)
	assert.NotNil(t, mirror)
	assert.Nil(t, mirror.client)
}

func TestChannelPrefix(t *testing.T) {
	assert.Equal(t, "pueue:events:", channelPrefix)
}

func TestRedisMirror_RunStopsOnClosedChannel(t *testing.T) {
	mirror := NewRedisMirror(nil)
	ch := make(chan Event)
	close(ch)

	done := make(chan struct{})
	go func() {
		mirror.Run(context.Background(), ch)
		close(done)
	}()

	<-done
}
