package main

import (
	"testing"

	"github.com/airenas/refundo/internal/pkg/audio"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func Test_toItems(t *testing.T) {
	assert.Equal(t, []*audio.Item{}, toItems(nil))
	assert.Equal(t, []*audio.Item{{ID: 1, URL: "http://s/1.mp3"}, {ID: 3, URL: "http://s/3.mp3"}},
		toItems([]*persistence.AudioRef{{ID: 1, AudioURL: "http://s/1.mp3"}, {ID: 3, AudioURL: "http://s/3.mp3"}}))
}
