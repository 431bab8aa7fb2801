package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/game"
)

func TestRun_Idle(t *testing.T) {
	res := Run(Options{Ticks: 30, Delta: 1, Game: game.DefaultConfig()})

	assert.Equal(t, 30, res.Ticks)
	assert.Equal(t, uint64(30), res.Snapshot.Tick)
	assert.False(t, res.Frozen)
	assert.Nil(t, res.Events, "События не собираются без флага")
}

func TestRun_StopsWhenGameOver(t *testing.T) {
	res := Run(Options{Ticks: 10, Delta: 1, Suspicion: 100, WithEvents: true, Game: game.DefaultConfig()})

	assert.True(t, res.Frozen, "Максимальная подозрительность сразу заканчивает игру")
	assert.Zero(t, res.Ticks)
	assert.True(t, res.Snapshot.World.GameOver)
	require.NotEmpty(t, res.Events)
}

func TestRun_Deterministic(t *testing.T) {
	opts := Options{Ticks: 120, Delta: 1, Input: entity.Input{Right: true, Up: true}, Game: game.DefaultConfig()}

	var a, b bytes.Buffer
	require.NoError(t, writeJSON(&a, Run(opts)))
	require.NoError(t, writeJSON(&b, Run(opts)))
	assert.Equal(t, a.String(), b.String(), "Одинаковый ввод даёт одинаковый результат")

	var decoded Result
	require.NoError(t, json.Unmarshal(a.Bytes(), &decoded))
	assert.Equal(t, uint64(120), decoded.Snapshot.Tick)
}
