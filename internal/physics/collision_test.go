package physics

import (
	"testing"

	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestGetCollisionPoints_Corners(t *testing.T) {
	collider := NewBoxCollider(12, 8)
	points := GetCollisionPoints(vec.Vec2Float{X: 100, Y: 50}, collider)

	assert.Len(t, points, 4, "Коллайдер проверяется по четырём углам")
	assert.Contains(t, points, vec.Vec2Float{X: 88, Y: 42})
	assert.Contains(t, points, vec.Vec2Float{X: 112, Y: 42})
	assert.Contains(t, points, vec.Vec2Float{X: 88, Y: 58})
	assert.Contains(t, points, vec.Vec2Float{X: 112, Y: 58})
}

func TestCanMoveToPosition(t *testing.T) {
	collider := NewBoxCollider(10, 10)
	// Стеной считается всё, что правее x=100
	checker := func(p vec.Vec2Float) bool { return p.X < 100 }

	assert.True(t, CanMoveToPosition(vec.Vec2Float{X: 50, Y: 50}, collider, checker))
	assert.False(t, CanMoveToPosition(vec.Vec2Float{X: 95, Y: 50}, collider, checker), "Правые углы заходят в стену")
}
