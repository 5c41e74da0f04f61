package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOpponent(t *testing.T) {
	g := Game{PlayerA: "alice"}

	_, ok := g.Opponent("alice")
	assert.False(t, ok, "no opponent before the second seat is taken")

	g.PlayerB = "bob"
	opp, ok := g.Opponent("alice")
	require.True(t, ok)
	assert.Equal(t, Identity("bob"), opp)

	opp, ok = g.Opponent("bob")
	require.True(t, ok)
	assert.Equal(t, Identity("alice"), opp)

	_, ok = g.Opponent("mallory")
	assert.False(t, ok)
	_, ok = g.Opponent("")
	assert.False(t, ok)
}

func TestSeatAccessors(t *testing.T) {
	g := Game{PlayerA: "alice", PlayerB: "bob"}

	*g.Hits("bob") += 2
	*g.Committed("alice") = true
	assert.Equal(t, uint32(2), g.HitsB)
	assert.True(t, g.CommittedA)

	assert.Nil(t, g.Hits("mallory"))
	assert.Nil(t, g.Committed("mallory"))
	assert.True(t, g.IsPlayer("alice"))
	assert.False(t, g.IsPlayer(""))
}

func TestResultFromClaim(t *testing.T) {
	r, ok := ResultFromClaim(0)
	assert.True(t, ok)
	assert.Equal(t, Miss, r)

	r, ok = ResultFromClaim(1)
	assert.True(t, ok)
	assert.Equal(t, Hit, r)

	_, ok = ResultFromClaim(2)
	assert.False(t, ok)
}

func TestShotTally(t *testing.T) {
	var tally ShotTally
	assert.False(t, tally.HasFired(3, 4))

	assert.Equal(t, uint32(0), tally.MarkFired(3, 4))
	assert.Equal(t, uint32(1), tally.MarkFired(9, 9))
	assert.Equal(t, uint32(2), tally.Count)

	assert.True(t, tally.HasFired(3, 4))
	assert.True(t, tally.HasFired(9, 9))
	assert.False(t, tally.HasFired(4, 3))
	assert.False(t, tally.HasFired(0, 0))
}

func TestStatusText(t *testing.T) {
	b, err := Active.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "active", string(b))
	assert.Equal(t, "unknown", Status(42).String())
	assert.Equal(t, "pending", Pending.String())
}

func TestShotTallyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cells := rapid.SliceOfNDistinct(rapid.IntRange(0, 99), 0, 100, rapid.ID[int]).Draw(t, "cells")

		var tally ShotTally
		fired := make(map[int]bool)
		for i, c := range cells {
			idx := tally.MarkFired(uint32(c/10), uint32(c%10))
			if idx != uint32(i) {
				t.Fatalf("shot %d got index %d", i, idx)
			}
			fired[c] = true
		}
		for c := 0; c < 100; c++ {
			if tally.HasFired(uint32(c/10), uint32(c%10)) != fired[c] {
				t.Fatalf("cell %d: fired=%v", c, fired[c])
			}
		}
	})
}
