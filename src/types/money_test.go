package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyTimes(t *testing.T) {
	assert.Equal(t, Money(15000), Money(5000).Times(3))
	assert.Equal(t, Money(0), Money(5000).Times(0))
}

func TestMoneyPercent(t *testing.T) {
	assert.Equal(t, Money(10000), Money(10000).Percent(100))
	assert.Equal(t, Money(5000), Money(10000).Percent(50))
	assert.Equal(t, Money(2500), Money(10000).Percent(25))
	assert.Equal(t, Money(0), Money(10000).Percent(0))
}

func TestMoneyPercentRoundsHalfUp(t *testing.T) {
	// 25% of 101 is 25.25, rounds down; 50% of 101 is 50.5, rounds up.
	assert.Equal(t, Money(25), Money(101).Percent(25))
	assert.Equal(t, Money(51), Money(101).Percent(50))
	assert.Equal(t, Money(1), Money(2).Percent(50))
	assert.Equal(t, Money(1), Money(1).Percent(50))
}
