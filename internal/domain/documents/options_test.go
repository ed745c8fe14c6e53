package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOptions_DefaultClockIsLocal(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, time.Local, o.Now().Location())
}

func TestWithClock_IgnoresNil(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	o := NewOptions(WithClock(func() time.Time { return fixed }), WithClock(nil))
	assert.Equal(t, fixed, o.Now())
}
