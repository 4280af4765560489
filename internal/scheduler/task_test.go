package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"open", "claimed", "delivered", "done"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}

	_, err := ParseStatus("cancelled")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStatusClosed(t *testing.T) {
	assert.False(t, StatusOpen.Closed())
	assert.False(t, StatusClaimed.Closed())
	assert.True(t, StatusDelivered.Closed())
	assert.True(t, StatusDone.Closed())
}

func TestMarkDelivered(t *testing.T) {
	task := open("abc123", "t", 0)
	require.NoError(t, task.MarkDelivered())
	assert.Equal(t, StatusDelivered, task.Status)

	err := task.MarkDelivered()
	var delivered *AlreadyDeliveredError
	require.ErrorAs(t, err, &delivered)
	assert.Equal(t, "abc123", delivered.ID)

	done := withStatus(open("def456", "t", 0), StatusDone)
	var alreadyDone *AlreadyDoneError
	require.ErrorAs(t, done.MarkDelivered(), &alreadyDone)
}

func TestMarkDone(t *testing.T) {
	tests := []struct {
		name string
		from Status
		ok   bool
	}{
		{"from open", StatusOpen, true},
		{"from claimed", StatusClaimed, true},
		{"from delivered", StatusDelivered, true},
		{"from done", StatusDone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := withStatus(open("abc123", "t", 0), tt.from)
			err := task.MarkDone()
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, StatusDone, task.Status)
			} else {
				var alreadyDone *AlreadyDoneError
				require.ErrorAs(t, err, &alreadyDone)
			}
		})
	}
}

func TestAppendNote(t *testing.T) {
	task := &Task{ID: "abc123"}
	task.AppendNote("first")
	assert.Equal(t, "first", task.Description)
	task.AppendNote("second")
	assert.Equal(t, "first\nsecond", task.Description)
}

func TestNewIDFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Regexp(t, `^[0-9a-z]{6}$`, id)
		seen[id] = true
	}
	// 100 draws from a 36^6 space should essentially never collide.
	assert.Greater(t, len(seen), 90)
}
