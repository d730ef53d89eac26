package votes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSendVoting tests veto semantics of the voting phase
func TestSendVoting(t *testing.T) {
	tests := []struct {
		name   string
		votes  []bool
		want   bool
		called int
	}{
		{
			name:   "no voters passes",
			votes:  nil,
			want:   true,
			called: 0,
		},
		{
			name:   "all approve",
			votes:  []bool{true, true, true},
			want:   true,
			called: 3,
		},
		{
			name:   "first veto short-circuits",
			votes:  []bool{true, false, true},
			want:   false,
			called: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New[string]()
			called := 0
			for _, v := range tt.votes {
				vote := v
				n.OnVoting(func(string) bool {
					called++
					return vote
				})
			}

			assert.Equal(t, tt.want, n.SendVoting("event"))
			assert.Equal(t, tt.called, called)
		})
	}
}

// TestSendNotification tests that every observer sees the event
func TestSendNotification(t *testing.T) {
	n := New[int]()

	var seen []int
	n.OnNotification(func(v int) { seen = append(seen, v) })
	n.OnNotification(func(v int) { seen = append(seen, v*10) })

	n.SendNotification(7)

	assert.Equal(t, []int{7, 70}, seen)
}

// TestVotersDoNotObserve tests that the two subscriber kinds are
// independent
func TestVotersDoNotObserve(t *testing.T) {
	n := New[int]()

	voted := false
	observed := false
	n.OnVoting(func(int) bool { voted = true; return true })
	n.OnNotification(func(int) { observed = true })

	n.SendNotification(1)
	assert.False(t, voted)
	assert.True(t, observed)

	voted, observed = false, false
	n.SendVoting(1)
	assert.True(t, voted)
	assert.False(t, observed)
}
