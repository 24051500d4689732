package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleDistribution(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Role: "assistant"}, {Role: "user"}, {Role: "tool"},
		{Role: "user"}, {Role: "assistant"}, {Role: ""},
		{Role: "user"}, {Role: "tool"},
	}

	got := RoleDistribution(rows)
	assert.Equal(t, []RoleCount{
		{Role: "user", Count: 3, Percent: 37.5},
		{Role: "assistant", Count: 2, Percent: 25},
		{Role: "tool", Count: 2, Percent: 25},
		{Role: "", Count: 1, Percent: 12.5},
	}, got)

	assert.Nil(t, RoleDistribution(nil))
}

func TestStats_Derived(t *testing.T) {
	t.Parallel()

	var s Stats
	s.TotalMessages = 8
	s.EmptyContentRemoved = 1
	s.SystemMessagesRemoved = 2
	s.DuplicatesRemoved = 1
	s.OversizedRemoved = 1
	s.summarize([]Row{{Role: "user", ContentLength: 10}, {Role: "assistant", ContentLength: 20}, {Role: "user", ContentLength: 3}})

	assert.Equal(t, 3, s.FinalRows)
	assert.True(t, s.HasRows())
	assert.Equal(t, 5, s.Removed())
	assert.InDelta(t, 37.5, s.RetentionRate(), 1e-9)
	assert.InDelta(t, 11.0, s.AvgContentLength, 1e-9)
	assert.Equal(t, 20, s.MaxContentLength)
	assert.Equal(t, "user", s.Roles[0].Role)

	var empty Stats
	empty.summarize(nil)
	assert.False(t, empty.HasRows())
	assert.Zero(t, empty.RetentionRate())
	assert.Zero(t, empty.AvgContentLength)
	assert.Empty(t, empty.Roles)
}
