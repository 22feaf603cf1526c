// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopassist/internal/model"
)

func historyFixture() []*model.Message {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(26 * time.Hour)
	return []*model.Message{
		{ID: 1, Role: model.RoleUser, Text: "Show me RUNNING shoes", CreatedAt: day1},
		{ID: 2, Role: model.RoleAgent, Text: "Here are our running shoes", AgentName: "Sales Assistant", AgentPersona: "sales", CreatedAt: day1},
		{ID: 3, Role: model.RoleSystem, Text: "Switched to Customer Support", AgentName: "Customer Support", AgentPersona: "support", CreatedAt: day2},
		{ID: 4, Role: model.RoleAgent, Text: "Your ÉCLAIR order ships Monday", AgentName: "Customer Support", AgentPersona: "support", CreatedAt: day2.Add(time.Minute)},
	}
}

func ids(msgs []*model.Message) []uint64 {
	out := make([]uint64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	msgs := historyFixture()

	tests := []struct {
		name string
		q    Query
		want []uint64
	}{
		{"zero query keeps order", Query{}, []uint64{1, 2, 3, 4}},
		{"newest first", Query{Order: NewestFirst}, []uint64{4, 3, 2, 1}},
		{"case-insensitive search", Query{Search: "running"}, []uint64{1, 2}},
		{"unicode folding", Query{Search: "éclair"}, []uint64{4}},
		{"search matches agent name", Query{Search: "customer support"}, []uint64{3, 4}},
		{"persona filter", Query{Persona: "support"}, []uint64{3, 4}},
		{"persona and search", Query{Persona: "sales", Search: "shoes"}, []uint64{2}},
		{"no match", Query{Search: "laptop"}, []uint64{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Filter(msgs, tc.q)))
		})
	}
	assert.Equal(t, uint64(1), msgs[0].ID, "input untouched")
}

func TestFilter_TiesBrokenByID(t *testing.T) {
	at := time.Now()
	msgs := []*model.Message{{ID: 1, CreatedAt: at}, {ID: 2, CreatedAt: at}, {ID: 3, CreatedAt: at}}
	assert.Equal(t, []uint64{3, 2, 1}, ids(Filter(msgs, Query{Order: NewestFirst})))
}

func TestFilter_IgnoresTimestampsForOrder(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	// A skewed clock can stamp a later message earlier.
	msgs := []*model.Message{
		{ID: 1, CreatedAt: at},
		{ID: 2, CreatedAt: at.Add(-time.Hour)},
		{ID: 3, CreatedAt: at.Add(time.Minute)},
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids(Filter(msgs, Query{})))
	assert.Equal(t, []uint64{3, 2, 1}, ids(Filter(msgs, Query{Order: NewestFirst})))
}

func TestGroupByDay(t *testing.T) {
	groups := GroupByDay(historyFixture(), time.UTC)
	require.Len(t, groups, 2)
	assert.Equal(t, []uint64{1, 2}, ids(groups[0].Messages))
	assert.Equal(t, []uint64{3, 4}, ids(groups[1].Messages))

	now := groups[1].Day.Add(5 * time.Hour)
	assert.Equal(t, "Today", groups[1].Label(now))
	assert.Equal(t, "Yesterday", groups[0].Label(now))
	assert.Equal(t, "Mon, Mar 10 2025", groups[0].Label(now.AddDate(0, 1, 0)))
}

func TestManager_Search(t *testing.T) {
	m := newTestManager(t, newScripted(), true)
	_, err := m.SendMessage(context.Background(), "deals on tents?", nil)
	require.NoError(t, err)

	found := m.Search(Query{Search: "TENTS"})
	require.Len(t, found, 1)
	assert.Equal(t, model.RoleUser, found[0].Role)
}
