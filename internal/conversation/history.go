// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// HISTORY QUERIES
// =============================================================================

// SortOrder selects the ordering of a history query.
type SortOrder int

const (
	// OldestFirst is insertion order.
	OldestFirst SortOrder = iota
	NewestFirst
)

// Query filters a history view. The zero value matches everything in
// insertion order.
type Query struct {
	// Search matches message text or agent name, ignoring case.
	Search string

	// Persona keeps only agent and system messages from this persona type.
	Persona string

	Order SortOrder
}

// Filter applies q to msgs and returns a new slice. msgs is not modified.
func Filter(msgs []*model.Message, q Query) []*model.Message {
	// Casers are stateful; one per call.
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(q.Search))

	out := make([]*model.Message, 0, len(msgs))
	for _, msg := range msgs {
		if q.Persona != "" && msg.AgentPersona != q.Persona {
			continue
		}
		if needle != "" &&
			!strings.Contains(folder.String(msg.Text), needle) &&
			!strings.Contains(folder.String(msg.AgentName), needle) {
			continue
		}
		out = append(out, msg)
	}

	// IDs follow insertion order; timestamps never reorder history.
	if q.Order == NewestFirst {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out
}

// DayGroup is the messages of one calendar day.
type DayGroup struct {
	Day      time.Time
	Messages []*model.Message
}

// Label renders the day as "Today", "Yesterday" or a date.
func (g DayGroup) Label(now time.Time) string {
	today := startOfDay(now)
	switch {
	case g.Day.Equal(today):
		return "Today"
	case g.Day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return g.Day.Format("Mon, Jan 2 2006")
	}
}

// GroupByDay splits msgs into calendar days in loc, keeping the input order
// within and across groups.
func GroupByDay(msgs []*model.Message, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []DayGroup
	index := make(map[time.Time]int)
	for _, msg := range msgs {
		day := startOfDay(msg.CreatedAt.In(loc))
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}
	return groups
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Search runs q against the current history.
func (m *Manager) Search(q Query) []*model.Message {
	return Filter(m.Snapshot().Messages, q)
}
