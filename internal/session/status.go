// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"time"
)

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a point-in-time summary of a session.
type Status struct {
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	Duration  string    `json:"duration"`
	State     string    `json:"state"`
	Turns     int       `json:"turns"`
	Messages  int       `json:"messages"`
	Closed    bool      `json:"closed"`
}

// GetStatus returns the current session status.
func (s *Session) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		SessionID: s.id,
		StartTime: s.startTime,
		Duration:  FormatDuration(time.Since(s.startTime)),
		State:     s.state.String(),
		Turns:     s.turns,
		Messages:  s.transcript.Len(),
		Closed:    s.closed,
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	if d >= time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
