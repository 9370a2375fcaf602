// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Tutor"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("%s.DisplayName() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("user and assistant roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("system role should not be valid in a transcript")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "2+3")

	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.Text != "2+3" {
		t.Errorf("Text = %q, want '2+3'", msg.Text)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if !msg.IsUser() || msg.IsAssistant() {
		t.Error("expected a user message")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewMessage(RoleAssistant, "blue light scatters more")
	if got := msg.Preview(10); got != "blue li..." {
		t.Errorf("Preview(10) = %q", got)
	}

	multi := NewMessage(RoleAssistant, "Step 1:\n  25*4\nStep 2: 100")
	if got := multi.Preview(40); got != "Step 1: 25*4 Step 2: 100" {
		t.Errorf("Preview(40) = %q", got)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendKeepsOrder(t *testing.T) {
	tr := NewTranscript()
	if !tr.IsEmpty() {
		t.Fatal("new transcript should be empty")
	}

	for i := 0; i < 3; i++ {
		if _, err := tr.Append(RoleUser, fmt.Sprintf("q%d", i)); err != nil {
			t.Fatalf("Append user: %v", err)
		}
		if _, err := tr.Append(RoleAssistant, fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("Append assistant: %v", err)
		}
	}

	all := tr.All()
	if len(all) != 6 {
		t.Fatalf("len(All()) = %d, want 6", len(all))
	}
	for i, msg := range all {
		wantRole := RoleUser
		prefix := "q"
		if i%2 == 1 {
			wantRole = RoleAssistant
			prefix = "a"
		}
		if msg.Role != wantRole {
			t.Errorf("message %d role = %s, want %s", i, msg.Role, wantRole)
		}
		if want := fmt.Sprintf("%s%d", prefix, i/2); msg.Text != want {
			t.Errorf("message %d text = %q, want %q", i, msg.Text, want)
		}
	}
}

func TestTranscript_AppendRejectsInvalidRole(t *testing.T) {
	tr := NewTranscript()
	_, err := tr.Append(Role("system"), "nope")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
	if tr.Len() != 0 {
		t.Error("rejected message should not be stored")
	}
}

func TestTranscript_AllReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "original")

	all := tr.All()
	all[0].Text = "mutated"

	if got := tr.All()[0].Text; got != "original" {
		t.Errorf("transcript was mutated through All(): %q", got)
	}
}

func TestTranscript_LastAndLastAssistant(t *testing.T) {
	tr := NewTranscript()
	if _, ok := tr.Last(); ok {
		t.Error("Last on empty transcript should report false")
	}

	tr.Append(RoleUser, "q")
	if _, ok := tr.LastAssistant(); ok {
		t.Error("LastAssistant should report false without replies")
	}

	tr.Append(RoleAssistant, "a")
	tr.Append(RoleUser, "q2")

	last, ok := tr.Last()
	if !ok || last.Text != "q2" {
		t.Errorf("Last() = %q, %v", last.Text, ok)
	}
	reply, ok := tr.LastAssistant()
	if !ok || reply.Text != "a" {
		t.Errorf("LastAssistant() = %q, %v", reply.Text, ok)
	}
}

func TestTranscript_ConcurrentReadWrite(t *testing.T) {
	tr := NewTranscript()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Append(RoleUser, "x")
		}()
		go func() {
			defer wg.Done()
			_ = tr.All()
		}()
	}
	wg.Wait()

	if tr.Len() != 10 {
		t.Errorf("Len() = %d, want 10", tr.Len())
	}
}
