package sse

import (
	"testing"
	"time"

	"github.com/mcoot/vibedraft/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "word_picked",
			data:      `{"word":"fire"}`,
			expected:  "event: word_picked\ndata: {\"word\":\"fire\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "test",
			data:      "{\n  \"a\": 1\n}",
			expected:  "event: test\ndata: {\ndata:   \"a\": 1\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "single line", input: "hello", expected: []string{"hello"}},
		{name: "two lines", input: "line1\nline2", expected: []string{"line1", "line2"}},
		{name: "trailing newline", input: "line1\n", expected: []string{"line1"}},
		{name: "empty string", input: "", expected: []string{""}},
		{name: "crlf line endings", input: "line1\r\nline2\r\n", expected: []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("s_test", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("player1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("test-event", "test data")

	select {
	case msg := <-client.send:
		expected := "event: test-event\ndata: test data\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("s_test", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("player1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("client channel still open after unregister")
	}
}

func TestHub_BroadcastToBothPlayers(t *testing.T) {
	hub := NewHub("s_test", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client1 := NewClient("player1")
	client2 := NewClient("player2")
	hub.Register(client1)
	hub.Register(client2)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastEvent("update", "data")

	for i, client := range []*Client{client1, client2} {
		select {
		case msg := <-client.send:
			expected := "event: update\ndata: data\n\n"
			if string(msg) != expected {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), expected)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestHub_RegisterAfterCloseFails(t *testing.T) {
	hub := NewHub("s_test", testutil.NopLogger())
	go hub.Run()
	hub.Close()
	hub.Close()

	if hub.Register(NewClient("player1")) {
		t.Error("Register succeeded on a closed hub")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	hub1 := manager.GetOrCreateHub("s_one")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}
	if hub2 := manager.GetOrCreateHub("s_one"); hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same session")
	}
	if hub3 := manager.GetOrCreateHub("s_two"); hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different session")
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	if hub := manager.GetHub("s_missing"); hub != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("s_one")
	if got := manager.GetHub("s_one"); got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.GetOrCreateHub("s_empty")
	active := manager.GetOrCreateHub("s_active")
	active.Register(NewClient("player1"))
	time.Sleep(10 * time.Millisecond)

	manager.CleanupEmptyHubs()

	if manager.GetHub("s_empty") != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub("s_active") == nil {
		t.Error("Active hub was removed during cleanup")
	}
}
