package anticheat

import (
	"math"
	"testing"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
)

func ptr(f float64) *float64 { return &f }

func TestParsePlayerID(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "1234", want: "1234"},
		{raw: " 1234 ", want: "1234"},
		{raw: "\t0007\n", want: "0007"},
		{raw: "12a4", wantErr: true},
		{raw: "123", wantErr: true},
		{raw: " 12 34", wantErr: true},
		{raw: "12345", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "١٢٣٤", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePlayerID(tt.raw)
		if tt.wantErr {
			if _, ok := err.(responses.InvalidArgumentError); !ok {
				t.Errorf("ParsePlayerID(%q) error = %v, want InvalidArgumentError", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePlayerID(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePlayerID(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseSessionID(t *testing.T) {
	long := make([]byte, maxSessionIDLength+1)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := ParseSessionID("session-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseSessionID(string(long[:maxSessionIDLength])); err != nil {
		t.Fatalf("100 characters should be accepted: %v", err)
	}
	for _, raw := range []string{"", string(long)} {
		if _, err := ParseSessionID(raw); err == nil {
			t.Errorf("ParseSessionID(len %d) should fail", len(raw))
		}
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		payload *models.ActionPayload
		want    Action
	}{
		{"start", &models.ActionPayload{Type: "game_start", Timestamp: ptr(1000)}, GameStart{Timestamp: 1000}},
		{"pipe", &models.ActionPayload{Type: "pipe_passed", Timestamp: ptr(1500.9)}, PipePassed{Timestamp: 1500}},
		{"gift", &models.ActionPayload{Type: "gift_collected", Timestamp: ptr(2000)}, GiftCollected{Timestamp: 2000}},
		{"over", &models.ActionPayload{Type: "game_over", Timestamp: ptr(9000), PlayTimeSeconds: ptr(8)}, GameOver{Timestamp: 9000, PlayTimeSeconds: 8}},
		{"over at zero seconds", &models.ActionPayload{Type: "game_over", Timestamp: ptr(9000), PlayTimeSeconds: ptr(0)}, GameOver{Timestamp: 9000}},
		{"over at a full day", &models.ActionPayload{Type: "game_over", Timestamp: ptr(9000), PlayTimeSeconds: ptr(86400)}, GameOver{Timestamp: 9000, PlayTimeSeconds: 86400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.payload)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseActionRejectsMalformed(t *testing.T) {
	tests := map[string]*models.ActionPayload{
		"nil":                nil,
		"unknown type":       {Type: "jump", Timestamp: ptr(1000)},
		"missing timestamp":  {Type: "pipe_passed"},
		"zero timestamp":     {Type: "pipe_passed", Timestamp: ptr(0)},
		"sub-ms timestamp":   {Type: "pipe_passed", Timestamp: ptr(0.5)},
		"negative":           {Type: "pipe_passed", Timestamp: ptr(-5)},
		"nan":                {Type: "pipe_passed", Timestamp: ptr(math.NaN())},
		"inf":                {Type: "pipe_passed", Timestamp: ptr(math.Inf(1))},
		"over no playtime":   {Type: "game_over", Timestamp: ptr(1000)},
		"over neg playtime":  {Type: "game_over", Timestamp: ptr(1000), PlayTimeSeconds: ptr(-1)},
		"over nan playtime":  {Type: "game_over", Timestamp: ptr(1000), PlayTimeSeconds: ptr(math.NaN())},
		"over huge playtime": {Type: "game_over", Timestamp: ptr(1000), PlayTimeSeconds: ptr(1e306)},
		"over past a day":    {Type: "game_over", Timestamp: ptr(1000), PlayTimeSeconds: ptr(86400.5)},
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAction(payload)
			apiErr, ok := err.(responses.InvalidArgumentError)
			if !ok {
				t.Fatalf("error = %v, want InvalidArgumentError", err)
			}
			if apiErr.Msg != "Invalid action format" {
				t.Fatalf("message = %q", apiErr.Msg)
			}
		})
	}
}
