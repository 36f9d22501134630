package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"rejection", responses.InvalidArgumentError{Msg: "Invalid player ID"}, http.StatusBadRequest, "InvalidArgument", "Invalid player ID"},
		{"volume", responses.ResourceExhaustedError{Msg: "too many"}, http.StatusTooManyRequests, "ResourceExhausted", "too many"},
		{"internal keeps message", responses.InternalError{Msg: "try again", Cause: errors.New("secret dsn")}, http.StatusInternalServerError, "Internal", "try again"},
		{"untyped", errors.New("secret dsn"), http.StatusInternalServerError, "Internal", "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get(StatusCodeHeader); got != tt.code {
				t.Fatalf("%s = %q, want %q", StatusCodeHeader, got, tt.code)
			}
			var body models.Result
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Success || body.Error != tt.msg {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestHandleResultKeepsZeroScore(t *testing.T) {
	zero := 0
	rec := httptest.NewRecorder()
	HandleResult(rec, &models.Result{Success: true, Score: &zero})

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if v, ok := body["score"]; !ok || v.(float64) != 0 {
		t.Fatalf("score missing from %v", body)
	}
	if _, ok := body["previousScore"]; ok {
		t.Fatalf("unset previousScore sent: %v", body)
	}
}
