package core

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestAutoStartEnabled_Absent(t *testing.T) {
	if !AutoStartEnabled(map[string]string{}) {
		t.Fatal("absent setting must enable auto-start")
	}
	if !AutoStartEnabled(nil) {
		t.Fatal("nil settings must enable auto-start")
	}
}

func TestAutoStartEnabled_Values(t *testing.T) {
	cases := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"True":  true,
		"false": false,
		"":      false,
		"yes":   false,
		"1":     false,
	}
	for v, want := range cases {
		got := AutoStartEnabled(map[string]string{SettingAutoStart: v})
		if got != want {
			t.Errorf("value %q: expected %v, got %v", v, want, got)
		}
	}
}

func TestParseWorkspaceStatus(t *testing.T) {
	st, ok := ParseWorkspaceStatus("running")
	if !ok || st != StatusRunning {
		t.Fatalf("expected RUNNING, got %q ok=%v", st, ok)
	}
	if _, ok := ParseWorkspaceStatus("PAUSED"); ok {
		t.Fatal("unknown status must not parse")
	}
}

func TestWorkspaceStatus_IsActive(t *testing.T) {
	if !StatusStarting.IsActive() || !StatusRunning.IsActive() {
		t.Error("STARTING and RUNNING are active")
	}
	if StatusStopping.IsActive() || StatusStopped.IsActive() {
		t.Error("STOPPING and STOPPED are not active")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("start: %w", NewAppError(ErrRemote, "boom"))
	if got := AsAppError(wrapped); got.Code != ErrRemote {
		t.Errorf("expected WRT_REMOTE, got %s", got.Code)
	}
	if got := AsAppError(errors.New("plain")); got.Code != ErrInternal {
		t.Errorf("expected WRT_INTERNAL, got %s", got.Code)
	}
}

func TestErrorCodeMappings(t *testing.T) {
	if ErrRemote.HTTPStatus() != 502 {
		t.Errorf("expected 502, got %d", ErrRemote.HTTPStatus())
	}
	if ErrInfrastructure.GRPCCode() != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %s", ErrInfrastructure.GRPCCode())
	}
	if ErrorCode("unknown").HTTPStatus() != 500 {
		t.Error("unknown codes map to 500")
	}
}

func TestNewID_Unique(t *testing.T) {
	if NewID() == NewID() {
		t.Fatal("ids must differ")
	}
}
