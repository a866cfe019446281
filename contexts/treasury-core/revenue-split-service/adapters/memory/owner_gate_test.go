package memory

import (
	"context"
	"testing"
)

func TestOwnerGateAuthorizesOnlyCurrentOwner(t *testing.T) {
	gate := NewOwnerGate(" owner-1 ")

	ok, err := gate.IsAuthorized(context.Background(), "owner-1")
	if err != nil || !ok {
		t.Fatalf("expected owner authorized, got ok=%v err=%v", ok, err)
	}
	ok, err = gate.IsAuthorized(context.Background(), "intruder")
	if err != nil || ok {
		t.Fatalf("expected intruder rejected, got ok=%v err=%v", ok, err)
	}
	ok, err = gate.IsAuthorized(context.Background(), "")
	if err != nil || ok {
		t.Fatalf("expected blank caller rejected, got ok=%v err=%v", ok, err)
	}
}

func TestOwnerGateTransfersOwnership(t *testing.T) {
	gate := NewOwnerGate("owner-1")
	gate.TransferOwnership("owner-2")

	ok, err := gate.IsAuthorized(context.Background(), "owner-1")
	if err != nil || ok {
		t.Fatalf("expected old owner rejected, got ok=%v err=%v", ok, err)
	}
	ok, err = gate.IsAuthorized(context.Background(), "owner-2")
	if err != nil || !ok {
		t.Fatalf("expected new owner authorized, got ok=%v err=%v", ok, err)
	}
}
