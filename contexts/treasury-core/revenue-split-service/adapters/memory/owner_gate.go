package memory

import (
	"context"
	"strings"
	"sync"

	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

// OwnerGate is the single-owner authorization capability. The owner identity
// is transferable but exactly one caller is privileged at any time.
type OwnerGate struct {
	mu      sync.RWMutex
	ownerID string
}

func NewOwnerGate(ownerID string) *OwnerGate {
	return &OwnerGate{ownerID: strings.TrimSpace(ownerID)}
}

func (g *OwnerGate) IsAuthorized(_ context.Context, callerID string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	caller := strings.TrimSpace(callerID)
	return caller != "" && caller == g.ownerID, nil
}

func (g *OwnerGate) TransferOwnership(newOwnerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ownerID = strings.TrimSpace(newOwnerID)
}

var _ ports.AuthorizationGate = (*OwnerGate)(nil)
