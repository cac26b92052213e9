package kubernetes

import (
	"fmt"

	"github.com/jonny/kubetriage/pkg/clustererror"
)

// Guard refuses cluster writes against protected namespaces.
type Guard struct {
	protected map[string]bool
}

// NewGuard creates a Guard from the list of protected namespaces.
func NewGuard(protected []string) *Guard {
	set := make(map[string]bool, len(protected))
	for _, ns := range protected {
		set[ns] = true
	}
	return &Guard{protected: set}
}

// Check returns an Invalid error when ns is protected.
func (g *Guard) Check(ns string) error {
	if g.protected[ns] {
		return clustererror.Invalid(fmt.Sprintf("namespace %s is protected", ns))
	}
	return nil
}
