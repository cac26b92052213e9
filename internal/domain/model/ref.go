package model

import "fmt"

// DeploymentRef identifies a Deployment by namespace and name.
type DeploymentRef struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// NewDeploymentRef creates a DeploymentRef.
func NewDeploymentRef(namespace, name string) DeploymentRef {
	return DeploymentRef{Namespace: namespace, Name: name}
}

// Validate reports whether the ref is usable for a cluster call.
func (r DeploymentRef) Validate() error {
	if r.Namespace == "" {
		return fmt.Errorf("deployment ref: namespace must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("deployment ref: name must not be empty")
	}
	return nil
}

// String renders the ref as namespace/name.
func (r DeploymentRef) String() string {
	return r.Namespace + "/" + r.Name
}
