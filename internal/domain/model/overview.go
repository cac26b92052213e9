package model

import "time"

// DeploymentOverview is one row of a deployment listing. Age is computed
// against fetch time so rendering stays deterministic.
type DeploymentOverview struct {
	Ref               DeploymentRef `json:"ref"`
	DesiredReplicas   int32         `json:"desired_replicas"`
	ReadyReplicas     int32         `json:"ready_replicas"`
	UpdatedReplicas   int32         `json:"updated_replicas"`
	AvailableReplicas int32         `json:"available_replicas"`
	Age               time.Duration `json:"age"`
}

// ServiceView summarizes the Service fronting a deployment, when one with
// the same name exists in the namespace.
type ServiceView struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	ClusterIP      string   `json:"cluster_ip"`
	Ports          []string `json:"ports,omitempty"`
	ReadyEndpoints int      `json:"ready_endpoints"`
}

// DeploymentDetails is the extended view behind the info command.
type DeploymentDetails struct {
	Overview DeploymentOverview `json:"overview"`
	Strategy string             `json:"strategy"`
	Selector string             `json:"selector"`
	Images   []string           `json:"images,omitempty"`
	Service  *ServiceView       `json:"service,omitempty"`
}

// PodLogs holds one container's tailed log text. FetchErr is set when the
// fetch for this container failed; other containers are unaffected.
type PodLogs struct {
	Pod       string `json:"pod"`
	Container string `json:"container"`
	Logs      string `json:"logs,omitempty"`
	FetchErr  string `json:"fetch_err,omitempty"`
}
