package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientset creates a Kubernetes clientset from in-cluster config or a
// kubeconfig file. requestTimeout bounds every API call made through the
// returned clientset.
func NewClientset(inCluster bool, kubeconfigPath string, requestTimeout time.Duration) (k8s.Interface, error) {
	var config *rest.Config
	var err error

	if inCluster {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", resolveKubeconfig(kubeconfigPath))
	}
	if err != nil {
		return nil, fmt.Errorf("building k8s config: %w", err)
	}
	config.Timeout = requestTimeout

	return k8s.NewForConfig(config)
}

// resolveKubeconfig picks the explicit path first, then $KUBECONFIG, then the
// standard home location.
func resolveKubeconfig(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".kube", "config")
	}
	return ""
}
