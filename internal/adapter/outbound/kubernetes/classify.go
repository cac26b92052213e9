package kubernetes

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/jonny/kubetriage/pkg/clustererror"
)

// classify maps client-go errors onto the engine's error kinds. Structured
// API rejections keep their meaning; everything else, including transport
// and timeout failures, is reported as unreachable.
func classify(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case apierrors.IsNotFound(err):
		return clustererror.NotFound(resource)
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return clustererror.Forbidden(resource, err)
	default:
		return clustererror.Unreachable(resource, err)
	}
}
