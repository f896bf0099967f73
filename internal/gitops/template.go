package gitops

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// manifestInput is the data available to a manifest URL template.
type manifestInput struct {
	// Cluster is the name of the edge cluster the manifest is applied to
	Cluster string
}

// ExpandManifestURL renders a manifest URL template for one edge cluster.
// The template sees the cluster name as {{ .Cluster }} plus the sprig
// function set; references to unknown fields fail rather than render an
// empty URL segment.
func ExpandManifestURL(urlTemplate, clusterName string) (string, error) {
	t, err := template.New("manifest-url").
		Option("missingkey=error").
		Funcs(sprig.FuncMap()).
		Parse(urlTemplate)
	if err != nil {
		return "", fmt.Errorf("invalid manifest URL template: %w", err)
	}

	var out strings.Builder
	if err := t.Execute(&out, manifestInput{Cluster: clusterName}); err != nil {
		return "", fmt.Errorf("failed to expand manifest URL for cluster %s: %w", clusterName, err)
	}

	return out.String(), nil
}
