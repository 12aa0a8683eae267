// Package cli implements the segpub subcommands. Store backends are
// selected by name and configured through repeatable --store-param k=v
// flags, which map directly onto the uploader factory parameter maps.
package cli

import (
	"fmt"
	"strings"

	"segpub/internal/blob"
	"segpub/internal/blob/azure"
	"segpub/internal/blob/gcs"
	"segpub/internal/blob/s3"
)

// uploaderFactories maps --store names to backend factories.
func uploaderFactories() map[string]blob.UploaderFactory {
	return map[string]blob.UploaderFactory{
		"azure": azure.NewFactory(),
		"s3":    s3.NewFactory(),
		"gcs":   gcs.NewFactory(),
	}
}

func storeNames() []string {
	return []string{"azure", "gcs", "s3"}
}

// parseStoreParams turns repeated "key=value" flags into a factory
// parameter map.
func parseStoreParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad --store-param %q, want key=value", pair)
		}
		params[k] = v
	}
	return params, nil
}
