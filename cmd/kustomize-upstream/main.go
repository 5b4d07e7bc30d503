// kustomize-upstream splits an upstream multi-document Kubernetes manifest
// into kustomize packages.
package main

import (
	"os"

	"github.com/hupe1980/kustomize-upstream/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
