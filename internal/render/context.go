package render

import (
	"github.com/hupe1980/kustomize-upstream/internal/config"
	"github.com/hupe1980/kustomize-upstream/internal/k8s"
)

// Template names used in error messages.
const (
	NameSource            = "top.sourceTemplate"
	NameResourceFilename  = "defaultPackageSpec.resourceSpec.filenameTemplate"
	NameResourcePath      = "defaultPackageSpec.resourceSpec.pathTemplate"
	NamePackageFilename   = "defaultPackageSpec.filenameTemplate"
	NamePackagePath       = "defaultPackageSpec.pathTemplate"
	NamePackageDescriptor = "defaultPackageSpec.template"
)

// TopValues exposes the top section to templates as .top. Source is nil
// until it has been rendered.
func TopValues(top config.Top) map[string]interface{} {
	return map[string]interface{}{
		"name":           top.Name,
		"version":        top.Version,
		"sourceTemplate": top.SourceTemplate,
		"source":         optional(top.Source),
	}
}

// ResourceValues exposes a resource to templates. Optional fields that are
// not set are nil.
func ResourceValues(r *k8s.Resource) map[string]interface{} {
	return map[string]interface{}{
		"index":     r.Index,
		"name":      r.Name,
		"kind":      r.Kind,
		"namespace": optional(r.Namespace),
		"filename":  optional(r.Filename),
		"path":      optional(r.Path),
	}
}

// SourceContext is the context of the source URL template.
func SourceContext(top config.Top) map[string]interface{} {
	return map[string]interface{}{
		"top": TopValues(top),
	}
}

// ResourceContext is the context of the resource filename and path
// templates.
func ResourceContext(top config.Top, packageName string, r *k8s.Resource) map[string]interface{} {
	return map[string]interface{}{
		"top":         TopValues(top),
		"packageName": packageName,
		"resource":    ResourceValues(r),
	}
}

// PackageLocationContext is the context of the descriptor filename and path
// templates.
func PackageLocationContext(top config.Top, packageName string) map[string]interface{} {
	return map[string]interface{}{
		"top":         TopValues(top),
		"packageName": packageName,
	}
}

// DescriptorContext is the context of the descriptor body template.
func DescriptorContext(top config.Top, packageName string, resources []*k8s.Resource) map[string]interface{} {
	items := make([]interface{}, 0, len(resources))
	for _, r := range resources {
		items = append(items, ResourceValues(r))
	}

	return map[string]interface{}{
		"top": TopValues(top),
		"package": map[string]interface{}{
			"name":      packageName,
			"resources": items,
		},
	}
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}

	return *s
}
