// Transform registry for post-assembly image passes
package algorithms

import (
	"fmt"
	"sort"
	"strings"

	"movie-barcode/internal/core"
)

var transforms = make(map[string]core.Transform)

func Register(name string, transform core.Transform) {
	transforms[name] = transform
}

func GetTransform(name string) (core.Transform, error) {
	transform, exists := transforms[name]
	if !exists {
		return nil, fmt.Errorf("transform not found: %s (available: %s)", name, strings.Join(TransformNames(), ", "))
	}
	return transform, nil
}

func TransformNames() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(PolarName, NewPolarRemap())
}
