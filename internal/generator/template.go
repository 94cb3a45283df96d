// internal/generator/template.go
package generator

import (
	"sort"
	"strings"
)

// RenderTemplate substitutes {key} placeholders. Keys are applied longest
// first so "{prompt_title}" is not clobbered by "{prompt}".
func RenderTemplate(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	result := template
	for _, k := range keys {
		result = strings.ReplaceAll(result, "{"+k+"}", data[k])
	}
	return result
}
