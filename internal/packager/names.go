package packager

import (
	"fmt"
	"path"
	"strings"

	"fileforge/internal/domain/transform"
)

// EntryNames returns the unique relative path of every Success result, in
// order. Pack stores entries under these names; hosts writing loose files
// use them to avoid overwrites.
func EntryNames(results []transform.JobResult) []string {
	names := newNameResolver()
	var out []string
	for _, r := range results {
		if r.Status == transform.StatusSuccess {
			out = append(out, names.resolve(r.OutputName))
		}
	}
	return out
}

// nameResolver hands out unique archive paths. Collisions get "-2", "-3"
// and so on before the extension. Comparison ignores case so archives
// extract cleanly on case-insensitive filesystems.
type nameResolver struct {
	taken    map[string]bool
	counters map[string]int
}

func newNameResolver() *nameResolver {
	return &nameResolver{
		taken:    make(map[string]bool),
		counters: make(map[string]int),
	}
}

func (r *nameResolver) resolve(name string) string {
	name = sanitize(name)
	key := strings.ToLower(name)
	if !r.taken[key] {
		r.taken[key] = true
		return name
	}

	dir, base := path.Split(name)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := r.counters[key]
	if counter == 0 {
		counter = 2
	}
	for {
		candidate := fmt.Sprintf("%s%s-%d%s", dir, stem, counter, ext)
		counter++
		if !r.taken[strings.ToLower(candidate)] {
			r.counters[key] = counter
			r.taken[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}

// sanitize turns a user-supplied name into a relative slash path with no
// parent references.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	var parts []string
	for _, part := range strings.Split(name, "/") {
		switch part {
		case "", ".", "..":
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "file"
	}
	return strings.Join(parts, "/")
}
