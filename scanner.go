package ember

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// EntitySource yields candidate entities for classification. How candidates
// are found is the source's business; the orchestrator only consumes the
// resulting set. The built-in source is an explicit list, since Go resolves
// types at compile time rather than by scanning class files.
type EntitySource interface {
	Entities() ([]interface{}, error)
}

// EntitySet is an EntitySource over an explicit list of prototypes
type EntitySet []interface{}

// Entities returns the set unchanged
func (s EntitySet) Entities() ([]interface{}, error) {
	return s, nil
}

// scanSourceFiles walks every configured source directory and collects the
// files matching the extension filter, sorted for deterministic gate output.
func scanSourceFiles(dirs []string, extension string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, extension) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, &DiscoveryError{Dir: dir, Err: err}
		}
	}
	sort.Strings(files)
	return files, nil
}
