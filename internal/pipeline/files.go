package pipeline

import (
	"os"
	"path/filepath"

	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/manifest"
)

// OutputFiles lists the files of the run described by m that exist in dir,
// in the order Run writes them. The manifest itself comes last.
func OutputFiles(dir string, m *manifest.Manifest) []string {
	var files []string
	exists := func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.Mode().IsRegular()
	}

	for _, e := range m.Datasets {
		for _, name := range []string{e.Name + constants.CSVExt, e.Name + constants.ArrowExt} {
			if exists(name) {
				files = append(files, name)
			}
		}
	}
	if exists(constants.WorkbookFile) {
		files = append(files, constants.WorkbookFile)
	}
	return append(files, constants.ManifestFile)
}
