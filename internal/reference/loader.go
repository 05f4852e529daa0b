package reference

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadOptionCatalog читает все справочники опций из папки reference/options/
func LoadOptionCatalog(dir string) (map[string]OptionDirectory, error) {
	result := make(map[string]OptionDirectory)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if !strings.HasSuffix(file.Name(), ".yaml") && !strings.HasSuffix(file.Name(), ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		var optDir OptionDirectory
		if err := yaml.Unmarshal(data, &optDir); err != nil {
			return nil, err
		}
		// Имя справочника — из optDir.Name или из имени файла
		name := optDir.Name
		if name == "" {
			name = strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
			optDir.Name = name
		}
		result[name] = optDir
	}
	return result, nil
}
