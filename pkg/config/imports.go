package config

import (
	"path/filepath"

	"dario.cat/mergo"
	"github.com/spf13/viper"

	"github.com/cockroachdb/errors"

	errUtils "github.com/strata-config/strata/errors"
	log "github.com/strata-config/strata/pkg/logger"
)

// maxImportDepth caps nested config imports so a mis-edited import loop
// cannot recurse forever.
const maxImportDepth = 10

// settingsWithImports merges the `import:` chain underneath the loaded
// config file's own settings. Imports are applied in list order, each
// overriding the previous one, and the importing file always wins over
// everything it imports.
func settingsWithImports(raw *viper.Viper) (map[string]any, error) {
	imports := raw.GetStringSlice("import")
	if len(imports) == 0 {
		return raw.AllSettings(), nil
	}

	baseDir := filepath.Dir(raw.ConfigFileUsed())

	merged := map[string]any{}
	if err := mergeImports(merged, imports, baseDir, 0); err != nil {
		return nil, err
	}

	// The importing file overrides its imports.
	if err := mergo.Merge(&merged, raw.AllSettings(), mergo.WithOverride); err != nil {
		return nil, errors.Wrapf(errUtils.ErrLoadConfig, "%v", err)
	}
	return merged, nil
}

func mergeImports(dst map[string]any, imports []string, baseDir string, depth int) error {
	if depth > maxImportDepth {
		return errors.Wrapf(errUtils.ErrLoadConfig, "maximum config import depth of %d exceeded", maxImportDepth)
	}

	for _, imp := range imports {
		if imp == "" {
			continue
		}
		path := imp
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, imp)
		}

		log.Debug("importing config file", "path", path)

		iv := viper.New()
		iv.SetConfigFile(path)
		iv.SetConfigType(configType)
		if err := iv.ReadInConfig(); err != nil {
			return errors.Wrapf(errUtils.ErrLoadConfig, "import %q: %v", imp, err)
		}

		// Depth-first: a file's own imports sit underneath it.
		if nested := iv.GetStringSlice("import"); len(nested) > 0 {
			if err := mergeImports(dst, nested, filepath.Dir(path), depth+1); err != nil {
				return err
			}
		}

		if err := mergo.Merge(&dst, iv.AllSettings(), mergo.WithOverride); err != nil {
			return errors.Wrapf(errUtils.ErrLoadConfig, "%v", err)
		}
	}
	return nil
}
