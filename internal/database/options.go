package database

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}

// mergedOptions overlays overrides on defaults and returns the keys in a
// stable order so generated DSNs are deterministic.
func mergedOptions(defaults, overrides map[string]string) (map[string]string, []string) {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return merged, keys
}
