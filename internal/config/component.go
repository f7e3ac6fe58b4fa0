package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// ComponentTree returns the merged key/value view a component sees: the
// [componentType.componentName] table layered over root-level scalar keys.
// Component-specific settings shadow pipeline-wide defaults.
func (c *Config) ComponentTree(componentType, componentName string) map[string]any {
	merged := make(map[string]any)
	for key, value := range c.raw {
		switch value.(type) {
		case map[string]any:
			// tables belong to other components, not to the defaults layer
		default:
			merged[key] = value
		}
	}

	if group, ok := c.raw[componentType].(map[string]any); ok {
		if table, ok := group[componentName].(map[string]any); ok {
			for key, value := range table {
				merged[key] = value
			}
		}
	}
	return merged
}

// DecodeComponent materializes the merged component view into a typed
// settings struct. Unknown keys are ignored so pipeline-wide scalars do not
// have to match every component's schema.
func (c *Config) DecodeComponent(componentType, componentName string, out any) error {
	tree := c.ComponentTree(componentType, componentName)
	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode %s.%s settings: %w", componentType, componentName, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s.%s settings: %w", componentType, componentName, err)
	}
	return nil
}
