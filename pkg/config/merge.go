package config

import "dario.cat/mergo"

// DeepMerge combines two raw settings trees, with update taking precedence.
//
// A key is merged recursively only when both sides hold nested mappings;
// every other value type (scalars and lists included) is replaced wholesale
// by the update value. Keys present only in base are retained; keys present
// only in update are added. The merge is used to layer a secrets tree over
// a config tree: secrets win at every depth, but a secrets tree that omits
// a nested key leaves the config value intact.
//
// Neither argument is mutated; the result shares unreplaced substructures
// with base.
func DeepMerge(base, update map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(update))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range update {
		baseMap, baseOk := merged[k].(map[string]any)
		updateMap, updateOk := v.(map[string]any)
		if baseOk && updateOk {
			merged[k] = DeepMerge(baseMap, updateMap)
			continue
		}
		merged[k] = v
	}
	return merged
}

// Merge overlays non-zero fields of other onto s. It is used to apply
// per-call server overrides on top of a configured server definition.
func (s *MCPServerSettings) Merge(other *MCPServerSettings) error {
	if other == nil {
		return nil
	}
	return mergo.Merge(s, other, mergo.WithOverride)
}
