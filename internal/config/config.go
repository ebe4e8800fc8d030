// Package config loads sensor profiles: built-in defaults overlaid with an
// optional YAML file, then with TACTILE_* environment variables.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/mitchellh/mapstructure"
	yml "gopkg.in/yaml.v3"

	"tactile-image-processing/internal/core"
)

// Defaults are the values used for keys a profile leaves out
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"source":   core.DefaultSource,
		"exposure": core.DefaultExposure,
		"gray":     false,
	}
}

// EnvPrefix marks the environment variables that override profile keys, e.g.
// TACTILE_SOURCE or TACTILE_BBOX=95,40,535,480
const EnvPrefix = "TACTILE_"

// Load reads a sensor profile. An empty path yields the defaults. The named
// bbox preset of the profile type fills in a missing bbox.
func Load(path string) (core.Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return core.Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return core.Config{}, fmt.Errorf("load profile %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return core.Config{}, fmt.Errorf("load environment: %w", err)
	}

	return unmarshal(k)
}

func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
}

func unmarshal(k *koanf.Koanf) (core.Config, error) {
	var cfg core.Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				tupleHook,
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return core.Config{}, fmt.Errorf("decode profile: %w", err)
	}

	cfg.ApplyPreset()
	if err := cfg.Validate(); err != nil {
		return core.Config{}, fmt.Errorf("invalid profile: %w", err)
	}

	return cfg, nil
}

var (
	bboxType   = reflect.TypeOf(core.BBox{})
	threshType = reflect.TypeOf(core.Thresh{})
	dimsType   = reflect.TypeOf(core.Dims{})
)

// tupleHook accepts the tuple spellings of profiles: bbox as
// [x_min, y_min, x_max, y_max], thresh as [block_size, c], dims as
// [width, height]. Environment values use the comma separated form.
func tupleHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	var items []interface{}
	switch from.Kind() {
	case reflect.Slice:
		list, ok := data.([]interface{})
		if !ok {
			return data, nil
		}
		items = list
	case reflect.String:
		if to != bboxType && to != threshType && to != dimsType {
			return data, nil
		}
		for _, part := range strings.Split(data.(string), ",") {
			items = append(items, strings.TrimSpace(part))
		}
	default:
		return data, nil
	}

	var keys []string
	switch to {
	case bboxType:
		keys = []string{"x_min", "y_min", "x_max", "y_max"}
	case threshType:
		keys = []string{"block_size", "c"}
	case dimsType:
		keys = []string{"width", "height"}
	default:
		return data, nil
	}

	if len(items) != len(keys) {
		return nil, fmt.Errorf("%s needs %d values, got %d", to.Name(), len(keys), len(items))
	}
	out := make(map[string]interface{}, len(keys))
	for i, key := range keys {
		out[key] = items[i]
	}
	return out, nil
}

// Marshal renders cfg as a YAML profile that Load accepts
func Marshal(cfg core.Config) ([]byte, error) {
	return yml.Marshal(cfg)
}
