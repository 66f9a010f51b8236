package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// mapToStruct converts a map[string]any to a struct using mapstructure.
// It uses yaml tags for field mapping and converts "30s"-style strings into
// time.Duration values.
func mapToStruct(m map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode map to struct: %w", err)
	}
	return nil
}
