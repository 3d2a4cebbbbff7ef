package programs

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05", "20060102"}

// DecodePrograms decodes loosely typed catalog items, e.g. parsed JSON documents.
func DecodePrograms(items []map[string]any) (*Programs, error) {
	var programs []*Program
	if err := decode(items, &programs); err != nil {
		return nil, fmt.Errorf("decode programs: %w", err)
	}
	for idx, program := range programs {
		if strings.TrimSpace(program.ID) == "" {
			return nil, fmt.Errorf("decode programs: item %d has no id", idx)
		}
	}
	return &Programs{Items: programs}, nil
}

// DecodeProfile decodes a loosely typed company profile.
func DecodeProfile(item map[string]any) (*CompanyProfile, error) {
	var profile CompanyProfile
	if err := decode(item, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

func decode(input, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToDateHook, mapstructure.StringToSliceHookFunc(",")),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf(&time.Time{})
)

func stringToDateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	switch to {
	case timePtrType:
		if raw == "" {
			return nil, nil
		}
		return data, nil
	case timeType:
		if raw == "" {
			return time.Time{}, nil
		}
		return ParseDate(raw)
	default:
		return data, nil
	}
}

// ParseDate accepts the date formats used by program sources.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", raw)
}
