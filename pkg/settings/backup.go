package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// Metadata keys of a backup. They are never stored.
const (
	AppKey     = "app"
	VersionKey = "version"
	BackupKey  = "backup"
)

func reserved(key string) bool {
	switch key {
	case AppKey, VersionKey, BackupKey:
		return true
	}
	return false
}

// Export returns every stored pair plus the app and version metadata. Pairs
// stored under a metadata name by older images are left out.
func (s *Settings) Export() map[string]string {
	out := map[string]string{}
	s.Foreach(func(key, value string) {
		if !reserved(key) {
			out[key] = value
		}
	})
	out[AppKey] = s.app
	out[VersionKey] = s.version
	return out
}

// MarshalJSON renders a backup that Restore accepts. The backup flag makes a
// restore start from an empty region.
func (s *Settings) MarshalJSON() ([]byte, error) {
	out := s.Export()
	out[BackupKey] = "1"
	return json.Marshal(out)
}

// Restore stores every pair of a JSON object produced by MarshalJSON or
// written by hand. The object must carry the configured app name. A truthy
// "backup" member wipes the region first.
func (s *Settings) Restore(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}

	if app, _ := doc[AppKey].(string); app != s.app {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongApp, app, s.app)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if truthy(doc[BackupKey]) {
		if err := s.reset(); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		if !reserved(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := stringify(doc[key])
		if err != nil {
			return fmt.Errorf("failed to convert %q: %w", key, err)
		}
		if err := s.set(key, value); err != nil {
			return err
		}
	}

	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "settings: restored",
		slog.Int("keys", len(keys)))
	return nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return ParseBool(x)
	case float64:
		return x != 0
	default:
		return false
	}
}

func stringify(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
