// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks that task types are unique, timeouts parse and every
// declared error code is one knownCode accepts.
func (r *ActivityRegistry) Validate(knownCode func(string) bool) []error {
	var errs []error
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %q has no taskType", a.ID))
			continue
		}
		if seen[a.TaskType] {
			errs = append(errs, fmt.Errorf("taskType %q declared twice", a.TaskType))
		}
		seen[a.TaskType] = true

		if _, err := time.ParseDuration(a.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("%s: timeout %q: %w", a.TaskType, a.Timeout, err))
		}
		for _, code := range a.ErrorCodes {
			if !knownCode(code) {
				errs = append(errs, fmt.Errorf("%s: unknown error code %s", a.TaskType, code))
			}
		}
	}
	return errs
}
