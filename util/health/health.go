// Package health aggregates the health checks of a service and its dependencies.
package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// Check is a named dependency check, e.g. a store's Health method.
type Check struct {
	Name  string
	Check func(ctx context.Context, checkLiveness bool) (int, string, error)
}

type dependency struct {
	Resource     string          `json:"resource"`
	Status       int             `json:"status"`
	Error        string          `json:"error,omitempty"`
	Message      string          `json:"message,omitempty"`
	Dependencies json.RawMessage `json:"dependencies,omitempty"`
}

type report struct {
	Status       int          `json:"status"`
	Dependencies []dependency `json:"dependencies"`
}

// CheckAll runs every check and reports 503 as soon as one of them fails. Details of a
// check that are themselves a JSON report are nested instead of quoted.
func CheckAll(ctx context.Context, checkLiveness bool, checks []Check) (int, string, error) {
	r := report{
		Status:       http.StatusOK,
		Dependencies: make([]dependency, 0, len(checks)),
	}

	for _, check := range checks {
		status, message, err := check.Check(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			r.Status = http.StatusServiceUnavailable
		}

		d := dependency{Resource: check.Name, Status: status}

		if err != nil {
			d.Error = err.Error()
		}

		if json.Valid([]byte(message)) && len(message) > 0 && message[0] == '{' {
			d.Dependencies = json.RawMessage(message)
		} else {
			d.Message = message
		}

		r.Dependencies = append(r.Dependencies, d)
	}

	b, err := json.Marshal(&r)
	if err != nil {
		return http.StatusInternalServerError, "", err
	}

	return r.Status, string(b), nil
}
