package infra

import (
	"fmt"

	"github.com/casbin/casbin/v2"
)

// NewEnforcer loads the domain-aware RBAC model. Policies are filled per
// company at enforce time, so no adapter is attached.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	e, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load rbac model %q: %w", modelPath, err)
	}
	e.EnableAutoSave(false)
	return e, nil
}
