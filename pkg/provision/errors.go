package provision

import "fmt"

// Stage names a provisioning step.
type Stage string

const (
	StageDBRoles           Stage = "db-roles"
	StageDefaultGraphRoles Stage = "default-graph-roles"
	StageNamedGraphRoles   Stage = "named-graph-roles"
	StageServiceWriteRoles Stage = "service-write-roles"
	StageUserRoles         Stage = "user-roles"
)

// StageError reports the stage and resource a run stopped at.
type StageError struct {
	Stage    Stage
	Resource string
	Err      error
}

func (e *StageError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("provision: stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("provision: stage %s failed on %s: %v", e.Stage, e.Resource, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
