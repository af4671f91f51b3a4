package access

import "fmt"

// Action is a privilege a permission grants.
type Action string

const (
	ActionRead   Action = "READ"
	ActionWrite  Action = "WRITE"
	ActionDelete Action = "DELETE"
)

// ResourceType is the kind of resource a permission is scoped to.
type ResourceType string

const (
	ResourceDB         ResourceType = "db"
	ResourceNamedGraph ResourceType = "named-graph"
)

// Permission is an (action, resource) grant attached to a role.
type Permission struct {
	Action       Action
	ResourceType ResourceType
	Resource     string
}

func (p Permission) String() string {
	return fmt.Sprintf("[%s, %s:%s]", p.Action, p.ResourceType, p.Resource)
}
