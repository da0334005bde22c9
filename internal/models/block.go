package models

import "time"

// BlockType classifies a block as the theory or practice section of a course offering.
type BlockType string

const (
	BlockTypeTheory   BlockType = "THEORY"
	BlockTypePractice BlockType = "PRACTICE"
)

// BlockRole tags a teacher assignment with its scope of authority.
type BlockRole string

const (
	BlockRoleResponsible  BlockRole = "RESPONSIBLE"
	BlockRoleCollaborator BlockRole = "COLLABORATOR"
)

// RoleTeacher is the only role allowed to manage attendance and grades.
const RoleTeacher = "TEACHER"

// Block is a theory or practice section of a course offering.
type Block struct {
	ID               string    `db:"id" json:"id"`
	CourseOfferingID *string   `db:"course_offering_id" json:"course_offering_id,omitempty"`
	Name             string    `db:"name" json:"name"`
	BlockType        BlockType `db:"block_type" json:"block_type"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// BlockAssignment joins a teacher to a block within a course offering.
type BlockAssignment struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	BlockID          string    `db:"block_id" json:"block_id"`
	CourseOfferingID string    `db:"course_offering_id" json:"course_offering_id"`
	BlockRole        BlockRole `db:"block_role" json:"block_role"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// AccessType is the resolved access level of a user against a block.
type AccessType string

const (
	AccessOwner       AccessType = "OWNER"
	AccessResponsible AccessType = "RESPONSIBLE"
	AccessNone        AccessType = "NO_ACCESS"
)

// BlockAccess is the outcome of a permission resolution.
type BlockAccess struct {
	HasPermission bool       `json:"has_permission"`
	AccessType    AccessType `json:"access_type"`
	Message       string     `json:"message"`
}

// Actor is the pre-authenticated identity forwarded by the gateway.
type Actor struct {
	UserID string
	Role   string
}
