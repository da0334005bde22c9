package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

type blockReader interface {
	FindByID(ctx context.Context, id string) (*models.Block, error)
}

type assignmentReader interface {
	ListByBlock(ctx context.Context, blockID string) ([]models.BlockAssignment, error)
	ListByOffering(ctx context.Context, courseOfferingID string) ([]models.BlockAssignment, error)
}

// AccessService resolves a user's access level against the block /
// course-offering hierarchy. Every feature area authorizes through it.
type AccessService struct {
	blocks      blockReader
	assignments assignmentReader
	logger      *zap.Logger
}

// NewAccessService constructs the resolver.
func NewAccessService(blocks blockReader, assignments assignmentReader, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{blocks: blocks, assignments: assignments, logger: logger}
}

// ResolveBlockAccess applies the permission cascade for one block: any
// assignment on the block itself grants OWNER; a RESPONSIBLE assignment on
// the parent course offering grants RESPONSIBLE for every block under it.
func (s *AccessService) ResolveBlockAccess(ctx context.Context, userID, role, blockID string) (*models.BlockAccess, error) {
	if role != models.RoleTeacher {
		return &models.BlockAccess{
			HasPermission: false,
			AccessType:    models.AccessNone,
			Message:       "solo los docentes pueden acceder a este recurso",
		}, nil
	}

	block, err := s.blocks.FindByID(ctx, blockID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bloque no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}
	if block.CourseOfferingID == nil || *block.CourseOfferingID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el bloque no está asociado a una oferta de curso")
	}

	blockAssignments, err := s.assignments.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list block assignments")
	}
	for _, assignment := range blockAssignments {
		if assignment.UserID == userID {
			return &models.BlockAccess{
				HasPermission: true,
				AccessType:    models.AccessOwner,
				Message:       "docente asignado al bloque",
			}, nil
		}
	}

	offeringAssignments, err := s.assignments.ListByOffering(ctx, *block.CourseOfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course offering assignments")
	}
	for _, assignment := range offeringAssignments {
		if assignment.UserID == userID && assignment.BlockRole == models.BlockRoleResponsible {
			return &models.BlockAccess{
				HasPermission: true,
				AccessType:    models.AccessResponsible,
				Message:       "docente responsable de la oferta de curso",
			}, nil
		}
	}

	return &models.BlockAccess{
		HasPermission: false,
		AccessType:    models.AccessNone,
		Message:       "no está asignado a este bloque ni es responsable de la oferta de curso",
	}, nil
}

// ResolveOfferingAccess checks access at the course-offering level: any
// assignment grants OWNER for assigned blocks, RESPONSIBLE grants the whole
// offering.
func (s *AccessService) ResolveOfferingAccess(ctx context.Context, userID, role, courseOfferingID string) (*models.BlockAccess, error) {
	if role != models.RoleTeacher {
		return &models.BlockAccess{
			HasPermission: false,
			AccessType:    models.AccessNone,
			Message:       "solo los docentes pueden acceder a este recurso",
		}, nil
	}

	assignments, err := s.assignments.ListByOffering(ctx, courseOfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course offering assignments")
	}
	for _, assignment := range assignments {
		if assignment.UserID != userID {
			continue
		}
		if assignment.BlockRole == models.BlockRoleResponsible {
			return &models.BlockAccess{
				HasPermission: true,
				AccessType:    models.AccessResponsible,
				Message:       "docente responsable de la oferta de curso",
			}, nil
		}
		return &models.BlockAccess{
			HasPermission: true,
			AccessType:    models.AccessOwner,
			Message:       "docente asignado en la oferta de curso",
		}, nil
	}

	return &models.BlockAccess{
		HasPermission: false,
		AccessType:    models.AccessNone,
		Message:       "no tiene asignaciones en esta oferta de curso",
	}, nil
}

// RequireBlockAccess resolves and converts a denial into a Forbidden error.
func (s *AccessService) RequireBlockAccess(ctx context.Context, userID, role, blockID string) (*models.BlockAccess, error) {
	access, err := s.ResolveBlockAccess(ctx, userID, role, blockID)
	if err != nil {
		return nil, err
	}
	if !access.HasPermission {
		s.logger.Warn("block access denied",
			zap.String("user_id", userID),
			zap.String("block_id", blockID),
			zap.String("reason", access.Message))
		return nil, appErrors.Clone(appErrors.ErrForbidden, access.Message)
	}
	return access, nil
}

// RequireOfferingAccess resolves at the offering level and converts a denial
// into a Forbidden error.
func (s *AccessService) RequireOfferingAccess(ctx context.Context, userID, role, courseOfferingID string) (*models.BlockAccess, error) {
	access, err := s.ResolveOfferingAccess(ctx, userID, role, courseOfferingID)
	if err != nil {
		return nil, err
	}
	if !access.HasPermission {
		s.logger.Warn("course offering access denied",
			zap.String("user_id", userID),
			zap.String("course_offering_id", courseOfferingID),
			zap.String("reason", access.Message))
		return nil, appErrors.Clone(appErrors.ErrForbidden, access.Message)
	}
	return access, nil
}
