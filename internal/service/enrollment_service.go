package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/intisuite/aula-api/internal/models"
	appErrors "github.com/intisuite/aula-api/pkg/errors"
)

type blockRosterReader interface {
	ListByBlock(ctx context.Context, blockID string) ([]models.BlockEnrollmentRow, error)
}

// EnrollmentService answers "who is in this block" queries, enriching roster
// rows with directory display data.
type EnrollmentService struct {
	roster    blockRosterReader
	access    blockAccessResolver
	directory userDirectory
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment query service.
func NewEnrollmentService(roster blockRosterReader, access blockAccessResolver, directory userDirectory, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{roster: roster, access: access, directory: directory, logger: logger}
}

// ListBlockStudents returns the roster of a block with student names resolved
// through the user directory in parallel.
func (s *EnrollmentService) ListBlockStudents(ctx context.Context, blockID string, actor models.Actor) ([]models.BlockStudent, error) {
	if _, err := s.access.RequireBlockAccess(ctx, actor.UserID, actor.Role, blockID); err != nil {
		return nil, err
	}

	rows, err := s.roster.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list block enrollments")
	}

	userIDs := make([]string, len(rows))
	for i, row := range rows {
		userIDs[i] = row.UserID
	}
	profiles := fetchProfiles(ctx, s.directory, s.logger, userIDs)

	students := make([]models.BlockStudent, len(rows))
	for i, row := range rows {
		profile := profiles[row.UserID]
		students[i] = models.BlockStudent{
			EnrollmentID:   row.EnrollmentID,
			UserID:         row.UserID,
			Name:           profile.Name,
			ImgURL:         profile.ImgURL,
			EnrollmentDate: row.EnrollmentDate,
			BlockAverage:   row.BlockAverage,
		}
	}
	return students, nil
}
