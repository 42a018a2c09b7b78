package records

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// DefaultProjectName is used when a request names no project at all.
const DefaultProjectName = "默认项目"

var (
	ErrProjectNameEmpty = errors.New("project name is empty")
	ErrInvalidResult    = errors.New("invalid result")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidAction    = errors.New("invalid action_type")
	ErrInvalidTarget    = errors.New("invalid target_type")
	ErrEmptyDescription = errors.New("description is empty")
)

// Service owns record writes: project ensure, acceptance/issue upsert,
// verify, close, and the rectification audit trail.
type Service struct {
	repo      ports.InspectionRepository
	uow       ports.UnitOfWork
	publisher ports.EventPublisher
}

func NewService(repo ports.InspectionRepository, uow ports.UnitOfWork, publisher ports.EventPublisher) *Service {
	return &Service{repo: repo, uow: uow, publisher: publisher}
}

// EnsureProject returns the project with the given name, creating it on
// first reference.
func (s *Service) EnsureProject(ctx context.Context, name string) (ports.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ports.Project{}, ErrProjectNameEmpty
	}

	project, err := s.repo.GetProjectByName(ctx, name)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, ports.ErrProjectNotFound) {
		return ports.Project{}, errs.Wrap(err, "lookup project")
	}

	project, err = s.repo.CreateProject(ctx, name, nil)
	if err != nil {
		return ports.Project{}, errs.Wrap(err, "create project")
	}
	return project, nil
}

// UpsertProject is EnsureProject plus an address update when one is given.
func (s *Service) UpsertProject(ctx context.Context, name string, address *string) (ports.Project, error) {
	project, err := s.EnsureProject(ctx, name)
	if err != nil {
		return ports.Project{}, err
	}

	if address != nil && strings.TrimSpace(*address) != "" {
		addr := strings.TrimSpace(*address)
		if err := s.repo.UpdateProjectAddress(ctx, project.ProjectID, addr); err != nil {
			return ports.Project{}, errs.Wrap(err, "update project address")
		}
		project.Address = &addr
	}
	return project, nil
}

func (s *Service) ListProjects(ctx context.Context, limit int) ([]ports.Project, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	return s.repo.ListProjects(ctx, limit)
}

// ResolveProjectID picks the target project: explicit id wins, then name
// (ensured), then the default project.
func (s *Service) ResolveProjectID(ctx context.Context, projectID uint64, projectName string) (uint64, error) {
	if projectID > 0 {
		return projectID, nil
	}

	name := strings.TrimSpace(projectName)
	if name == "" {
		name = DefaultProjectName
	}

	project, err := s.EnsureProject(ctx, name)
	if err != nil {
		return 0, err
	}
	return project.ProjectID, nil
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "records")),
			"event publish failed",
			slog.String("subject", subject),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
