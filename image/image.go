// Package image implements the per-application image registry.
package image

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/repository"
)

type BuildStartInput struct {
	ApplicationID  uuid.UUID `validate:"required"`
	RepositoryName string    `validate:"required,max=256"`
	BuildSlug      string    `validate:"required,max=1024"`
	Dockerfile     *string
	Procfile       *string
}

type BuildSuccessInput struct {
	ImageID string `validate:"required,max=256"`
	// Processes defaults to the parsed Procfile of the image when nil
	Processes map[string]domain.Process
	Metadata  map[string]any
	BuildLog  *string
}

type Registry interface {
	RecordBuildStart(input BuildStartInput) (*domain.Image, error)
	RecordBuildSuccess(id uuid.UUID, input BuildSuccessInput) (*domain.Image, error)
	RecordBuildFailure(id uuid.UUID, detail string, buildLog *string) (*domain.Image, error)
	Delete(id uuid.UUID) error
	Get(id uuid.UUID) (*domain.Image, error)
	List(applicationID uuid.UUID) ([]*domain.Image, error)
	LatestBuilt(applicationID uuid.UUID) (*domain.Image, error)
	LatestError(applicationID uuid.UUID) (*domain.Image, error)
	LatestBuilding(applicationID uuid.UUID) (*domain.Image, error)
}

type ImageService struct {
	imageRepository       repository.ImageRepository
	applicationRepository repository.ApplicationRepository
}

var _ Registry = (*ImageService)(nil)

// RecordBuildStart registers a new build with the next version number of the application
func (s *ImageService) RecordBuildStart(input BuildStartInput) (*domain.Image, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}
	if input.Procfile != nil {
		if _, err := domain.ParseProcfile(*input.Procfile); err != nil {
			return nil, err
		}
	}

	image := domain.NewImage(input.ApplicationID, input.RepositoryName, input.BuildSlug)
	image.Dockerfile = input.Dockerfile
	image.Procfile = input.Procfile

	if err := s.imageRepository.Create(&image); err != nil {
		return nil, s.fail("record_build_start", err, "application_id", input.ApplicationID)
	}

	slog.Info("Image build started",
		"image_id", image.ID,
		"application_id", image.ApplicationID,
		"version", image.Version)
	return &image, nil
}

// RecordBuildSuccess marks the image built and stores what the builder reported
func (s *ImageService) RecordBuildSuccess(id uuid.UUID, input BuildSuccessInput) (*domain.Image, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	image, err := s.imageRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("record_build_success", err, "image_id", id)
	}

	processes := input.Processes
	if processes == nil && image.Procfile != nil {
		processes, err = domain.ParseProcfile(*image.Procfile)
		if err != nil {
			return nil, s.fail("record_build_success", err, "image_id", id)
		}
	}
	if processes == nil {
		processes = map[string]domain.Process{}
	}

	imageID := input.ImageID
	image.ImageID = &imageID
	image.Built = true
	image.Processes = processes
	image.Metadata = input.Metadata
	image.BuildLog = input.BuildLog

	if err := s.imageRepository.Update(image); err != nil {
		return nil, s.fail("record_build_success", err, "image_id", id)
	}

	slog.Info("Image build succeeded", "image_id", id, "version", image.Version)
	return image, nil
}

// RecordBuildFailure marks the image failed, keeping at most MaxErrorDetailLength characters of detail
func (s *ImageService) RecordBuildFailure(id uuid.UUID, detail string, buildLog *string) (*domain.Image, error) {
	image, err := s.imageRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("record_build_failure", err, "image_id", id)
	}

	truncated := domain.TruncateDetail(detail)
	image.Error = true
	image.ErrorDetail = &truncated
	if buildLog != nil {
		image.BuildLog = buildLog
	}

	if err := s.imageRepository.Update(image); err != nil {
		return nil, s.fail("record_build_failure", err, "image_id", id)
	}

	slog.Warn("Image build failed", "image_id", id, "version", image.Version)
	return image, nil
}

// Delete marks the image deleted. Its version number is never reused.
func (s *ImageService) Delete(id uuid.UUID) error {
	image, err := s.imageRepository.FindByID(id)
	if err != nil {
		return s.fail("delete_image", err, "image_id", id)
	}

	image.Deleted = true
	if err := s.imageRepository.Update(image); err != nil {
		return s.fail("delete_image", err, "image_id", id)
	}

	slog.Info("Image deleted", "image_id", id, "version", image.Version)
	return nil
}

func (s *ImageService) Get(id uuid.UUID) (*domain.Image, error) {
	image, err := s.imageRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("get_image", err, "image_id", id)
	}
	return image, nil
}

// List returns the live images of an application, newest first
func (s *ImageService) List(applicationID uuid.UUID) ([]*domain.Image, error) {
	if _, err := s.applicationRepository.FindByID(applicationID); err != nil {
		return nil, s.fail("list_images", err, "application_id", applicationID)
	}

	images, err := s.imageRepository.ListByApplication(applicationID)
	if err != nil {
		return nil, s.fail("list_images", err, "application_id", applicationID)
	}
	return images, nil
}

// LatestBuilt returns the built image with the highest version, or nil
func (s *ImageService) LatestBuilt(applicationID uuid.UUID) (*domain.Image, error) {
	return s.latest(applicationID, repository.BuildStateBuilt)
}

// LatestError returns the failed image with the highest version, or nil
func (s *ImageService) LatestError(applicationID uuid.UUID) (*domain.Image, error) {
	return s.latest(applicationID, repository.BuildStateError)
}

// LatestBuilding returns the in-progress image with the highest version, or nil
func (s *ImageService) LatestBuilding(applicationID uuid.UUID) (*domain.Image, error) {
	return s.latest(applicationID, repository.BuildStateBuilding)
}

func (s *ImageService) latest(applicationID uuid.UUID, state repository.BuildState) (*domain.Image, error) {
	image, err := s.imageRepository.Latest(applicationID, state)
	if err != nil {
		return nil, s.fail("latest_image", err, "application_id", applicationID, "state", state.String())
	}
	return image, nil
}

func (s *ImageService) fail(operation string, err error, attrs ...any) error {
	slog.Error("Service operation failed",
		append([]any{"layer", "service", "operation", operation, "error", err}, attrs...)...)
	return err
}

func NewImageService(
	imageRepository repository.ImageRepository,
	applicationRepository repository.ApplicationRepository,
) *ImageService {
	return &ImageService{
		imageRepository:       imageRepository,
		applicationRepository: applicationRepository,
	}
}
