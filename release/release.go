// Package release computes release candidates, decides deployment readiness and
// tracks the validity of persisted releases.
package release

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/diff"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/repository"
)

// Builder defines the release operations exposed to the CLI and the web API
type Builder interface {
	Candidate(applicationID uuid.UUID) (*domain.Release, error)
	CurrentRelease(applicationID uuid.UUID) (*domain.ReleaseSummary, error)
	ReadyForDeployment(applicationID uuid.UUID) (imageDiff, configurationDiff diff.Result, err error)
	Create(applicationID uuid.UUID) (*domain.Release, error)
	MarkBuilt(id uuid.UUID, metadata map[string]any, buildLog *string) (*domain.Release, error)
	MarkFailed(id uuid.UUID, detail string, buildLog *string) (*domain.Release, error)
	Delete(id uuid.UUID) error

	Get(id uuid.UUID) (*domain.Release, error)
	List(applicationID uuid.UUID) ([]*domain.Release, error)
	Latest(applicationID uuid.UUID) (*domain.Release, error)
	LatestBuilt(applicationID uuid.UUID) (*domain.Release, error)
	LatestError(applicationID uuid.UUID) (*domain.Release, error)
	LatestBuilding(applicationID uuid.UUID) (*domain.Release, error)

	ImageObject(release *domain.Release) (*domain.Image, error)
	ConfigurationObjects(release *domain.Release) (map[string]*domain.Configuration, error)
	Valid(release *domain.Release) (bool, error)
	Deposed(release *domain.Release) (bool, error)
	DeposedReason(release *domain.Release) ([]string, error)
	Validity(release *domain.Release) domain.Validity
	EnvconsulConfigurations(release *domain.Release) (map[string]string, error)
}

type ReleaseService struct {
	releaseRepository       repository.ReleaseRepository
	applicationRepository   repository.ApplicationRepository
	imageRepository         repository.ImageRepository
	configurationRepository repository.ConfigurationRepository
}

var _ Builder = (*ReleaseService)(nil)

// Candidate builds the unsaved release that Create would persist right now.
// The image snapshot is empty when the application has no built image.
func (s *ReleaseService) Candidate(applicationID uuid.UUID) (*domain.Release, error) {
	application, err := s.applicationRepository.FindByID(applicationID)
	if err != nil {
		return nil, s.fail("release_candidate", err, "application_id", applicationID)
	}

	image, err := s.imageRepository.Latest(applicationID, repository.BuildStateBuilt)
	if err != nil {
		return nil, s.fail("release_candidate", err, "application_id", applicationID)
	}

	configurations, err := s.configurationRepository.ListByApplication(applicationID)
	if err != nil {
		return nil, s.fail("release_candidate", err, "application_id", applicationID)
	}

	release := &domain.Release{
		ApplicationID: application.ID,
		Platform:      application.Platform,
		Configuration: make(map[string]domain.ConfigurationSummary, len(configurations)),
	}
	if image != nil {
		release.Image = image.AsDict()
	}
	for _, configuration := range configurations {
		release.Configuration[configuration.Name] = configuration.AsDict()
	}
	return release, nil
}

// CurrentRelease returns the summary of the most recent release, or nil when there is none
func (s *ReleaseService) CurrentRelease(applicationID uuid.UUID) (*domain.ReleaseSummary, error) {
	latest, err := s.Latest(applicationID)
	if err != nil || latest == nil {
		return nil, err
	}
	summary := latest.AsDict()
	return &summary, nil
}

// ReadyForDeployment diffs the candidate against the current release, once over the
// image snapshot and once over the configuration snapshot. Any entry in the added,
// removed or changed partitions of either result means a deploy is needed.
func (s *ReleaseService) ReadyForDeployment(applicationID uuid.UUID) (diff.Result, diff.Result, error) {
	candidate, err := s.Candidate(applicationID)
	if err != nil {
		return diff.Result{}, diff.Result{}, err
	}
	current, err := s.CurrentRelease(applicationID)
	if err != nil {
		return diff.Result{}, diff.Result{}, err
	}

	imageDiff, configurationDiff := compare(candidate.AsDict(), current)
	return imageDiff, configurationDiff, nil
}

func compare(candidate domain.ReleaseSummary, current *domain.ReleaseSummary) (diff.Result, diff.Result) {
	currentImage, currentConfiguration := map[string]any{}, map[string]any{}
	if current != nil {
		currentImage = current.ImageMap()
		currentConfiguration = current.ConfigurationMap()
	}

	imageDiff := diff.Compare(candidate.ImageMap(), currentImage, domain.VolatileKeys...)
	configurationDiff := diff.Compare(candidate.ConfigurationMap(), currentConfiguration, domain.VolatileKeys...)
	if current != nil {
		configurationDiff = markUpdated(configurationDiff, candidate.Configuration, current.Configuration)
	}
	return imageDiff, configurationDiff
}

// markUpdated moves entries that are the same configuration at a different version
// stamp from unchanged to changed. Summaries carry no value, so the stamp is the only
// trace of an in-place update. Entries recreated under a new id still compare by content.
func markUpdated(result diff.Result, candidate, current map[string]domain.ConfigurationSummary) diff.Result {
	unchanged := make([]string, 0, len(result.Unchanged))
	changed := append([]string{}, result.Changed...)
	for _, name := range result.Unchanged {
		now, before := candidate[name], current[name]
		if now.ID == before.ID && now.VersionID != before.VersionID {
			changed = append(changed, name)
			continue
		}
		unchanged = append(unchanged, name)
	}
	sort.Strings(changed)

	result.Changed = changed
	result.Unchanged = unchanged
	return result
}

// Create persists the candidate with both diff results and the next release version.
// It fails with ErrNotFound when the application has no built image.
func (s *ReleaseService) Create(applicationID uuid.UUID) (*domain.Release, error) {
	candidate, err := s.Candidate(applicationID)
	if err != nil {
		return nil, err
	}
	if candidate.Image.IsZero() {
		err := fmt.Errorf("%w: application %s has no built image", domain.ErrNotFound, applicationID)
		return nil, s.fail("create_release", err, "application_id", applicationID)
	}

	current, err := s.CurrentRelease(applicationID)
	if err != nil {
		return nil, err
	}

	candidate.ID = uuid.New()
	candidate.ImageChanges, candidate.ConfigurationChanges = compare(candidate.AsDict(), current)

	if err := s.releaseRepository.Create(candidate); err != nil {
		return nil, s.fail("create_release", err, "application_id", applicationID)
	}

	slog.Info("Release created",
		"release_id", candidate.ID,
		"application_id", applicationID,
		"version", candidate.Version,
		"image_changes", candidate.ImageChanges.HasChanges(),
		"configuration_changes", candidate.ConfigurationChanges.HasChanges())
	return candidate, nil
}

// MarkBuilt records that the release artifact was produced
func (s *ReleaseService) MarkBuilt(id uuid.UUID, metadata map[string]any, buildLog *string) (*domain.Release, error) {
	release, err := s.releaseRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("mark_release_built", err, "release_id", id)
	}

	release.Built = true
	if metadata != nil {
		release.Metadata = metadata
	}
	if buildLog != nil {
		release.BuildLog = buildLog
	}

	if err := s.releaseRepository.Update(release); err != nil {
		return nil, s.fail("mark_release_built", err, "release_id", id)
	}
	return release, nil
}

// MarkFailed records a failed release build, keeping at most MaxErrorDetailLength characters of detail
func (s *ReleaseService) MarkFailed(id uuid.UUID, detail string, buildLog *string) (*domain.Release, error) {
	release, err := s.releaseRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("mark_release_failed", err, "release_id", id)
	}

	truncated := domain.TruncateDetail(detail)
	release.Error = true
	release.ErrorDetail = &truncated
	if buildLog != nil {
		release.BuildLog = buildLog
	}

	if err := s.releaseRepository.Update(release); err != nil {
		return nil, s.fail("mark_release_failed", err, "release_id", id)
	}
	return release, nil
}

// Delete marks the release deleted. The next release still diffs against the latest live one.
func (s *ReleaseService) Delete(id uuid.UUID) error {
	release, err := s.releaseRepository.FindByID(id)
	if err != nil {
		return s.fail("delete_release", err, "release_id", id)
	}

	release.Deleted = true
	if err := s.releaseRepository.Update(release); err != nil {
		return s.fail("delete_release", err, "release_id", id)
	}

	slog.Info("Release deleted", "release_id", id, "version", release.Version)
	return nil
}

func (s *ReleaseService) Get(id uuid.UUID) (*domain.Release, error) {
	release, err := s.releaseRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("get_release", err, "release_id", id)
	}
	return release, nil
}

// List returns the live releases of an application, newest first
func (s *ReleaseService) List(applicationID uuid.UUID) ([]*domain.Release, error) {
	if _, err := s.applicationRepository.FindByID(applicationID); err != nil {
		return nil, s.fail("list_releases", err, "application_id", applicationID)
	}

	releases, err := s.releaseRepository.ListByApplication(applicationID)
	if err != nil {
		return nil, s.fail("list_releases", err, "application_id", applicationID)
	}
	return releases, nil
}

func (s *ReleaseService) Latest(applicationID uuid.UUID) (*domain.Release, error) {
	return s.latest(applicationID, repository.BuildStateAny)
}

func (s *ReleaseService) LatestBuilt(applicationID uuid.UUID) (*domain.Release, error) {
	return s.latest(applicationID, repository.BuildStateBuilt)
}

func (s *ReleaseService) LatestError(applicationID uuid.UUID) (*domain.Release, error) {
	return s.latest(applicationID, repository.BuildStateError)
}

func (s *ReleaseService) LatestBuilding(applicationID uuid.UUID) (*domain.Release, error) {
	return s.latest(applicationID, repository.BuildStateBuilding)
}

func (s *ReleaseService) latest(applicationID uuid.UUID, state repository.BuildState) (*domain.Release, error) {
	release, err := s.releaseRepository.Latest(applicationID, state)
	if err != nil {
		return nil, s.fail("latest_release", err, "application_id", applicationID, "state", state.String())
	}
	return release, nil
}

// ImageObject resolves the snapshotted image. It returns nil when the image no longer exists.
func (s *ReleaseService) ImageObject(release *domain.Release) (*domain.Image, error) {
	id, err := uuid.Parse(release.Image.ID)
	if err != nil {
		return nil, nil
	}
	image, err := s.imageRepository.FindByID(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return image, err
}

// ConfigurationObjects resolves every snapshotted configuration by id.
// Entries that no longer exist map to nil.
func (s *ReleaseService) ConfigurationObjects(release *domain.Release) (map[string]*domain.Configuration, error) {
	objects := make(map[string]*domain.Configuration, len(release.Configuration))
	for name, summary := range release.Configuration {
		configuration, err := s.resolveConfiguration(summary.ID)
		if err != nil {
			return nil, err
		}
		objects[name] = configuration
	}
	return objects, nil
}

func (s *ReleaseService) resolveConfiguration(rawID string) (*domain.Configuration, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, nil
	}
	configuration, err := s.configurationRepository.FindByID(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return configuration, err
}

// Valid reports whether the snapshotted image and every snapshotted configuration still exist
func (s *ReleaseService) Valid(release *domain.Release) (bool, error) {
	reasons, err := s.DeposedReason(release)
	if err != nil {
		return false, err
	}
	return len(reasons) == 0, nil
}

func (s *ReleaseService) Deposed(release *domain.Release) (bool, error) {
	valid, err := s.Valid(release)
	if err != nil {
		return false, err
	}
	return !valid, nil
}

// DeposedReason names every snapshotted reference that no longer resolves
func (s *ReleaseService) DeposedReason(release *domain.Release) ([]string, error) {
	reasons := []string{}

	image, err := s.ImageObject(release)
	if err != nil {
		return nil, err
	}
	if image == nil {
		reasons = append(reasons, fmt.Sprintf("Image(%s) no longer exists!", release.Image.ID))
	}

	for _, name := range release.ConfigurationNames() {
		summary := release.Configuration[name]
		configuration, err := s.resolveConfiguration(summary.ID)
		if err != nil {
			return nil, err
		}
		if configuration == nil {
			reasons = append(reasons, fmt.Sprintf("Configuration(%s) for %s no longer exists!", summary.ID, name))
		}
	}
	return reasons, nil
}

// Validity is the tri-state form of Valid: lookups that fail for reasons other
// than a missing reference yield ValidityUnknown
func (s *ReleaseService) Validity(release *domain.Release) domain.Validity {
	valid, err := s.Valid(release)
	switch {
	case err != nil:
		slog.Warn("Could not determine release validity", "release_id", release.ID, "error", err)
		return domain.ValidityUnknown
	case valid:
		return domain.ValidityValid
	default:
		return domain.ValidityDeposed
	}
}

// EnvconsulConfigurations renders one envconsul configuration per process of the
// snapshotted image: the exec stanza followed by the statement of every configuration
// that still exists. Missing configurations are skipped.
func (s *ReleaseService) EnvconsulConfigurations(release *domain.Release) (map[string]string, error) {
	objects, err := s.ConfigurationObjects(release)
	if err != nil {
		return nil, err
	}

	statements := make([]string, 0, len(objects))
	for _, name := range release.ConfigurationNames() {
		configuration := objects[name]
		if configuration == nil {
			continue
		}
		statement, err := configuration.EnvconsulStatement()
		if err != nil {
			return nil, s.fail("envconsul_configurations", err,
				"release_id", release.ID,
				"configuration_id", configuration.ID)
		}
		statements = append(statements, statement)
	}
	environment := strings.Join(statements, "\n")

	configurations := make(map[string]string, len(release.Image.Processes))
	for name, process := range release.Image.Processes {
		configurations[name] = domain.ExecStatement(process) + "\n" + environment
	}
	return configurations, nil
}

func (s *ReleaseService) fail(operation string, err error, attrs ...any) error {
	slog.Error("Service operation failed",
		append([]any{"layer", "service", "operation", operation, "error", err}, attrs...)...)
	return err
}

func NewReleaseService(
	releaseRepository repository.ReleaseRepository,
	applicationRepository repository.ApplicationRepository,
	imageRepository repository.ImageRepository,
	configurationRepository repository.ConfigurationRepository,
) *ReleaseService {
	return &ReleaseService{
		releaseRepository:       releaseRepository,
		applicationRepository:   applicationRepository,
		imageRepository:         imageRepository,
		configurationRepository: configurationRepository,
	}
}
