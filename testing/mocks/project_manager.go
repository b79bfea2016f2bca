// Package mocks provides function-field fakes of service interfaces for tests.
package mocks

import (
	"github.com/google/uuid"

	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/project"
)

// MockProjectManager implements the ProjectManager interface for testing
type MockProjectManager struct {
	ListFunc              func() ([]*domain.Project, error)
	GetFunc               func(id uuid.UUID) (*domain.Project, error)
	CreateFunc            func(input project.CreateProjectInput) (*domain.Project, error)
	RenameFunc            func(id uuid.UUID, name string) (*domain.Project, error)
	RemoveFunc            func(id uuid.UUID) error
	ListApplicationsFunc  func(projectID uuid.UUID) ([]*domain.Application, error)
	GetApplicationFunc    func(id uuid.UUID) (*domain.Application, error)
	CreateApplicationFunc func(input project.CreateApplicationInput) (*domain.Application, error)
	SetPlatformFunc       func(id uuid.UUID, platform string) (*domain.Application, error)
	RemoveApplicationFunc func(id uuid.UUID) error
}

var _ project.ProjectManager = (*MockProjectManager)(nil)

func (m *MockProjectManager) List() ([]*domain.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []*domain.Project{}, nil
}

func (m *MockProjectManager) Get(id uuid.UUID) (*domain.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return &domain.Project{ID: id}, nil
}

func (m *MockProjectManager) Create(input project.CreateProjectInput) (*domain.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(input)
	}
	p := domain.NewProject(input.OrganizationID, input.Name, input.Slug)
	return &p, nil
}

func (m *MockProjectManager) Rename(id uuid.UUID, name string) (*domain.Project, error) {
	if m.RenameFunc != nil {
		return m.RenameFunc(id, name)
	}
	return &domain.Project{ID: id, Name: name}, nil
}

func (m *MockProjectManager) Remove(id uuid.UUID) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(id)
	}
	return nil
}

func (m *MockProjectManager) ListApplications(projectID uuid.UUID) ([]*domain.Application, error) {
	if m.ListApplicationsFunc != nil {
		return m.ListApplicationsFunc(projectID)
	}
	return []*domain.Application{}, nil
}

func (m *MockProjectManager) GetApplication(id uuid.UUID) (*domain.Application, error) {
	if m.GetApplicationFunc != nil {
		return m.GetApplicationFunc(id)
	}
	return &domain.Application{ID: id, Platform: domain.DefaultPlatform}, nil
}

func (m *MockProjectManager) CreateApplication(input project.CreateApplicationInput) (*domain.Application, error) {
	if m.CreateApplicationFunc != nil {
		return m.CreateApplicationFunc(input)
	}
	a := domain.NewApplication(input.ProjectID, input.Name, input.Slug, domain.Platform(input.Platform))
	return &a, nil
}

func (m *MockProjectManager) SetPlatform(id uuid.UUID, platform string) (*domain.Application, error) {
	if m.SetPlatformFunc != nil {
		return m.SetPlatformFunc(id, platform)
	}
	return &domain.Application{ID: id, Platform: domain.Platform(platform)}, nil
}

func (m *MockProjectManager) RemoveApplication(id uuid.UUID) error {
	if m.RemoveApplicationFunc != nil {
		return m.RemoveApplicationFunc(id)
	}
	return nil
}
