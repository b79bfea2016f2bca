package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxConfigurationValueLength is the longest value a configuration entry may hold
const MaxConfigurationValueLength = 2048

const (
	KeyBackendConsul = "consul"
	KeyBackendVault  = "vault"
)

type Configuration struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Name          string
	Value         string // always plaintext in the domain; encrypted at rest when Secret
	KeySlug       string
	Secret        bool
	Deleted       bool
	VersionID     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ConfigurationSummary is the projection embedded in release snapshots. It never carries the value.
type ConfigurationSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VersionID int    `json:"version_id"`
	Secret    bool   `json:"secret"`
}

func NewConfiguration(applicationID uuid.UUID, name, value string, secret bool) Configuration {
	return Configuration{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		Name:          name,
		Value:         value,
		Secret:        secret,
	}
}

// NameKey is the canonical form used for case-insensitive uniqueness
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// KeyBackend returns the key store backend a configuration entry lives in
func KeyBackend(secret bool) string {
	if secret {
		return KeyBackendVault
	}
	return KeyBackendConsul
}

// DeriveKeySlug builds "<backend>:<project>/<application>/configuration/<name>"
func DeriveKeySlug(secret bool, projectSlug, applicationSlug, name string) string {
	return fmt.Sprintf("%s:%s/%s/configuration/%s", KeyBackend(secret), projectSlug, applicationSlug, NameKey(name))
}

// RebaseKeySlug swaps the backend prefix of a derived key slug. Slugs with a foreign prefix are kept.
func RebaseKeySlug(keySlug string, secret bool) string {
	backend, path, ok := strings.Cut(keySlug, ":")
	if !ok || (backend != KeyBackendConsul && backend != KeyBackendVault) {
		return keySlug
	}
	return KeyBackend(secret) + ":" + path
}

// KeyPath returns the portion of the key slug after the first colon
func (c *Configuration) KeyPath() (string, error) {
	_, path, ok := strings.Cut(c.KeySlug, ":")
	if !ok {
		return "", fmt.Errorf("%w: key slug %q for configuration %s has no ':' separator", ErrMalformedKey, c.KeySlug, c.Name)
	}
	return path, nil
}

// EnvconsulStatement renders the secret/prefix directive consumed by envconsul
func (c *Configuration) EnvconsulStatement() (string, error) {
	path, err := c.KeyPath()
	if err != nil {
		return "", err
	}
	directive := "prefix"
	if c.Secret {
		directive = "secret"
	}
	return directive + " {\n" +
		"  no_prefix = true\n" +
		"  path = \"" + path + "\"\n" +
		"}", nil
}

func (c *Configuration) AsDict() ConfigurationSummary {
	return ConfigurationSummary{
		ID:        c.ID.String(),
		Name:      c.Name,
		VersionID: c.VersionID,
		Secret:    c.Secret,
	}
}
