package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
)

var ErrInvalidFile = errors.New("invalid manual mapping file")

// flexID accepts ids written as numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseInt(string(data), 10, 64); err != nil {
		return errors.Newf("id %s is not an integer", data)
	}
	*f = flexID(data)
	return nil
}

func (f *flexID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: id must be a scalar", node.Line)
	}
	*f = flexID(strings.TrimSpace(node.Value))
	return nil
}

type record struct {
	ID          flexID `json:"id" yaml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	CurrentClub string `json:"current_club" yaml:"current_club"`
	TeamID      flexID `json:"team_id" yaml:"team_id"`
}

type Loader struct {
	validate *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// LoadFile reads a mapping table keyed by display name. The format follows
// the extension: .yaml/.yml is YAML, anything else is JSON. An empty path
// yields an empty table.
func (l *Loader) LoadFile(path string) (*identity.ManualMappings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return identity.NewManualMappings(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read manual mappings %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.ParseYAML(data)
	default:
		return l.ParseJSON(data)
	}
}

func (l *Loader) ParseJSON(data []byte) (*identity.ManualMappings, error) {
	records := map[string]record{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := sonic.ConfigStd.Unmarshal(data, &records); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "decode manual mappings json"), ErrInvalidFile)
		}
	}
	return l.build(records)
}

func (l *Loader) ParseYAML(data []byte) (*identity.ManualMappings, error) {
	records := map[string]record{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode manual mappings yaml"), ErrInvalidFile)
	}
	return l.build(records)
}

func (l *Loader) build(records map[string]record) (*identity.ManualMappings, error) {
	entries := make(map[string]identity.Mapping, len(records))
	for key, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "mapping %q", key), ErrInvalidFile)
		}
		entries[key] = identity.Mapping{
			ID:     string(rec.ID),
			Name:   strings.TrimSpace(rec.Name),
			Club:   strings.TrimSpace(rec.CurrentClub),
			TeamID: string(rec.TeamID),
		}
	}

	mappings, err := identity.NewManualMappings(entries)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidFile)
	}
	return mappings, nil
}
