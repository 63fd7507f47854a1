package catalog

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/schemas"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Load reads the course and role requirement files, validates them against
// the embedded JSON schemas and builds the catalog. A missing file yields an
// empty list and a warning; malformed content is an error.
func Load(coursesPath, rolesPath string) (*Catalog, error) {
	var courses []types.Course
	if err := readDocument(coursesPath, schemas.CoursesSchema, &courses); err != nil {
		return nil, err
	}

	var roles []types.RoleRequirement
	if err := readDocument(rolesPath, schemas.RolesSchema, &roles); err != nil {
		return nil, err
	}

	c, err := New(courses, roles)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("courses_path", coursesPath).
		Str("roles_path", rolesPath).
		Int("courses", c.Len()).
		Int("roles", len(c.roles)).
		Msg("catalog loaded")
	return c, nil
}

func readDocument(path, schemaName string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Warn().Str("path", path).Msg("catalog file not found, continuing with an empty list")
			return nil
		}
		return &Error{Message: "failed to read " + path, Cause: err}
	}

	if err := schemas.ValidateBytes(schemaName, data); err != nil {
		return &Error{Message: "invalid catalog file " + path, Cause: err}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Message: "failed to parse " + path, Cause: err}
	}
	return nil
}
