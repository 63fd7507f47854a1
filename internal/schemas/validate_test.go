package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytes_ValidCourses(t *testing.T) {
	doc := `[{
		"course_id": "py-101",
		"title": "Python Basics",
		"skills": ["python"],
		"difficulty": "beginner",
		"duration_weeks": 4,
		"outcomes": ["write scripts"]
	}]`

	assert.NoError(t, ValidateBytes(CoursesSchema, []byte(doc)))
}

func TestValidateBytes_CourseMissingDuration(t *testing.T) {
	doc := `[{"course_id": "py-101", "title": "Python", "skills": [], "difficulty": "beginner"}]`

	err := ValidateBytes(CoursesSchema, []byte(doc))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "duration_weeks")
}

func TestValidateBytes_CourseBadDifficulty(t *testing.T) {
	doc := `[{"course_id": "x", "title": "X", "skills": [], "difficulty": "expert", "duration_weeks": 2}]`

	err := ValidateBytes(CoursesSchema, []byte(doc))
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestValidateBytes_CourseZeroDuration(t *testing.T) {
	doc := `[{"course_id": "x", "title": "X", "skills": [], "difficulty": "advanced", "duration_weeks": 0}]`

	assert.Error(t, ValidateBytes(CoursesSchema, []byte(doc)))
}

func TestValidateBytes_Roles(t *testing.T) {
	valid := `[{"role": "SDET", "skills_required": [{"skill": "python", "level": 1}]}]`
	assert.NoError(t, ValidateBytes(RolesSchema, []byte(valid)))

	missingSkill := `[{"role": "SDET", "skills_required": [{"level": 1}]}]`
	assert.Error(t, ValidateBytes(RolesSchema, []byte(missingSkill)))
}

func TestValidateBytes_UnknownSchema(t *testing.T) {
	err := ValidateBytes("nope.schema.json", []byte(`[]`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateBytes_MalformedDocument(t *testing.T) {
	err := ValidateBytes(CoursesSchema, []byte(`{not json`))
	require.Error(t, err)
	assert.IsType(t, &SchemaLoadError{}, err)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	assert.NoError(t, ValidateFile(RolesSchema, path))

	err := ValidateFile(RolesSchema, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"]}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))
	assert.Error(t, ValidateJSONString(schema, `{}`))
}
