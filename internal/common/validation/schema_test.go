package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["customerId"],
	"properties": {
		"customerId": {"type": "string", "minLength": 1},
		"direction": {"type": "string", "enum": ["upgrade", "downgrade"]}
	}
}`

func TestValidator_ValidateInput(t *testing.T) {
	v := MustCompile(testSchema)

	result, err := v.ValidateInput(map[string]interface{}{"customerId": "C1", "direction": "upgrade"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.GetErrorMessages())

	result, err = v.ValidateInput(map[string]interface{}{"direction": "sideways"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("direction"))
	assert.Len(t, result.GetErrorMessages(), 2)
}

func TestValidator_ValidateJSON(t *testing.T) {
	v := MustCompile(testSchema)

	result, err := v.ValidateJSON([]byte(`{"customerId": ""}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("customerId"))

	_, err = v.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{"type": 12}`) })
}
