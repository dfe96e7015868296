package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"omitempty,pwd"`
	CompanyID string `json:"companyId" binding:"omitempty,objectid"`
	Size      string `json:"size" binding:"omitempty,companysize"`
}

func TestStructDetails(t *testing.T) {
	Init()

	err := Struct(&sample{Email: "nope", Password: "short", CompanyID: "xyz", Size: "huge"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8 characters long", details["password"])
	assert.Equal(t, "must be a valid id", details["companyId"])
	assert.Contains(t, details["size"], "1000+")
}

func TestStructValid(t *testing.T) {
	Init()
	require.NoError(t, Struct(&sample{Email: "a@example.com", CompanyID: "64b7f0c2a1b2c3d4e5f60718", Size: "11-50"}))
}

func TestToDetailsJSONErrors(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"email":`), &s)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"email": 5}`), &s)
	assert.Equal(t, map[string]string{"email": "must be a string"}, ToDetails(err))

	assert.Nil(t, ToDetails(nil))
}
