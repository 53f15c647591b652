package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUnmarshal(t *testing.T) {
	var req GenerateSemesterRequest
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2024-09-02"}`), &req))
	require.NotNil(t, req.StartDate)
	assert.Equal(t, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), req.StartDate.Time)

	req = GenerateSemesterRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2024-09-02T10:30:00+03:00"}`), &req))
	assert.Equal(t, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), req.StartDate.Time)

	req = GenerateSemesterRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":null}`), &req))
	assert.Nil(t, req.StartDate)

	err := json.Unmarshal([]byte(`{"start_date":"02.09.2024"}`), &req)
	assert.ErrorContains(t, err, "expected YYYY-MM-DD")
}

func TestDateMarshal(t *testing.T) {
	out, err := json.Marshal(Date{Time: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2024-09-02"`, string(out))
}
