package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/model"
)

func TestTextList_DecodesListAndString(t *testing.T) {
	var job struct {
		A model.TextList `json:"a"`
		B model.TextList `json:"b"`
		C model.TextList `json:"c"`
	}
	payload := `{"a":["one","two"],"b":"first line\n• second\n\n  third  ","c":null}`
	require.NoError(t, json.Unmarshal([]byte(payload), &job))

	assert.Equal(t, model.TextList{"one", "two"}, job.A)
	assert.Equal(t, model.TextList{"first line", "second", "third"}, job.B)
	assert.Nil(t, job.C)
}

func TestTextList_RejectsOtherShapes(t *testing.T) {
	var tl model.TextList
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &tl))
	assert.Error(t, json.Unmarshal([]byte(`42`), &tl))
}

func TestSplitItems_Empty(t *testing.T) {
	assert.Empty(t, model.SplitItems(""))
	assert.Empty(t, model.SplitItems(" \n • \n"))
}
