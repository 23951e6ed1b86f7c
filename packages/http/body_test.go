package http

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPayload struct {
	calls *int
}

func (p countingPayload) MarshalJSON() ([]byte, error) {
	*p.calls++
	return json.Marshal(map[string]int{"calls": *p.calls})
}

func TestBody_IsLazy(t *testing.T) {
	calls := 0
	body := JSONBody(countingPayload{calls: &calls})
	assert.Equal(t, 0, calls)

	data, err := body.Data()
	require.NoError(t, err)
	assert.JSONEq(t, `{"calls":1}`, string(data))

	_, err = body.Data()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBody_EncodingFailure(t *testing.T) {
	body := JSONBody(math.Inf(1))

	data, err := body.Data()
	assert.Nil(t, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoding)

	var jsonErr *json.UnsupportedValueError
	assert.ErrorAs(t, err, &jsonErr)
}

func TestRawBody(t *testing.T) {
	raw := []byte(`{"a":1}`)
	body := RawBody(raw)
	raw[0] = 'x'

	data, err := body.Data()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestBody_Equal(t *testing.T) {
	assert.True(t, JSONBody(map[string]int{"a": 1}).Equal(RawBody([]byte(`{"a":1}`))))
	assert.False(t, JSONBody(map[string]int{"a": 1}).Equal(JSONBody(map[string]int{"a": 2})))
	assert.False(t, JSONBody(math.Inf(1)).Equal(JSONBody(math.Inf(1))))
	assert.True(t, Body{}.Equal(Body{}))
}
