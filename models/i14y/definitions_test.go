package i14y

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOIDValidation(t *testing.T) {
	valid := []string{"2.16.756.5.30.1.127.3.10.1.3", "0.4.0", "1", "2.0"}
	for _, v := range valid {
		_, err := OID(v).MarshalText()
		assert.NoError(t, err, v)
	}

	invalid := []string{"", "3.1", "2.16.", ".2.16", "2.16.01", "not-an-oid", "2.16.756 5"}
	for _, v := range invalid {
		_, err := OID(v).MarshalText()
		assert.Error(t, err, v)
	}
}

func TestOIDUnmarshalJSON(t *testing.T) {
	var o OID
	assert.NoError(t, json.Unmarshal([]byte(`"2.16.756.5.30.1.127.3.10.6"`), &o))
	assert.Equal(t, "2.16.756.5.30.1.127.3.10.6", o.String())

	assert.Error(t, json.Unmarshal([]byte(`"9.9"`), &o))
	assert.Error(t, json.Unmarshal([]byte(`42`), &o))
}

func TestDateValidation(t *testing.T) {
	_, err := Date("2024-06-01").MarshalText()
	assert.NoError(t, err)

	invalid := []string{"", "2024-6-1", "01-06-2024", "2024/06/01", "2024-06-01T00:00:00"}
	for _, v := range invalid {
		_, err := Date(v).MarshalText()
		assert.Error(t, err, v)
	}
}

func TestDateUnmarshalText(t *testing.T) {
	var d Date
	assert.NoError(t, d.UnmarshalText([]byte("2100-06-01")))
	assert.Equal(t, Date("2100-06-01"), d)

	assert.Error(t, d.UnmarshalText([]byte("June 1st")))
}
