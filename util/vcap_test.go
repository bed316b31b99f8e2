package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleVcap = `{
	"user-provided": [
		{"name": "pz-postgres", "label": "user-provided", "credentials": {"uri": "postgres://u:p@db.localdomain:5432/snap", "port": 5432}}
	],
	"p-redis": [
		{"name": "cache", "label": "p-redis", "credentials": {}}
	]
}`

func TestParseVcapServices_ConnectionURI(t *testing.T) {
	// Mock
	services, err := ParseVcapServices([]byte(sampleVcap))
	assert.Nil(t, err)

	// Tested code
	uri, err := services.ConnectionURI("pz-postgres")

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, "postgres://u:p@db.localdomain:5432/snap", uri)
	assert.ElementsMatch(t, []string{"pz-postgres", "cache"}, services.GetServiceNames())
}

func TestParseVcapServices_Errors(t *testing.T) {
	_, err := ParseVcapServices([]byte("not json"))
	assert.NotNil(t, err)

	services, _ := ParseVcapServices([]byte(sampleVcap))
	_, err = services.ConnectionURI("missing")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = services.FindServiceByName("cache").Credentials.String("uri")
	assert.NotNil(t, err)
}
