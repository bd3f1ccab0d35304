package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invenia/lambdalayers/registry"
)

func TestRenderTable_HeaderComesFirst(t *testing.T) {
	var buf bytes.Buffer
	versions := []registry.LayerVersion{
		{LayerVersionArn: "arn:aws:lambda:us-east-1:123456789012:layer:numpy:2", Version: 2, Description: "v2"},
		{LayerVersionArn: "arn:aws:lambda:us-east-1:123456789012:layer:numpy:1", Version: 1, Description: "v1"},
	}

	require.NoError(t, renderTable(&buf, versions))

	out := buf.String()
	header := strings.Index(out, "VERSION")
	first := strings.Index(out, "layer:numpy:2")
	second := strings.Index(out, "layer:numpy:1")
	require.NotEqual(t, -1, header)
	assert.Less(t, header, first)
	assert.Less(t, first, second)
}

func TestRenderTable_UnknownRecord(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, renderTable(&buf, 42))
}
