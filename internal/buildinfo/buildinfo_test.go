package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	defer func(v, d, c string) { buildVersion, buildDate, buildCommit = v, d, c }(buildVersion, buildDate, buildCommit)

	var buf bytes.Buffer
	buildVersion, buildDate, buildCommit = "v1.2.3", "", "abc123"
	PrintBuildData(&buf)

	assert.Equal(t, "Build version: v1.2.3\nBuild date: N/A\nBuild commit: abc123\n", buf.String())
}
