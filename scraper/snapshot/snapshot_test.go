package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"ottawa-housing/config"
	"ottawa-housing/utils"
)

func TestFindChromeBinaryPrefersExplicit(t *testing.T) {
	t.Setenv("CHROME_BIN", "/from/env")
	assert.Equal(t, "/opt/custom/chrome", findChromeBinary("/opt/custom/chrome"))
	assert.Equal(t, "/from/env", findChromeBinary(""))
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	c := New(&config.Config{
		DashboardURL: "http://localhost:8080/",
		SnapshotDir:  dir,
		MaxRetries:   1,
	}, utils.NewNopLogger())

	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, filepath.Join(dir, "rentals.png"), c.OutputPath(DefaultPages[1]))
}
