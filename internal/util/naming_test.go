package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectName(t *testing.T) {
	assert.Equal(t, "acme-widget", ProjectName("acme/widget"))
	assert.Equal(t, "acme-widget-3", ProjectName("acme/widget", "3"))
	assert.Equal(t, "acme-my_widget", ProjectName("acme/my widget"))
	assert.Len(t, ProjectName("acme/"+strings.Repeat("x", 200)), 100)
}
