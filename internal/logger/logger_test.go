package logger

import (
	"bytes"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Config{Service: "videocatalog", Version: "test", Env: "test", Level: "info"})
	helper := log.NewHelper(l)

	helper.Debug("hidden")
	helper.Infof("video published: id=%d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "video published: id=1")
	assert.Contains(t, out, "service=videocatalog")
	assert.Contains(t, out, "INFO")
}
