package shellfrag_test

import (
	"testing"

	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/stretchr/testify/assert"
)

func TestRenderExportsAndPath(t *testing.T) {
	got := string(shellfrag.New("golang").
		Export("GOPATH", "$HOME/go").
		PathPrepend("/usr/local/go/bin").
		PathPrepend("$GOPATH/bin").
		Render())

	assert.Contains(t, got, "# golang environment\n")
	assert.Contains(t, got, "export GOPATH=\"$HOME/go\"\n")
	assert.Contains(t, got, "*) export PATH=\"/usr/local/go/bin:$PATH\" ;;")
	assert.Contains(t, got, "*) export PATH=\"$GOPATH/bin:$PATH\" ;;")
}

func TestPathPrependGuard(t *testing.T) {
	got := string(shellfrag.New("java").PathPrepend("/opt/java/bin").Render())

	// Sourcing twice must not duplicate the PATH entry.
	assert.Contains(t, got, "case \":$PATH:\" in")
	assert.Contains(t, got, "*\":/opt/java/bin:\"*) ;;")
}

func TestAliasAndRaw(t *testing.T) {
	got := string(shellfrag.New("rlang").
		Alias("R", "R --no-save").
		Raw("ulimit -n 4096").
		Render())

	assert.Contains(t, got, "alias R='R --no-save'\n")
	assert.Contains(t, got, "ulimit -n 4096\n")
}

func TestRenderDeterministic(t *testing.T) {
	build := func() string {
		return string(shellfrag.New("golang").
			Export("GOPATH", "$HOME/go").
			PathPrepend("/usr/local/go/bin").
			Render())
	}
	assert.Equal(t, build(), build())
}
