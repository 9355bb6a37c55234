package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProgress struct {
	total int
	done  []string
	ended bool
}

func (r *recordingProgress) OnPassStart(packages int) { r.total = packages }
func (r *recordingProgress) OnPackageDone(dir string) { r.done = append(r.done, dir) }
func (r *recordingProgress) OnPassDone()              { r.ended = true }

func TestGeneratorReportsProgress(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":       "module example.com/shop\n",
		"shop/cart.go": cartSource,
		"util/util.go": "package util\n",
	})
	gen, _ := newTestGenerator(t, root+RecursiveSuffix)
	progress := &recordingProgress{}
	gen.WithProgress(progress)

	require.NoError(t, gen.Run(context.Background()))
	assert.Equal(t, 2, progress.total)
	assert.ElementsMatch(t, []string{filepath.Join(root, "shop"), filepath.Join(root, "util")}, progress.done)
	assert.True(t, progress.ended)
}

func TestBarProgress(t *testing.T) {
	var out bytes.Buffer
	progress := NewBarProgress(&out)

	progress.OnPassStart(2)
	progress.OnPackageDone("a")
	progress.OnPackageDone("b")
	progress.OnPassDone()
	progress.OnPackageDone("late")

	assert.NotEmpty(t, out.String())
	assert.Nil(t, progress.bar)
}
