// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/internal/glsl"
	"github.com/gogpu/blendpack/internal/gputest"
	"github.com/gogpu/blendpack/shader"
)

func TestAcquireCreatesDeviceOnce(t *testing.T) {
	f := &gputest.Factory{}
	c := gpu.NewContext(f.New, shader.Stock())
	defer c.Close()

	assert.Equal(t, 0, f.Created(), "device must be created lazily")
	require.NoError(t, c.Acquire(8, 8))
	require.NoError(t, c.Acquire(8, 8))
	require.NoError(t, c.Acquire(16, 4))

	assert.Equal(t, 1, f.Created())
	assert.Equal(t, 1, f.Last().Resizes())
	w, h := c.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 1, f.Last().Live("buffer"), "one shared quad")
}

func TestAcquireFailure(t *testing.T) {
	f := &gputest.Factory{Err: gputest.ErrCreate}
	c := gpu.NewContext(f.New, shader.Stock())

	err := c.Acquire(8, 8)
	var ce *gpu.ContextError
	require.True(t, errors.As(err, &ce), "Acquire() = %v, want *ContextError", err)
	assert.ErrorIs(t, err, gputest.ErrCreate)

	err = gpu.NewContext(nil, shader.Stock()).Acquire(8, 8)
	assert.ErrorIs(t, err, gpu.ErrNoDevice)
}

func TestProgramCacheConcurrentStats(t *testing.T) {
	c := gpu.NewContext((&gputest.Factory{}).New, shader.Stock())
	defer c.Close()
	require.NoError(t, c.Acquire(8, 8))

	const callers, calls = 8, 25
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range calls {
				_, _ = c.Program("wipe_left")
				_ = c.Stats()
			}
		}()
	}
	wg.Wait()

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, uint64(callers*calls-1), st.Hits)
	assert.Equal(t, 1, st.Programs)
}

func TestProgramBeforeAcquire(t *testing.T) {
	c := gpu.NewContext((&gputest.Factory{}).New, shader.Stock())
	_, err := c.Program("wipe_left")
	assert.ErrorIs(t, err, gpu.ErrNotAcquired)
}

func TestProgramCache(t *testing.T) {
	f := &gputest.Factory{}
	c := gpu.NewContext(f.New, shader.Stock())
	defer c.Close()
	require.NoError(t, c.Acquire(8, 8))

	p1, err := c.Program("wipe_left")
	require.NoError(t, err)
	p2, err := c.Program("wipe_left")
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, "wipe_left", p1.Key)
	assert.Equal(t, glsl.StrategyDirect, p1.Strategy)

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Programs)
	assert.InDelta(t, 0.5, st.HitRate(), 1e-9)

	src := f.Last().Sources()
	require.Len(t, src, 1)
	assert.True(t, strings.HasPrefix(src[0], "#version 330\n"))
	assert.Contains(t, src[0], "float fbm(")
	assert.NotContains(t, src[0], "precision ")
	assert.NotContains(t, src[0], glsl.LegacyOutput)
	assert.Equal(t, 1, strings.Count(src[0], "uniform sampler2D uTexA;"))
}

func TestProgramFallsBackOnCompileError(t *testing.T) {
	f := &gputest.Factory{FailCompile: []string{"uSoftness"}}
	c := gpu.NewContext(f.New, shader.Stock())
	defer c.Close()
	require.NoError(t, c.Acquire(8, 8))

	p, err := c.Program("wipe_left")
	require.NoError(t, err)
	assert.Equal(t, shader.DefaultKey, p.Key)

	again, err := c.Program("wipe_left")
	require.NoError(t, err)
	assert.Same(t, p, again)

	other, err := c.Program("wipe_right")
	require.NoError(t, err)
	assert.Same(t, p, other, "the default program is compiled once")

	st := c.Stats()
	assert.Equal(t, uint64(2), st.Fallbacks)
	assert.Equal(t, 1, st.Programs)
	assert.Len(t, f.Last().Sources(), 1)
}

func TestProgramUnknownKey(t *testing.T) {
	f := &gputest.Factory{}
	c := gpu.NewContext(f.New, shader.Stock())
	defer c.Close()
	require.NoError(t, c.Acquire(8, 8))

	p, err := c.Program("no_such_shader")
	require.NoError(t, err)
	assert.Equal(t, shader.DefaultKey, p.Key)
	assert.Equal(t, uint64(1), c.Stats().Fallbacks)
}

func TestProgramDefaultFailureIsFatal(t *testing.T) {
	f := &gputest.Factory{FailCompile: []string{"void main"}}
	c := gpu.NewContext(f.New, shader.Stock())
	defer c.Close()
	require.NoError(t, c.Acquire(8, 8))

	_, err := c.Program("wipe_left")
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrDefaultProgram)

	var ce *gpu.CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, shader.DefaultKey, ce.Key)
	assert.Equal(t, gpu.StageFragment, ce.Stage)
}

func TestCloseReleasesEverything(t *testing.T) {
	f := &gputest.Factory{}
	c := gpu.NewContext(f.New, shader.Stock())
	require.NoError(t, c.Acquire(8, 8))

	p, err := c.Program("wipe_left")
	require.NoError(t, err)
	_, err = c.Program("missing")
	require.NoError(t, err)
	va, err := c.VertexArray(p)
	require.NoError(t, err)
	va.Release()

	c.Close()
	c.Close()

	dev := f.Last()
	assert.True(t, dev.Destroyed())
	assert.Zero(t, dev.Live("program"))
	assert.Zero(t, dev.Live("buffer"))
	assert.Zero(t, dev.Live("vertexarray"))

	_, err = c.Program("wipe_left")
	assert.ErrorIs(t, err, gpu.ErrContextClosed)
	assert.ErrorIs(t, c.Acquire(8, 8), gpu.ErrContextClosed)
}

func TestCompileErrorMessage(t *testing.T) {
	err := &gpu.CompileError{Key: "wipe_left", Stage: gpu.StageFragment, Log: "0:12: syntax error"}
	want := "gpu: compile wipe_left (fragment): 0:12: syntax error"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
