package launcher

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeal.fr/cobalt/pkg/logging"
)

func fakeResolver(version string, probeErr error) *Resolver {
	return &Resolver{
		Probe: func(context.Context, string) (string, error) {
			return version, probeErr
		},
		LookPath: func(string) (string, error) { return "/usr/bin/java", nil },
		Log:      logging.New(io.Discard),
	}
}

func TestResolveWithoutConfiguredPath(t *testing.T) {
	r := fakeResolver("", errors.New("must not be probed"))

	res, err := r.Resolve(context.Background(), "1.16.5", "")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/java", res.Runtime.Path)
	assert.NotEmpty(t, res.Warning)

	r.LookPath = func(string) (string, error) { return "", errors.New("not found") }
	res, err = r.Resolve(context.Background(), "1.16.5", "")
	require.NoError(t, err)
	assert.Equal(t, "java", res.Runtime.Path)
}

func TestResolveIncompatible(t *testing.T) {
	r := fakeResolver("1.8.0_392", nil)

	res, err := r.Resolve(context.Background(), "1.20.1", "/opt/java8/bin/java")
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrIncompatibleRuntime)

	var incompatible *IncompatibleRuntimeError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, 17, incompatible.Required)
	assert.Equal(t, 8, incompatible.Runtime.Major)
	assert.Equal(t, "/opt/java8/bin/java", incompatible.Runtime.Path)
}

func TestResolveCompatible(t *testing.T) {
	r := fakeResolver("21.0.2", nil)

	res, err := r.Resolve(context.Background(), "fabric-loader-0.16.9-1.20.1", "/opt/java21/bin/java")
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, 21, res.Runtime.Major)
	assert.Equal(t, 17, res.Required)
}

func TestResolveUnparseableProbe(t *testing.T) {
	r := fakeResolver("", errors.New("exec format error"))

	res, err := r.Resolve(context.Background(), "1.20.1", "/opt/broken/java")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, "/opt/broken/java", res.Runtime.Path)
}

func TestResolveUnknownVersionShape(t *testing.T) {
	r := fakeResolver("8", nil)

	res, err := r.Resolve(context.Background(), "23w31a", "/opt/java8/bin/java")
	require.NoError(t, err)
	assert.Contains(t, res.Warning, "23w31a")
}
