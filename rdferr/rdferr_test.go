package rdferr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/rdferr"
)

func TestWrapUnwrapsToSentinel(t *testing.T) {
	err := rdferr.Wrap(rdferr.NotFound, "model: unknown parser turtle", rdferr.ErrUnknownFactory)
	require.True(t, errors.Is(err, rdferr.ErrUnknownFactory))
	require.Equal(t, rdferr.NotFound, err.Kind)
}

func TestErrorStringIncludesLocator(t *testing.T) {
	err := rdferr.New(rdferr.ParseError, "unexpected token").WithLocator(&rdferr.Locator{Line: 3, Column: 7})
	require.Contains(t, err.Error(), "line 3")
	require.Contains(t, err.Error(), "col 7")
}

func TestErrorStringWithoutLocator(t *testing.T) {
	err := rdferr.New(rdferr.InvalidArgument, "empty uri")
	require.Equal(t, "invalid_argument: empty uri", err.Error())
}
