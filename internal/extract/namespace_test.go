package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceTracker_PrefixAndStack(t *testing.T) {
	t.Parallel()

	tr := NewNamespaceTracker()
	assert.False(t, tr.Active())
	assert.Equal(t, "", tr.Prefix())

	tr.Open("Eaagles")
	tr.Open("BasicGL")

	assert.True(t, tr.Active())
	assert.Equal(t, 2, tr.Depth())
	assert.Equal(t, []string{"Eaagles::", "BasicGL::"}, tr.Stack())
	assert.Equal(t, "Eaagles::BasicGL::", tr.Prefix())
	assert.Equal(t, "Eaagles::BasicGL::Graphic", tr.Qualify("Graphic"))
}

func TestNamespaceTracker_StackIsACopy(t *testing.T) {
	t.Parallel()

	tr := NewNamespaceTracker()
	tr.Open("A")
	stack := tr.Stack()
	stack[0] = "Z::"

	assert.Equal(t, "A::", tr.Prefix())
}

func TestNamespaceTracker_NestedBracesAbsorbCloses(t *testing.T) {
	t.Parallel()

	tr := NewNamespaceTracker()
	tr.Open("A")
	tr.OpenBrace()

	require.NoError(t, tr.CloseBrace())
	assert.Equal(t, 1, tr.Depth(), "nested brace should absorb the close")

	require.NoError(t, tr.CloseBrace())
	assert.Equal(t, 0, tr.Depth())
	assert.True(t, tr.Active(), "a file that opened a namespace stays active")
}

func TestNamespaceTracker_Unbalanced(t *testing.T) {
	t.Parallel()

	tr := NewNamespaceTracker()
	tr.Open("A")
	require.NoError(t, tr.CloseBrace())

	err := tr.CloseBrace()
	assert.ErrorIs(t, err, ErrUnbalancedNamespace)
}

func TestNamespaceTracker_FrozenIgnoresUnmatchedCloses(t *testing.T) {
	t.Parallel()

	tr := NewNamespaceTracker()
	tr.Open("A")
	tr.Freeze()

	require.NoError(t, tr.CloseBrace())
	require.NoError(t, tr.CloseBrace())
	assert.Equal(t, "A::", tr.Prefix())

	tr.OpenBrace()
	require.NoError(t, tr.CloseBrace())
	assert.Equal(t, "A::", tr.Prefix())
}
