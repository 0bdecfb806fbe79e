package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectConflict_Equal(t *testing.T) {
	require.Nil(t, DetectConflict(42, 42))
	require.Nil(t, DetectConflict(0, 0))
}

func TestDetectConflict_Diverged(t *testing.T) {
	conflict := DetectConflict(7, 42)
	require.NotNil(t, conflict)
	require.Equal(t, int64(42), conflict.ServerStamp)
	require.Equal(t, int64(7), conflict.ClientStamp)
	require.NotEmpty(t, conflict.Description)
}

func TestDetectConflict_StaleClientAhead(t *testing.T) {
	// A client stamp newer than the server's is still a divergence.
	require.NotNil(t, DetectConflict(100, 42))
}

func TestParseRelPath(t *testing.T) {
	projectID, docType, err := ParseRelPath("p1/requirements.md")
	require.NoError(t, err)
	require.Equal(t, "p1", projectID)
	require.Equal(t, TypeRequirements, docType)

	_, _, err = ParseRelPath("p1/notes.md")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = ParseRelPath("requirements.md")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = ParseRelPath("p1/nested/design.md")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = ParseRelPath("p1/design.txt")
	require.ErrorIs(t, err, ErrInvalidInput)
}
