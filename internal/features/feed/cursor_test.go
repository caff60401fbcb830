package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCursorRoundTrip(t *testing.T) {
	postID := primitive.NewObjectID()
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	token := EncodeCursor(ts, postID)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.True(t, decoded.Timestamp.Equal(ts))
	require.Equal(t, postID, decoded.PostID)
}

func TestDecodeCursor_EmptyMeansFirstPage(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeCursor_Garbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!!")
	require.Error(t, err)

	// Valid base64, invalid json
	_, err = DecodeCursor("aGVsbG8gd29ybGQ=")
	require.Error(t, err)
}

func TestDecodeCursor_MissingFields(t *testing.T) {
	// Zero timestamp
	token := EncodeCursor(time.Time{}, primitive.NewObjectID())
	_, err := DecodeCursor(token)
	require.Error(t, err)

	// Zero post id
	token = EncodeCursor(time.Now(), primitive.NilObjectID)
	_, err = DecodeCursor(token)
	require.Error(t, err)
}
