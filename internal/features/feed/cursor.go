package feed

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedCursor pins a position in the reverse-chronological feed. The post id
// rides along so clients can drop any duplicate at the page seam.
type FeedCursor struct {
	Timestamp time.Time          `json:"t"`
	PostID    primitive.ObjectID `json:"i"`
}

// EncodeCursor packs a feed position into an opaque base64 token
func EncodeCursor(timestamp time.Time, postID primitive.ObjectID) string {
	jsonBytes, _ := json.Marshal(FeedCursor{Timestamp: timestamp, PostID: postID})
	return base64.StdEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor unpacks a cursor token. An empty token means first page.
func DecodeCursor(cursor string) (*FeedCursor, error) {
	if cursor == "" {
		return nil, nil
	}

	jsonBytes, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, errors.New("invalid cursor format: not base64")
	}

	var cursorData FeedCursor
	if err := json.Unmarshal(jsonBytes, &cursorData); err != nil {
		return nil, errors.New("invalid cursor format: invalid json")
	}

	if cursorData.Timestamp.IsZero() {
		return nil, errors.New("invalid cursor: missing timestamp")
	}
	if cursorData.PostID.IsZero() {
		return nil, errors.New("invalid cursor: missing post id")
	}

	return &cursorData, nil
}
