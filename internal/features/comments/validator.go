package comments

import (
	"errors"
	"strings"
)

// ValidateCreateCommentRequest checks content beyond what binding covers
func ValidateCreateCommentRequest(req *CreateCommentRequest) error {
	req.Content = strings.TrimSpace(req.Content)

	if req.Content == "" {
		return errors.New("comment cannot be empty")
	}
	if len(req.Content) > 1000 {
		return errors.New("comment cannot exceed 1000 characters")
	}

	return nil
}

// ValidateUpdateCommentRequest checks edited content
func ValidateUpdateCommentRequest(req *UpdateCommentRequest) error {
	req.Content = strings.TrimSpace(req.Content)

	if req.Content == "" {
		return errors.New("comment cannot be empty")
	}
	if len(req.Content) > 1000 {
		return errors.New("comment cannot exceed 1000 characters")
	}

	return nil
}
