package posts

import (
	"errors"
	"strings"
)

// ValidateCreatePostRequest checks content beyond what binding covers
func ValidateCreatePostRequest(req *CreatePostRequest) error {
	req.Content = strings.TrimSpace(req.Content)

	if req.Content == "" {
		return errors.New("content cannot be empty")
	}
	if len(req.Content) > 2000 {
		return errors.New("content cannot exceed 2000 characters")
	}

	return nil
}

// ValidateUpdatePostRequest checks edited content
func ValidateUpdatePostRequest(req *UpdatePostRequest) error {
	req.Content = strings.TrimSpace(req.Content)

	if req.Content == "" {
		return errors.New("content cannot be empty")
	}
	if len(req.Content) > 2000 {
		return errors.New("content cannot exceed 2000 characters")
	}

	return nil
}
