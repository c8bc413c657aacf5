package service

import (
	"fmt"
	"strings"

	"github.com/kazem-mohamed/socialhub-app/pkg/api"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
)

// MaxCommentLength is the longest comment the API accepts
const MaxCommentLength = 2000

func invalidMode(mode string) error {
	return clierrors.ValidationError("mode",
		fmt.Sprintf("%q is not one of %s", mode, strings.Join(api.FeedModes, ", ")))
}

func validateContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return clierrors.ValidationError("content", "cannot be empty")
	}
	if len([]rune(content)) > MaxCommentLength {
		return clierrors.ValidationError("content", fmt.Sprintf("exceeds %d character limit", MaxCommentLength))
	}
	return nil
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return clierrors.ValidationError(kind, "ID cannot be empty")
	}
	return nil
}

var errNothingToUpdate = clierrors.ValidationError("profile", "no fields to update")
