package api

import (
	"strings"

	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
)

// userIDHeader carries the caller identity. The gateway in front of the
// service authenticates users and sets it.
const userIDHeader = "X-User-ID"

// authenticateRequest returns the caller's user id from the gateway header.
func (s *Server) authenticateRequest(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domainerrors.Unauthorized("Missing " + userIDHeader + " header")
	}
	return userID, nil
}

// parseEntryID decodes a path id such as "completed_12".
func parseEntryID(raw string) (domain.EntryRef, error) {
	ref, err := domain.ParseEntryRef(raw)
	if err != nil {
		return domain.EntryRef{}, domainerrors.Validationf("invalid entry id %q", raw).WithCause(err)
	}
	return ref, nil
}
