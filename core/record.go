package core

import (
	"fmt"
	"strconv"
)

// Storage keys shared by every credential store backend. Values are
// string-encoded; the absence of KeyToken is the canonical logged-out
// marker.
const (
	KeyToken  = "token"
	KeyRole   = "role"
	KeyName   = "name"
	KeyAvatar = "profilePic"
	KeyUserID = "id"
)

// EncodeRecord flattens an identity into the string key-value record
// credential stores persist.
func EncodeRecord(id Identity) map[string]string {
	rec := map[string]string{
		KeyToken:  id.Token,
		KeyName:   id.DisplayName,
		KeyAvatar: id.AvatarURL,
	}
	if id.Role != nil {
		rec[KeyRole] = strconv.Itoa(int(*id.Role))
	}
	if id.UserID != nil {
		rec[KeyUserID] = strconv.FormatInt(*id.UserID, 10)
	}
	return rec
}

// DecodeRecord rebuilds an identity from a persisted record.
//
// When the token key is absent or empty the unauthenticated baseline is
// returned and every other key is ignored, so a half-written record can
// never resurrect a partially-authenticated session.
func DecodeRecord(rec map[string]string) (Identity, error) {
	token := rec[KeyToken]
	if token == "" {
		return Identity{}, nil
	}

	roleNum, err := strconv.Atoi(rec[KeyRole])
	if err != nil {
		return Identity{}, fmt.Errorf("%w: role %q: %v", ErrCorruptRecord, rec[KeyRole], err)
	}
	userID, err := strconv.ParseInt(rec[KeyUserID], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: id %q: %v", ErrCorruptRecord, rec[KeyUserID], err)
	}

	role := Role(roleNum)
	return Identity{
		Token:       token,
		Role:        &role,
		DisplayName: rec[KeyName],
		AvatarURL:   rec[KeyAvatar],
		UserID:      &userID,
	}, nil
}
