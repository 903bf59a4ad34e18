package core

import (
	"errors"
	"testing"
)

// Requirement: records round-trip through encode/decode, role and id
// travel as string-encoded numbers, and a missing token wins over any
// stale fields.
func TestRecordCodec(t *testing.T) {
	role := RoleAdmin
	uid := int64(42)

	tests := []struct {
		name    string
		rec     map[string]string
		want    Identity
		wantErr error
	}{
		{
			name: "full record",
			rec:  map[string]string{"token": "tok123", "role": "2", "name": "Ana", "profilePic": "a.png", "id": "42"},
			want: Identity{Token: "tok123", Role: &role, DisplayName: "Ana", AvatarURL: "a.png", UserID: &uid},
		},
		{
			name: "missing token ignores everything else",
			rec:  map[string]string{"role": "2", "name": "Ghost", "id": "99"},
			want: Identity{},
		},
		{
			name: "empty record",
			rec:  map[string]string{},
			want: Identity{},
		},
		{
			name:    "token with unparsable role",
			rec:     map[string]string{"token": "tok123", "role": "admin", "id": "42"},
			wantErr: ErrCorruptRecord,
		},
		{
			name:    "token with missing id",
			rec:     map[string]string{"token": "tok123", "role": "2"},
			wantErr: ErrCorruptRecord,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DecodeRecord(test.rec)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("DecodeRecord() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				return
			}
			if !got.Equal(test.want) {
				t.Errorf("DecodeRecord() = %+v, want %+v", got, test.want)
			}

			// Encoding the decoded identity reproduces the meaningful keys.
			back, err := DecodeRecord(EncodeRecord(got))
			if err != nil {
				t.Fatalf("re-decode error = %v", err)
			}
			if !back.Equal(got) {
				t.Errorf("round trip = %+v, want %+v", back, got)
			}
		})
	}
}

// Requirement: Clone shares no pointers with the original.
func TestIdentity_Clone(t *testing.T) {
	role := RoleReader
	uid := int64(1)
	original := Identity{Token: "tok", Role: &role, UserID: &uid}

	clone := original.Clone()
	*clone.Role = RoleAdmin
	*clone.UserID = 99

	if *original.Role != RoleReader || *original.UserID != 1 {
		t.Errorf("Clone leaked pointers: %+v", original)
	}
}
