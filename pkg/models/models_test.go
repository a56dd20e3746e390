package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		want     Mode
		base     string
		comments bool
		wantErr  bool
	}{
		{input: "saved", want: Mode{Kind: ModeSaved}, base: "saved.html", comments: true},
		{input: "upvoted", want: Mode{Kind: ModeUpvoted}, base: "upvoted.html", comments: false},
		{input: "user:spez", want: Mode{Kind: ModeUser, Username: "spez"}, base: "spez.html", comments: true},
		{input: "user:Some_User-9", want: Mode{Kind: ModeUser, Username: "Some_User-9"}, base: "Some_User-9.html", comments: true},
		{input: "user:", wantErr: true},
		{input: "user:../../etc/passwd", wantErr: true},
		{input: "user:a/b", wantErr: true},
		{input: `user:a\b`, wantErr: true},
		{input: "user:..", wantErr: true},
		{input: "user:bad name", wantErr: true},
		{input: "hot", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.base, mode.BaseFilename())
			assert.Equal(t, tt.comments, mode.IncludesComments())
			assert.Equal(t, tt.input, mode.String())
		})
	}
}
