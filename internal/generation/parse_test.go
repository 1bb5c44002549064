package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantErr   error
	}{
		{
			name:      "array",
			input:     `[{"name": "The Star", "visual_instruction": "a pool under a night sky"}]`,
			wantNames: []string{"The Star"},
		},
		{
			name:      "wrapped in cards and fenced",
			input:     "```json\n{\"cards\": [{\"name\": \"Ace of Swords\"}, {\"name\": \"Two of Swords\"}]}\n```",
			wantNames: []string{"Ace of Swords", "Two of Swords"},
		},
		{
			name:    "missing name",
			input:   `[{"description": "nameless"}]`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "blank",
			input:   "  ",
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "malformed",
			input:   `[{"name": `,
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseMetadata(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
