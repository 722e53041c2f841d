package cli

import (
	"reflect"
	"testing"

	"github.com/mizuki-h/subrail/internal/engine"
)

func TestParseSpeakerMap(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    map[engine.Track][]string
		wantErr bool
	}{
		{
			name:  "no flags",
			flags: nil,
			want:  nil,
		},
		{
			name:  "single speaker",
			flags: []string{"main=NARRATOR"},
			want: map[engine.Track][]string{
				engine.TrackMain: {"NARRATOR"},
			},
		},
		{
			name:  "multiple speakers one track",
			flags: []string{"description=FX, AMBIENCE"},
			want: map[engine.Track][]string{
				engine.TrackDescription: {"FX", "AMBIENCE"},
			},
		},
		{
			name:  "multiple flags",
			flags: []string{"main=ALICE", "translation=BOB"},
			want: map[engine.Track][]string{
				engine.TrackMain:        {"ALICE"},
				engine.TrackTranslation: {"BOB"},
			},
		},
		{
			name:  "empty speakers dropped",
			flags: []string{"main=ALICE,, "},
			want: map[engine.Track][]string{
				engine.TrackMain: {"ALICE"},
			},
		},
		{
			name:    "missing equals",
			flags:   []string{"main"},
			wantErr: true,
		},
		{
			name:    "unknown track",
			flags:   []string{"karaoke=ALICE"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSpeakerMap(tt.flags)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("single"); got != "single" {
		t.Errorf("got %q", got)
	}
	if got := firstLine("first\nsecond"); got != "first …" {
		t.Errorf("got %q", got)
	}
}
