package service

import (
	"teach_clone_backend/internal/model"
	"testing"
)

func TestDetectTeacherGender(t *testing.T) {
	cases := []struct {
		name     string
		analysis *model.VideoAnalysis
		teacher  string
		want     model.TeacherGender
	}{
		{
			name:     "analysis field wins",
			analysis: &model.VideoAnalysis{TeacherGender: model.GenderFemale, VoiceCharacteristics: "deep male voice"},
			teacher:  "John Smith",
			want:     model.GenderFemale,
		},
		{
			name:     "voice characteristics female",
			analysis: &model.VideoAnalysis{VoiceCharacteristics: "a soft woman's voice"},
			teacher:  "John Smith",
			want:     model.GenderFemale,
		},
		{
			name:     "voice characteristics male",
			analysis: &model.VideoAnalysis{VoiceCharacteristics: "deep male voice"},
			teacher:  "Sarah Lee",
			want:     model.GenderMale,
		},
		{
			name:     "name hint",
			analysis: nil,
			teacher:  "Fatima Khan",
			want:     model.GenderFemale,
		},
		{
			name:     "default male",
			analysis: nil,
			teacher:  "Alex Morgan",
			want:     model.GenderMale,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectTeacherGender(tc.analysis, tc.teacher)
			if got != tc.want {
				t.Errorf("DetectTeacherGender() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeriveVoiceProfile(t *testing.T) {
	analysis := &model.VideoAnalysis{
		ToneDescription:      "Energetic and engaging (Level: 8)",
		Pacing:               "Fast",
		TeacherGender:        model.GenderFemale,
		VoiceCharacteristics: "bright",
	}

	profile := DeriveVoiceProfile(analysis, "Ms. Chen")

	if profile.Pitch != 2.0 {
		t.Errorf("pitch = %v, want 2.0 for energetic tone", profile.Pitch)
	}
	if profile.Rate != 1.15 {
		t.Errorf("rate = %v, want 1.15 for fast pacing", profile.Rate)
	}
	if profile.Lang != "en-US" {
		t.Errorf("lang = %q, want en-US", profile.Lang)
	}
	if profile.Gender != model.GenderFemale {
		t.Errorf("gender = %v, want Female", profile.Gender)
	}
	if profile.VoiceName != "en-US-Neural2-F" {
		t.Errorf("voiceName = %q, want en-US-Neural2-F", profile.VoiceName)
	}
}

func TestDeriveVoiceProfileCalmSlow(t *testing.T) {
	analysis := &model.VideoAnalysis{
		ToneDescription: "Calm and reassuring (Level: 6)",
		Pacing:          "Slow and deliberate",
		TeacherGender:   model.GenderMale,
	}

	profile := DeriveVoiceProfile(analysis, "Mr. Ahmed")

	if profile.Pitch != -2.0 {
		t.Errorf("pitch = %v, want -2.0 for calm tone", profile.Pitch)
	}
	if profile.Rate != 0.90 {
		t.Errorf("rate = %v, want 0.90 for slow pacing", profile.Rate)
	}
	if profile.VoiceName != "en-US-Neural2-D" {
		t.Errorf("voiceName = %q, want en-US-Neural2-D", profile.VoiceName)
	}
}

func TestDeriveVoiceProfileDefaults(t *testing.T) {
	profile := DeriveVoiceProfile(nil, "")

	if profile.Pitch != 0 || profile.Rate != 1.0 {
		t.Errorf("defaults = pitch %v rate %v, want 0 and 1.0", profile.Pitch, profile.Rate)
	}
	if profile.Gender != model.GenderMale {
		t.Errorf("default gender = %v, want Male", profile.Gender)
	}
}

func TestDeriveVoiceProfileDeterministic(t *testing.T) {
	analysis := &model.VideoAnalysis{
		ToneDescription: "Enthusiastic",
		Pacing:          "fast-paced",
		TeacherGender:   model.GenderFemale,
	}

	a := DeriveVoiceProfile(analysis, "Maria Lopez")
	b := DeriveVoiceProfile(analysis, "Maria Lopez")
	if a != b {
		t.Errorf("same input produced different profiles: %+v vs %+v", a, b)
	}
}
