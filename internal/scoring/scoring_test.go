package scoring

import "testing"

func TestScoreFromAccuracyLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"excellent", 9},
		{"good", 7},
		{"partial", 5},
		{"incorrect", 2},
		{"idk", 1},
		{" Excellent ", 9},
		{"unknown-label", 5},
		{"", 5},
	}
	for _, tt := range tests {
		if got := ScoreFromAccuracyLabel(tt.label); got != tt.want {
			t.Errorf("ScoreFromAccuracyLabel(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"zero excluded", []float64{0, 8, 6}, 7.0},
		{"empty", nil, 0},
		{"all unscored", []float64{0, 0}, 0},
		{"rounds to one decimal", []float64{7, 8, 8}, 7.7},
		{"negative ignored", []float64{-3, 4}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Average(tt.scores); got != tt.want {
				t.Errorf("Average(%v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{0, 5, 0},
		{1, 0, 0},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := Percentage(tt.part, tt.whole); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(12.5, 0, 10); got != 10 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp low = %v", got)
	}
	if got := Clamp(4.2, 0, 10); got != 4.2 {
		t.Errorf("Clamp mid = %v", got)
	}
}
