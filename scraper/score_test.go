package scraper

import "testing"

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name                                  string
		bizName, website, phone, address, src string
		want                                  int
	}{
		{name: "empty", want: 0},
		{name: "name only", bizName: "Joe's", want: 2},
		{name: "website only", website: "https://x.example", want: 3},
		{name: "all fields", bizName: "Joe's", website: "https://x.example", phone: "555-0100", address: "123 Main St", src: "https://maps.example/p", want: 10},
		{name: "no website", bizName: "Joe's", phone: "555-0100", address: "123 Main St", src: "https://maps.example/p", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Completeness(tt.bizName, tt.website, tt.phone, tt.address, tt.src)
			if got != tt.want {
				t.Errorf("Completeness = %d, want %d", got, tt.want)
			}
		})
	}
}

// Adding any previously-absent field never decreases the score.
func TestCompletenessMonotonic(t *testing.T) {
	fields := []string{"", "", "", "", ""}
	values := []string{"Joe's", "https://x.example", "555-0100", "123 Main St", "https://maps.example/p"}

	base := Completeness(fields[0], fields[1], fields[2], fields[3], fields[4])
	for i := range fields {
		withField := make([]string, len(fields))
		copy(withField, fields)
		withField[i] = values[i]
		got := Completeness(withField[0], withField[1], withField[2], withField[3], withField[4])
		if got < base {
			t.Errorf("adding field %d decreased score: %d -> %d", i, base, got)
		}
	}

	// And from a partially filled record.
	partial := []string{"Joe's", "", "555-0100", "", ""}
	base = Completeness(partial[0], partial[1], partial[2], partial[3], partial[4])
	for i, v := range partial {
		if v != "" {
			continue
		}
		withField := make([]string, len(partial))
		copy(withField, partial)
		withField[i] = values[i]
		got := Completeness(withField[0], withField[1], withField[2], withField[3], withField[4])
		if got < base {
			t.Errorf("adding field %d decreased score: %d -> %d", i, base, got)
		}
	}
}
