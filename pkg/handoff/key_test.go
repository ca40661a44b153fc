package handoff

import "testing"

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "raw dataset",
			key:  Key{RunID: "run-1", Name: RawDataset},
			want: "animelist:run-1:animelist_df",
		},
		{
			name: "cleaned records",
			key:  Key{RunID: "run-1", Name: CleanedRecords},
			want: "animelist:run-1:cleaned_animelist_df",
		},
		{
			name: "no run id",
			key:  Key{Name: RawDataset},
			want: "animelist:animelist_df",
		},
		{
			name: "blank run id",
			key:  Key{RunID: "  ", Name: RawDataset},
			want: "animelist:animelist_df",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
