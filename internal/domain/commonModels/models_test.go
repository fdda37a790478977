package commonModels

import "testing"

func TestReference_Source(t *testing.T) {
	tests := []struct {
		ref  Reference
		want string
	}{
		{Reference{DocName: "Fitzpatrick", PageNum: 12}, "Fitzpatrick (page 12)"},
		{Reference{ChunkId: "c-1"}, "c-1"},
	}
	for _, tt := range tests {
		if got := tt.ref.Source(); got != tt.want {
			t.Errorf("Source() = %q, want %q", got, tt.want)
		}
	}
}
