package pocket

import (
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *jsonObjectWriter)
		want  string
	}{
		{
			name:  "empty",
			build: func(w *jsonObjectWriter) {},
			want:  `{}`,
		},
		{
			name: "field order",
			build: func(w *jsonObjectWriter) {
				w.Append("type", "expense").Append("amount", "12.5").Append("category", "Ocio")
			},
			want: `{"type":"expense","amount":"12.5","category":"Ocio"}`,
		},
		{
			name: "optional",
			build: func(w *jsonObjectWriter) {
				w.Append("paid", 0).Optional("notes", "").Optional("rate", 0).Optional("borrower", "Ana")
			},
			want: `{"paid":0,"borrower":"Ana"}`,
		},
		{
			name: "embed",
			build: func(w *jsonObjectWriter) {
				w.Append("id", "a1").Embed([]byte(` { "month":"2025-03" } `)).Embed([]byte(`{}`)).Append("device", "d")
			},
			want: `{"id":"a1","month":"2025-03","device":"d"}`,
		},
		{
			name: "embed from",
			build: func(w *jsonObjectWriter) {
				w.EmbedFrom(struct {
					Title string `json:"title"`
				}{"Seguro"}).Append("done", true)
			},
			want: `{"title":"Seguro","done":true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w jsonObjectWriter
			tt.build(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJsonObjectWriter_Errors(t *testing.T) {
	var w jsonObjectWriter
	w.Append("amounts", []string{"1"}).Embed([]byte(`[1, 2]`)).Append("ignored", 1)
	if _, err := w.MarshalJSON(); err == nil {
		t.Errorf("MarshalJSON() after embedding an array succeeded, want an error")
	}

	var u jsonObjectWriter
	u.Append("ch", make(chan int))
	if _, err := u.MarshalJSON(); err == nil {
		t.Errorf("MarshalJSON() with a channel succeeded, want an error")
	}
}
