package templating

import "testing"

func TestProcess(t *testing.T) {
	tests := []struct {
		name    string
		content string
		data    map[string]string
		want    string
	}{
		{
			name:    "simple substitution",
			content: "Hi {{name}}",
			data:    map[string]string{"name": "Ada"},
			want:    "Hi Ada",
		},
		{
			name:    "case insensitive key",
			content: "Hi {{Name}}",
			data:    map[string]string{"name": "Ada"},
			want:    "Hi Ada",
		},
		{
			name:    "whitespace inside braces",
			content: "Hi {{ name }}",
			data:    map[string]string{"name": "Ada"},
			want:    "Hi Ada",
		},
		{
			name:    "missing key left untouched",
			content: "Hi {{Missing}}",
			data:    map[string]string{"name": "Ada"},
			want:    "Hi {{Missing}}",
		},
		{
			name:    "empty data returns content",
			content: "Hi {{Missing}}",
			data:    nil,
			want:    "Hi {{Missing}}",
		},
		{
			name:    "empty content",
			content: "",
			data:    map[string]string{"name": "Ada"},
			want:    "",
		},
		{
			name:    "multiple placeholders",
			content: "{{greeting}} {{name}}, order {{ORDER}} shipped",
			data:    map[string]string{"Greeting": "Hello", "name": "Ada", "order": "42"},
			want:    "Hello Ada, order 42 shipped",
		},
		{
			name:    "no recursive substitution",
			content: "{{a}}",
			data:    map[string]string{"a": "{{b}}", "b": "deep"},
			want:    "{{b}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Process(tt.content, tt.data); got != tt.want {
				t.Fatalf("Process(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
