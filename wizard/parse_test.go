package wizard

import "testing"

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```jsonl\n{\"x\":1}\n```", `{"x":1}`},
		{"```\nplain\n```", "plain"},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"no fences", "no fences"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeJSONLHandlesArrayAndLines(t *testing.T) {
	objs := NormalizeJSONL(`[{"a": 1}, {"b": 2}]`)
	if len(objs) != 2 {
		t.Fatalf("Expected 2 objects from array, got %d", len(objs))
	}
	if objs[0]["a"] != float64(1) || objs[1]["b"] != float64(2) {
		t.Errorf("Unexpected objects %v", objs)
	}

	objs2 := NormalizeJSONL("{}\n{\"c\":3}")
	if len(objs2) != 2 {
		t.Fatalf("Expected 2 objects from JSONL, got %d", len(objs2))
	}
	if objs2[1]["c"] != float64(3) {
		t.Errorf("Unexpected objects %v", objs2)
	}

	objs3 := NormalizeJSONL("```jsonl\n{\"x\":1}\n```")
	if len(objs3) != 1 || objs3[0]["x"] != float64(1) {
		t.Errorf("Expected fenced JSONL to parse, got %v", objs3)
	}
}

func TestNormalizeJSONLSkipsGarbage(t *testing.T) {
	raw := "not json\n{\"ok\":true}\n\n[1,2,3]\n\"just a string\"\nnull"
	objs := NormalizeJSONL(raw)
	if len(objs) != 1 {
		t.Fatalf("Expected only the object line to survive, got %v", objs)
	}
	if objs[0]["ok"] != true {
		t.Errorf("Unexpected object %v", objs[0])
	}
}

func TestNormalizeJSONLDropsNonObjectArrayEntries(t *testing.T) {
	objs := NormalizeJSONL(`[{"a": 1}, "stray", 42, null]`)
	if len(objs) != 1 {
		t.Fatalf("Expected non-objects dropped, got %v", objs)
	}
}

func TestNormalizeJSONLEmptyInput(t *testing.T) {
	if objs := NormalizeJSONL(""); len(objs) != 0 {
		t.Errorf("Expected no objects for empty input, got %v", objs)
	}
}
