package logview

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Tag
	}{
		{"error marker", "[Node 3] 🔴 Booking failed: slot taken. Retrying...", TagError},
		{"success marker", "[Node 3] 🟢 Slot found! Submitting booking for Budi...", TagSuccess},
		{"success word", "[Node 3] Success: ticket saved", TagSuccess},
		{"pending marker", "[Node 3] ⏳ Checking quota for JKT-04 (2026-09-01)...", TagPending},
		{"system marker", "[System] ⚙️ Added new node: Budi Santoso", TagSystem},
		{"system word", "[System] maintenance window resumed", TagSystem},
		{"neutral", "[Node 3] Warning: Node is already running.", TagNeutral},
		{"empty", "", TagNeutral},
		{"error beats success", "[Node 3] 🔴 Success handler crashed", TagError},
		{"success beats pending", "[Node 3] 🟢 done ⏳ cleanup queued", TagSuccess},
		{"pending beats system", "[System] ⏳ warming up", TagPending},
		{"green system line is success", "[System] 🟢 Web panel connected successfully. Waiting for commands...", TagSuccess},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.line); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.line, got, tc.want)
			}
		})
	}
}

func TestTagString(t *testing.T) {
	cases := map[Tag]string{
		TagNeutral: "neutral",
		TagError:   "error",
		TagSuccess: "success",
		TagPending: "pending",
		TagSystem:  "system",
		Tag(99):    "neutral",
	}
	for tag, want := range cases {
		if got := tag.String(); got != want {
			t.Fatalf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}
