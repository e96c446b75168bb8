package tgui

import "testing"

func TestDataAndSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ns, action, payload string
		want                string
	}{
		{"faq", "cat", "vacation", "faq:cat:vacation"},
		{"menu", "main", "", "menu:main"},
		{"rem", "del", "42", "rem:del:42"},
	}
	for _, tc := range tests {
		got := Data(tc.ns, tc.action, tc.payload)
		if got != tc.want {
			t.Errorf("Data(%q,%q,%q) = %q, want %q", tc.ns, tc.action, tc.payload, got, tc.want)
		}
		ns, action, payload := Split(got)
		if ns != tc.ns || action != tc.action || payload != tc.payload {
			t.Errorf("Split(%q) = %q,%q,%q", got, ns, action, payload)
		}
	}

	// Payload keeps extra colons intact.
	if _, _, payload := Split("a:b:c:d"); payload != "c:d" {
		t.Errorf("Split payload = %q, want c:d", payload)
	}
}

func TestCheckData(t *testing.T) {
	t.Parallel()

	if err := CheckData("faq:q:vac_days"); err != nil {
		t.Fatalf("short data: %v", err)
	}
	long := Data("faq", "q", string(make([]byte, 70)))
	if err := CheckData(long); err != ErrCallbackDataTooLong {
		t.Fatalf("long data err = %v", err)
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}

	p := Paginate(items, 0, 7)
	if len(p.Items) != 7 || p.HasPrev || !p.HasNext {
		t.Fatalf("page 0 = %+v", p)
	}
	p = Paginate(items, 1, 7)
	if len(p.Items) != 2 || !p.HasPrev || p.HasNext {
		t.Fatalf("page 1 = %+v", p)
	}
	p = Paginate(items, 99, 7)
	if len(p.Items) != 0 || p.HasNext {
		t.Fatalf("far page = %+v", p)
	}
	p = Paginate([]int{}, 0, 7)
	if len(p.Items) != 0 || p.HasPrev || p.HasNext {
		t.Fatalf("empty = %+v", p)
	}
}

func TestPageLabel(t *testing.T) {
	t.Parallel()

	if got := PageLabel(0, 7, 9); got != "Стр. 1/2" {
		t.Errorf("PageLabel = %q", got)
	}
	if got := PageLabel(5, 7, 9); got != "Стр. 2/2" {
		t.Errorf("clamped PageLabel = %q", got)
	}
	if got := PageLabel(0, 7, 0); got != "Стр. 1/1" {
		t.Errorf("empty PageLabel = %q", got)
	}
}

func TestTruncRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"короткий", 30, "короткий"},
		{"напоминание про отпуск", 11, "напоминание…"},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc…"},
		{"x", 0, ""},
	}
	for _, tc := range tests {
		if got := TruncRunes(tc.in, tc.n); got != tc.want {
			t.Errorf("TruncRunes(%q,%d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
