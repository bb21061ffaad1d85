package history

import "testing"

func TestNavigator(t *testing.T) {
	n := NewNavigator(nil, 10)
	n.Push("first")
	n.Push("second")

	steps := []struct {
		name string
		move func() (string, bool)
		want string
		ok   bool
	}{
		{"previous from draft", func() (string, bool) { return n.Previous("current") }, "second", true},
		{"previous again", func() (string, bool) { return n.Previous("ignored") }, "first", true},
		{"past the oldest", func() (string, bool) { return n.Previous("ignored") }, "", false},
		{"next", n.Next, "second", true},
		{"back to draft", n.Next, "current", true},
		{"nothing newer", n.Next, "", false},
	}
	for _, s := range steps {
		got, ok := s.move()
		if got != s.want || ok != s.ok {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", s.name, got, ok, s.want, s.ok)
		}
	}
}

func TestNavigatorEmpty(t *testing.T) {
	n := NewNavigator(nil, 10)
	if _, ok := n.Previous("x"); ok {
		t.Error("empty history has nothing to show")
	}
	if n.IsNavigating() {
		t.Error("should not be navigating")
	}
}

func TestNavigatorPush(t *testing.T) {
	n := NewNavigator([]string{"b", "a"}, 3)
	if n.Push("  ") {
		t.Error("blank push should be skipped")
	}
	if n.Push("b") {
		t.Error("repeat of newest should be skipped")
	}
	n.Push("c")
	n.Push("d")
	if n.Len() != 3 {
		t.Errorf("Len = %d, want 3", n.Len())
	}

	n.Previous("")
	if !n.IsNavigating() {
		t.Error("should be navigating")
	}
	n.Push("e")
	if n.IsNavigating() {
		t.Error("push should reset navigation")
	}
	if got, _ := n.Previous(""); got != "e" {
		t.Errorf("newest = %q, want e", got)
	}
}

func TestNavigatorCopiesEntries(t *testing.T) {
	src := []string{"b", "a"}
	n := NewNavigator(src, 10)
	n.Push("c")
	if src[0] != "b" {
		t.Error("navigator must not modify the caller's slice")
	}
}
