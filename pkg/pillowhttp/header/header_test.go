package header

import "testing"

func TestCollectionAddAndGet(t *testing.T) {
	c := New(4)
	c.AddString("Content-Type", "application/json")

	v, ok := c.GetString("content-type")
	if !ok {
		t.Fatalf("GetString(content-type) missing")
	}
	if v != "application/json" {
		t.Errorf("GetString = %q, want %q", v, "application/json")
	}
}

func TestCollectionPreservesDuplicatesAndOrder(t *testing.T) {
	c := New(4)
	c.AddString("Set-Cookie", "a=1")
	c.AddString("X-Trace", "one")
	c.AddString("Set-Cookie", "b=2")

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	all := c.GetAll([]byte("set-cookie"))
	if len(all) != 2 || string(all[0]) != "a=1" || string(all[1]) != "b=2" {
		t.Errorf("GetAll(Set-Cookie) = %v, want [a=1 b=2]", all)
	}

	// First match wins for Get, in insertion order.
	if v := c.Get([]byte("Set-Cookie")); string(v) != "a=1" {
		t.Errorf("Get(Set-Cookie) = %q, want a=1", v)
	}

	var names []string
	c.VisitAll(func(name, _ []byte) bool {
		names = append(names, string(name))
		return true
	})
	want := []string{"Set-Cookie", "X-Trace", "Set-Cookie"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("VisitAll order[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestCollectionDel(t *testing.T) {
	c := New(4)
	c.AddString("X-A", "1")
	c.AddString("X-B", "2")
	c.AddString("x-a", "3")

	c.Del([]byte("X-A"))

	if c.Has([]byte("X-A")) {
		t.Errorf("X-A should have been removed")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCollectionEqual(t *testing.T) {
	a := New(2)
	a.AddString("Accept", "*")
	a.AddString("X-Foo", "bar")

	b := New(2)
	b.AddString("accept", "*")
	b.AddString("X-Foo", "bar")

	if !a.Equal(b) {
		t.Errorf("expected collections to be equal regardless of name case")
	}

	c := New(2)
	c.AddString("Accept", "*")
	c.AddString("X-Foo", "BAR")
	if a.Equal(c) {
		t.Errorf("expected collections with different values to be unequal")
	}
}

func TestCollectionEqualEmpty(t *testing.T) {
	var a Collection
	if !a.Equal(nil) {
		t.Errorf("empty collection should equal nil collection")
	}
}
