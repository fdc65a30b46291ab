package testutil

import (
	"io"
	"testing"
)

func TestPtr(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		p := Ptr("hello")
		if p == nil {
			t.Fatal("expected non-nil pointer")
		}
		if *p != "hello" {
			t.Fatalf("expected %q, got %q", "hello", *p)
		}
	})

	t.Run("float64", func(t *testing.T) {
		p := Ptr(1.618)
		if *p != 1.618 {
			t.Fatalf("expected %f, got %f", 1.618, *p)
		}
	})

	t.Run("returns distinct pointers", func(t *testing.T) {
		a := Ptr(1)
		b := Ptr(1)
		if a == b {
			t.Fatal("expected distinct pointers for separate calls")
		}
	})
}

func TestFailAfterWriter(t *testing.T) {
	w := &FailAfterWriter{OK: 2}
	for i, chunk := range []string{"a", "b"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("write %d: unexpected error %v", i, err)
		}
	}
	if _, err := w.Write([]byte("c")); err != ErrSinkFailed {
		t.Fatalf("expected ErrSinkFailed, got %v", err)
	}
	if string(w.Bytes()) != "ab" {
		t.Fatalf("expected %q, got %q", "ab", w.Bytes())
	}
	if w.Calls != 3 {
		t.Fatalf("expected 3 calls, got %d", w.Calls)
	}
}

func TestChunkedReader(t *testing.T) {
	r := &ChunkedReader{Chunks: [][]byte{[]byte("one"), []byte("two")}}
	buf := make([]byte, 16)

	n, err := r.Read(buf)
	if err != nil || string(buf[:n]) != "one" {
		t.Fatalf("first read = %q, %v", buf[:n], err)
	}
	n, err = r.Read(buf)
	if err != nil || string(buf[:n]) != "two" {
		t.Fatalf("second read = %q, %v", buf[:n], err)
	}
	if _, err = r.Read(buf); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
