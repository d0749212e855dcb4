package compute

import (
	"bytes"
	"testing"
)

func TestReadbackMapProtocol(t *testing.T) {
	rb := NewReadback()

	// Poll without a request stays pending.
	if got := rb.Poll(); got != MapPending {
		t.Fatalf("Poll before RequestMap = %v, want MapPending", got)
	}

	data := []byte{1, 2, 3, 4}
	rb.Publish(data)
	rb.RequestMap()

	if got := rb.Poll(); got != MapReady {
		t.Fatalf("Poll after publish+request = %v, want MapReady", got)
	}
	if !bytes.Equal(rb.Bytes(), data) {
		t.Errorf("Bytes = %v, want %v", rb.Bytes(), data)
	}
	rb.Unmap()

	// The buffer stays published; a second map succeeds.
	rb.RequestMap()
	if got := rb.Poll(); got != MapReady {
		t.Errorf("re-map Poll = %v, want MapReady", got)
	}
	rb.Unmap()
}

func TestReadbackMapFailsWithoutPublish(t *testing.T) {
	rb := NewReadback()
	rb.RequestMap()

	if got := rb.Poll(); got != MapFailed {
		t.Fatalf("Poll without publish = %v, want MapFailed", got)
	}
}

func TestReadbackBytesPanicsUnmapped(t *testing.T) {
	rb := NewReadback()
	rb.Publish([]byte{1})

	defer func() {
		if recover() == nil {
			t.Error("Bytes without a successful map should panic")
		}
	}()
	rb.Bytes()
}

func TestReadbackPublishIsACopy(t *testing.T) {
	rb := NewReadback()
	data := []byte{1, 2, 3}
	rb.Publish(data)
	data[0] = 99 // mutate the caller's buffer after publish

	rb.RequestMap()
	if rb.Poll() != MapReady {
		t.Fatal("map failed")
	}
	defer rb.Unmap()

	if rb.Bytes()[0] != 1 {
		t.Error("Publish must snapshot the data, not alias it")
	}
}
