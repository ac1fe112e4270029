package ring_test

import (
	"bytes"
	"testing"

	"github.com/vimdaw/vimdaw/ring"
)

func TestWriteRead(t *testing.T) {
	r := ring.New(64)
	if !r.Write(ring.CmdAddNote, []byte("abc")) {
		t.Fatal("write into an empty ring failed")
	}
	if !r.Write(ring.CmdPlay, nil) {
		t.Fatal("write of an empty payload failed")
	}
	cmd, payload, ok := r.Read(nil)
	if !ok || cmd != ring.CmdAddNote || string(payload) != "abc" {
		t.Fatalf("first read: got %v %q %v", cmd, payload, ok)
	}
	cmd, payload, ok = r.Read(payload)
	if !ok || cmd != ring.CmdPlay || len(payload) != 0 {
		t.Fatalf("second read: got %v %q %v", cmd, payload, ok)
	}
	if _, _, ok := r.Read(nil); ok {
		t.Fatal("read from a drained ring succeeded")
	}
	if r.Used() != 0 {
		t.Errorf("used %d after draining", r.Used())
	}
}

func TestFullRingRejectsWrite(t *testing.T) {
	r := ring.New(32)
	// 31 bytes are usable: one frame of 8+20 fits, a second 8 byte frame does not
	if !r.Write(ring.CmdAddNotes, make([]byte, 20)) {
		t.Fatal("first write failed")
	}
	used := r.Used()
	if r.Write(ring.CmdStop, nil) {
		t.Fatal("write into a full ring succeeded")
	}
	if r.Used() != used {
		t.Errorf("rejected write changed used bytes: %d -> %d", used, r.Used())
	}
	if r.Write(ring.CmdStop, make([]byte, 32)) {
		t.Fatal("frame larger than the ring was accepted")
	}
}

func TestWrapAround(t *testing.T) {
	r := ring.New(32)
	var buf []byte
	for i := 0; i < 50; i++ {
		payload := bytes.Repeat([]byte{byte(i)}, i%13)
		if !r.Write(ring.Cmd(i), payload) {
			t.Fatalf("write %d failed with %d bytes free", i, r.Free())
		}
		var (
			cmd ring.Cmd
			ok  bool
		)
		cmd, buf, ok = r.Read(buf)
		if !ok {
			t.Fatalf("read %d failed", i)
		}
		if cmd != ring.Cmd(i) {
			t.Errorf("read %d: header %d", i, cmd)
		}
		if !bytes.Equal(buf, payload) {
			t.Errorf("read %d: payload %v, want %v", i, buf, payload)
		}
	}
}

func TestFreeAndUsed(t *testing.T) {
	r := ring.New(16)
	if r.Free() != 15 || r.Used() != 0 {
		t.Fatalf("empty ring: free %d used %d", r.Free(), r.Used())
	}
	r.Write(ring.CmdSeek, []byte{1, 2})
	if r.Free() != 5 || r.Used() != 10 {
		t.Errorf("after write: free %d used %d", r.Free(), r.Used())
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	r := ring.New(128)
	const n = 10000
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; {
			if r.Write(ring.CmdPosition, []byte{byte(i), byte(i >> 8)}) {
				i++
			}
		}
	}()
	var buf []byte
	for i := 0; i < n; {
		var ok bool
		var cmd ring.Cmd
		cmd, buf, ok = r.Read(buf)
		if !ok {
			continue
		}
		if cmd != ring.CmdPosition || len(buf) != 2 || int(buf[0])|int(buf[1])<<8 != i&0xffff {
			t.Fatalf("frame %d corrupted: %v %v", i, cmd, buf)
		}
		i++
	}
	<-done
}

func TestCmdString(t *testing.T) {
	if ring.CmdDeleteNotesSame.String() != "DeleteNotesSame" {
		t.Errorf("got %s", ring.CmdDeleteNotesSame)
	}
	if ring.Cmd(99).String() != "Cmd(99)" {
		t.Errorf("got %s", ring.Cmd(99))
	}
}
