package hashtab

import (
	"bufio"
	"fmt"
	stdhash "hash"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/asivery/qmldiff/internal/hash"
)

// hashingWriter tees every write through a blake2b-256 digest, used to
// compute the optional checksum trailer (enrichment on top of spec §6's
// required framing -- a missing or stale checksum is never fatal).
type hashingWriter struct {
	w io.Writer
	h stdhash.Hash
}

func newHashingWriter(w io.Writer) *hashingWriter {
	h, _ := blake2b.New256(nil)
	return &hashingWriter{w: w, h: h}
}

func (c *hashingWriter) Write(p []byte) (int, error) {
	c.h.Write(p)
	return c.w.Write(p)
}

func writeChecksum(hw *hashingWriter) error {
	sum := hw.h.Sum(nil)
	return writeRecord(hw.w, hash.ChecksumKey, string(sum))
}

// Verify re-reads a framed hashtab file and checks its checksum trailer, if
// any. It returns (true, nil) when a checksum is present and matches,
// (false, nil) when no checksum record is present (tables written before
// the checksum existed, or written without one), and (false, err) only on
// an actual mismatch or malformed trailer.
func Verify(r io.Reader) (ok bool, err error) {
	br := bufio.NewReader(r)
	hw, _ := blake2b.New256(nil)
	first := true
	var trailer []byte
	for {
		h, payload, rerr := readRecord(br)
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return false, rerr
		}
		if first {
			first = false
			writeRecordInto(hw, h, payload)
			continue
		}
		if h == hash.ChecksumKey {
			trailer = []byte(payload)
			continue
		}
		writeRecordInto(hw, h, payload)
	}
	if trailer == nil {
		return false, nil
	}
	sum := hw.Sum(nil)
	if len(sum) != len(trailer) {
		return false, errChecksumMismatch
	}
	for i := range sum {
		if sum[i] != trailer[i] {
			return false, errChecksumMismatch
		}
	}
	return true, nil
}

var errChecksumMismatch = fmt.Errorf("hashtab: checksum mismatch")

func writeRecordInto(h stdhash.Hash, hashVal uint64, payload string) {
	_ = writeRecord(h, hashVal, payload)
}
