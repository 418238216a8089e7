// Package block implements the abstract block device SimpleFS is built on:
// fixed-size, block-granular, positioned I/O over a backing stream, with a
// mounted flag and read/write counters.
//
// Bounds are checked with a dedicated helper before every transfer, and the
// backing store is an abstract stream rather than a concrete *os.File, so
// tests can swap in an in-memory io.ReadWriteSeeker instead of a real file.
package block

import (
	"fmt"
	"io"
	"os"

	"github.com/sixletters/simplefs/sfserrors"
)

// Size is the fixed size, in bytes, of every block transferred by a Device.
const Size = 4096

// ID identifies a block on the device, in [0, TotalBlocks).
type ID uint32

// Device is a fixed-block-size view over a backing stream. The exposed
// fields are informational; callers should treat them as read-only.
type Device struct {
	// TotalBlocks is the number of addressable blocks on this device.
	TotalBlocks uint32
	// Reads is incremented once per successful Read.
	Reads uint64
	// Writes is incremented once per successful Write.
	Writes uint64
	// Mounted is the single source of truth for the device's mount
	// lifecycle; it is toggled only by the engine's Mount/Unmount, never
	// by Device itself.
	Mounted bool

	stream io.ReadWriteSeeker
	closer io.Closer
}

// Open creates or opens the backing file at path read-write, extends it to
// hold blocks blocks if it is shorter (a longer file is left as it is), and
// returns a Device with its counters cleared and Mounted false.
func Open(path string, blocks uint32) (*Device, error) {
	if blocks == 0 || blocks > (1<<31) {
		return nil, sfserrors.BadArgs.WithMessage(
			fmt.Sprintf("refusing to open device with %d blocks", blocks))
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, sfserrors.IoFailure.Wrap(err)
	}

	size := int64(blocks) * Size
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, sfserrors.IoFailure.Wrap(err)
	}
	if info.Size() < size {
		if err := file.Truncate(size); err != nil {
			file.Close()
			return nil, sfserrors.IoFailure.Wrap(err)
		}
	}

	return NewDevice(file, file, blocks), nil
}

// NewDevice wraps an already-open stream as a Device. closer may be nil if
// the stream does not need to be released on Close. This constructor is what
// lets tests back a Device with an in-memory io.ReadWriteSeeker instead of a
// real file.
func NewDevice(stream io.ReadWriteSeeker, closer io.Closer, blocks uint32) *Device {
	return &Device{
		TotalBlocks: blocks,
		stream:      stream,
		closer:      closer,
	}
}

// Close releases the backing file, if one was supplied.
func (d *Device) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

func (d *Device) checkBounds(b ID) error {
	if d == nil || d.stream == nil {
		return sfserrors.BadArgs.WithMessage("no device attached")
	}
	if uint32(b) >= d.TotalBlocks {
		return sfserrors.BadArgs.WithMessage(
			fmt.Sprintf("block %d not in range [0, %d)", b, d.TotalBlocks))
	}
	return nil
}

func (d *Device) seekToBlock(b ID) error {
	_, err := d.stream.Seek(int64(b)*Size, io.SeekStart)
	if err != nil {
		return sfserrors.IoFailure.Wrap(err)
	}
	return nil
}

// Read transfers exactly Size bytes from block b into buf, which must be at
// least Size bytes long. On success it returns Size and increments Reads.
func (d *Device) Read(b ID, buf []byte) (int, error) {
	if err := d.checkBounds(b); err != nil {
		return -1, err
	}
	if len(buf) < Size {
		return -1, sfserrors.BadArgs.WithMessage("buffer smaller than block size")
	}
	if err := d.seekToBlock(b); err != nil {
		return -1, err
	}

	n, err := io.ReadFull(d.stream, buf[:Size])
	if err != nil {
		return -1, sfserrors.IoFailure.Wrap(err)
	}
	d.Reads++
	return n, nil
}

// Write transfers exactly Size bytes from buf to block b. On success it
// returns Size and increments Writes.
func (d *Device) Write(b ID, buf []byte) (int, error) {
	if err := d.checkBounds(b); err != nil {
		return -1, err
	}
	if len(buf) < Size {
		return -1, sfserrors.BadArgs.WithMessage("buffer smaller than block size")
	}
	if err := d.seekToBlock(b); err != nil {
		return -1, err
	}

	n, err := d.stream.Write(buf[:Size])
	if err != nil {
		return -1, sfserrors.IoFailure.Wrap(err)
	}
	d.Writes++
	return n, nil
}
