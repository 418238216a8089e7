package fs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/fs"
	"github.com/sixletters/simplefs/ondisk"
)

func newMemDevice(t *testing.T, blocks uint32) *block.Device {
	t.Helper()
	stream := bytesextra.NewReadWriteSeeker(make([]byte, int(blocks)*block.Size))
	return block.NewDevice(stream, nil, blocks)
}

func formattedAndMounted(t *testing.T, blocks uint32) (*block.Device, *fs.FileSystem) {
	t.Helper()
	device := newMemDevice(t, blocks)
	require.True(t, fs.Format(device))
	var fileSystem fs.FileSystem
	require.True(t, fs.Mount(&fileSystem, device))
	return device, &fileSystem
}

// Formatting then mounting derives the expected geometry for several disk
// sizes.
func TestFormatMountRoundTrip(t *testing.T) {
	for _, blocks := range []uint32{2, 10, 20, 200} {
		device, fileSystem := formattedAndMounted(t, blocks)

		expectedInodeBlocks := ondisk.InodeBlocksForTotal(blocks)
		meta := fileSystem.Meta()
		assert.Equal(t, ondisk.MagicNumber, meta.MagicNumber)
		assert.Equal(t, blocks, meta.TotalBlocks)
		assert.Equal(t, expectedInodeBlocks, meta.InodeBlocks)
		assert.Equal(t, expectedInodeBlocks*ondisk.InodesPerBlock, meta.Inodes)

		fs.Unmount(fileSystem)
		device.Close()
	}
}

// A freshly formatted 10-block image reports the geometry derived from its
// size.
func TestScenarioFormatGeometry(t *testing.T) {
	device := newMemDevice(t, 10)
	require.True(t, fs.Format(device))
	var fileSystem fs.FileSystem
	require.True(t, fs.Mount(&fileSystem, device))

	meta := fileSystem.Meta()
	assert.EqualValues(t, 10, meta.Blocks)
	assert.EqualValues(t, 1, meta.InodeBlocks)
	assert.EqualValues(t, 128, meta.Inodes)
}

// Inode numbers are handed out in strictly increasing order starting at 0,
// and creation fails once every slot is allocated.
func TestCreateSequentialNumbering(t *testing.T) {
	_, fileSystem := formattedAndMounted(t, 10) // 1 inode block -> 128 inodes

	for i := int64(0); i < 128; i++ {
		got := fs.Create(fileSystem)
		require.Equal(t, i, got)
	}
	assert.EqualValues(t, -1, fs.Create(fileSystem))
}

// Removing an inode frees its slot for the next ascending-first-fit Create.
func TestCreateRemoveReusesSlot(t *testing.T) {
	_, fileSystem := formattedAndMounted(t, 10)

	first := fs.Create(fileSystem)
	require.EqualValues(t, 0, first)
	second := fs.Create(fileSystem)
	require.EqualValues(t, 1, second)

	require.True(t, fs.Remove(fileSystem, uint64(first)))

	third := fs.Create(fileSystem)
	assert.EqualValues(t, first, third)
}

// A large buffer written at offset 0 reads back byte-for-byte identical.
func TestWriteReadRoundTrip(t *testing.T) {
	_, fileSystem := formattedAndMounted(t, 200)
	inodeNumber := fs.Create(fileSystem)
	require.GreaterOrEqual(t, inodeNumber, int64(0))

	data := make([]byte, 21000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	written := fs.Write(fileSystem, uint64(inodeNumber), data, uint64(len(data)), 0)
	require.EqualValues(t, len(data), written)
	assert.EqualValues(t, len(data), fs.Stat(fileSystem, uint64(inodeNumber)))

	out := make([]byte, len(data))
	readN := fs.Read(fileSystem, uint64(inodeNumber), out, uint64(len(out)), 0)
	require.EqualValues(t, len(data), readN)
	assert.True(t, bytes.Equal(data, out))
}

// Writing past the current size leaves the gap readable as zero.
func TestWritePastEndLeavesHoleAsZero(t *testing.T) {
	_, fileSystem := formattedAndMounted(t, 20)
	inodeNumber := fs.Create(fileSystem)
	require.GreaterOrEqual(t, inodeNumber, int64(0))

	written := fs.Write(fileSystem, uint64(inodeNumber), []byte("hello"), 5, 0)
	require.EqualValues(t, 5, written)

	written = fs.Write(fileSystem, uint64(inodeNumber), []byte("X"), 1, 100)
	require.EqualValues(t, 1, written)
	assert.EqualValues(t, 101, fs.Stat(fileSystem, uint64(inodeNumber)))

	gap := make([]byte, 95)
	n := fs.Read(fileSystem, uint64(inodeNumber), gap, uint64(len(gap)), 5)
	require.EqualValues(t, len(gap), n)
	assert.Equal(t, make([]byte, len(gap)), gap)
}

// A small write followed by a full-length read round-trips a short string.
func TestScenarioTinyWrite(t *testing.T) {
	_, fileSystem := formattedAndMounted(t, 20)

	inodeNumber := fs.Create(fileSystem)
	require.EqualValues(t, 0, inodeNumber)

	written := fs.Write(fileSystem, uint64(inodeNumber), []byte("hello"), 5, 0)
	require.EqualValues(t, 5, written)
	assert.EqualValues(t, 5, fs.Stat(fileSystem, uint64(inodeNumber)))

	buf := make([]byte, 5)
	n := fs.Read(fileSystem, uint64(inodeNumber), buf, 5, 0)
	require.EqualValues(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

// A write that crosses into the indirect block survives an unmount and
// remount, and the inode can then be removed and an equally large write
// made on a fresh inode.
func TestScenarioIndirectCrossingAndReclaim(t *testing.T) {
	device := newMemDevice(t, 200)
	require.True(t, fs.Format(device))

	var fileSystem fs.FileSystem
	require.True(t, fs.Mount(&fileSystem, device))

	inodeNumber := fs.Create(&fileSystem)
	require.EqualValues(t, 0, inodeNumber)

	pattern := make([]byte, 21000)
	for i := range pattern {
		pattern[i] = byte(i % 256)
	}
	written := fs.Write(&fileSystem, uint64(inodeNumber), pattern, uint64(len(pattern)), 0)
	require.EqualValues(t, len(pattern), written)

	fs.Unmount(&fileSystem)
	require.True(t, fs.Mount(&fileSystem, device))

	out := make([]byte, len(pattern))
	n := fs.Read(&fileSystem, uint64(inodeNumber), out, uint64(len(out)), 0)
	require.EqualValues(t, len(pattern), n)
	assert.True(t, bytes.Equal(pattern, out))
	assert.EqualValues(t, len(pattern), fs.Stat(&fileSystem, uint64(inodeNumber)))

	require.True(t, fs.Remove(&fileSystem, uint64(inodeNumber)))

	fs.Unmount(&fileSystem)
	require.True(t, fs.Mount(&fileSystem, device))

	// A new, equally large write on a fresh inode succeeds. The image has
	// far more than 7 free data blocks, so this does not by itself show the
	// removed inode's blocks were freed; TestWhiteboxIndirectCrossingConsumesSevenBlocks
	// checks that block by block.
	newInode := fs.Create(&fileSystem)
	require.GreaterOrEqual(t, newInode, int64(0))
	written = fs.Write(&fileSystem, uint64(newInode), pattern, uint64(len(pattern)), 0)
	assert.EqualValues(t, len(pattern), written)
}

// A corrupted magic number in block 0 fails mount and leaves the device
// unmounted.
func TestMountRejectsBadMagicNumber(t *testing.T) {
	device := newMemDevice(t, 10)
	require.True(t, fs.Format(device))

	corrupt := make([]byte, block.Size)
	_, err := device.Read(0, corrupt)
	require.NoError(t, err)
	corrupt[0] ^= 0xFF
	_, err = device.Write(0, corrupt)
	require.NoError(t, err)

	var fileSystem fs.FileSystem
	assert.False(t, fs.Mount(&fileSystem, device))
	assert.False(t, device.Mounted)
}

// Mounting an already-mounted device fails without disturbing the existing
// mount, and formatting a mounted device fails outright.
func TestNoDoubleMountOrFormat(t *testing.T) {
	device := newMemDevice(t, 10)
	require.True(t, fs.Format(device))

	var first fs.FileSystem
	require.True(t, fs.Mount(&first, device))

	var second fs.FileSystem
	assert.False(t, fs.Mount(&second, device))
	assert.True(t, device.Mounted)

	assert.False(t, fs.Format(device))
}

// Writing more data than the device has free blocks for stops early and
// reports the short count, with size reflecting what was actually stored.
func TestScenarioWriteExhaustsDevice(t *testing.T) {
	// 1 superblock + 1 inode-table block (since inode_blocks = ceil(0.1*5) = 1)
	// + 3 data blocks.
	_, fileSystem := formattedAndMounted(t, 5)

	inodeNumber := fs.Create(fileSystem)
	require.EqualValues(t, 0, inodeNumber)

	pattern := bytes.Repeat([]byte{0x7A}, 20000)
	written := fs.Write(fileSystem, uint64(inodeNumber), pattern, uint64(len(pattern)), 0)
	assert.EqualValues(t, 3*ondisk.BlockSize, written)
	assert.EqualValues(t, 3*ondisk.BlockSize, fs.Stat(fileSystem, uint64(inodeNumber)))
}

// Disk counters increment exactly once per successful I/O; bad arguments
// never increment them.
func TestDiskCounters(t *testing.T) {
	device := newMemDevice(t, 4)
	buf := make([]byte, block.Size)

	_, err := device.Write(0, buf)
	require.NoError(t, err)
	_, err = device.Read(0, buf)
	require.NoError(t, err)
	assert.EqualValues(t, 1, device.Writes)
	assert.EqualValues(t, 1, device.Reads)

	_, err = device.Read(99, buf)
	assert.Error(t, err)
	_, err = device.Write(99, buf)
	assert.Error(t, err)
	assert.EqualValues(t, 1, device.Writes)
	assert.EqualValues(t, 1, device.Reads)
}

func TestStatAndRemoveOnInvalidInode(t *testing.T) {
	_, fileSystem := formattedAndMounted(t, 10)

	assert.EqualValues(t, -1, fs.Stat(fileSystem, 0))
	assert.False(t, fs.Remove(fileSystem, 0))

	inodeNumber := fs.Create(fileSystem)
	require.EqualValues(t, 0, inodeNumber)
	require.True(t, fs.Remove(fileSystem, uint64(inodeNumber)))
	assert.EqualValues(t, -1, fs.Stat(fileSystem, uint64(inodeNumber)))
}

func TestReadWriteRejectUnmountedFileSystem(t *testing.T) {
	var fileSystem fs.FileSystem
	assert.EqualValues(t, -1, fs.Create(&fileSystem))
	assert.EqualValues(t, -1, fs.Stat(&fileSystem, 0))
	assert.False(t, fs.Remove(&fileSystem, 0))
	assert.EqualValues(t, -1, fs.Read(&fileSystem, 0, make([]byte, 1), 1, 0))
	assert.EqualValues(t, -1, fs.Write(&fileSystem, 0, make([]byte, 1), 1, 0))
}
