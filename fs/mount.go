package fs

import (
	"github.com/boljen/go-bitmap"

	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// Mount attaches device to fs after verifying its superblock and
// reconstructing the free-block bitmap. It refuses to run if fs already has
// a device, if device is already mounted, or if verification fails; on
// success it sets device.Mounted.
func Mount(fs *FileSystem, device *block.Device) bool {
	if fs == nil || device == nil {
		return false
	}
	if fs.Mounted() || device.Mounted {
		return false
	}

	var buf [block.Size]byte
	if _, err := device.Read(0, buf[:]); err != nil {
		return false
	}
	sb := ondisk.DecodeSuperblock(buf[:])
	if !verifySuperblock(sb, device) {
		return false
	}

	bm, err := buildFreeBlockBitmap(device, sb)
	if err != nil {
		return false
	}

	fs.meta = sb
	fs.device = device
	fs.bitmap = bm
	device.Mounted = true
	return true
}

func verifySuperblock(sb ondisk.Superblock, device *block.Device) bool {
	if sb.MagicNumber != ondisk.MagicNumber {
		return false
	}
	if sb.InodeBlocks != ondisk.InodeBlocksForTotal(sb.TotalBlocks) {
		return false
	}
	if sb.Inodes != sb.InodeBlocks*ondisk.InodesPerBlock {
		return false
	}
	if sb.TotalBlocks != device.TotalBlocks {
		return false
	}
	if 1+sb.InodeBlocks > sb.TotalBlocks {
		return false
	}
	return true
}

// buildFreeBlockBitmap reconstructs the in-memory free-block bitmap by
// scanning the inode table. Blocks 0 and the inode table are left marked
// non-free (the bitmap.New zero value); data blocks start free and are
// cleared for every block a valid inode actually references.
func buildFreeBlockBitmap(device *block.Device, sb ondisk.Superblock) (bitmap.Bitmap, error) {
	bm := bitmap.New(int(sb.TotalBlocks))

	dataStart := 1 + sb.InodeBlocks
	for b := dataStart; b < sb.TotalBlocks; b++ {
		bm.Set(int(b), true)
	}

	var buf [block.Size]byte
	for tableBlock := uint32(1); tableBlock < 1+sb.InodeBlocks; tableBlock++ {
		if _, err := device.Read(block.ID(tableBlock), buf[:]); err != nil {
			return nil, err
		}
		inodes := ondisk.DecodeInodeTable(buf[:])
		for _, inode := range inodes {
			if !inode.IsValid() {
				continue
			}
			if err := markInodeBlocksUsed(device, sb, inode, bm); err != nil {
				return nil, err
			}
		}
	}
	return bm, nil
}

// markInodeBlocksUsed clears the bitmap bit for every block a valid inode
// references: its direct pointers, and — if its size exceeds the span
// covered by direct pointers alone — its indirect block and the pointers
// packed inside it. Out-of-range or malformed pointers are skipped rather
// than treated as an error.
func markInodeBlocksUsed(device *block.Device, sb ondisk.Superblock, inode ondisk.Inode, bm bitmap.Bitmap) error {
	dataStart := 1 + sb.InodeBlocks

	for _, ptr := range inode.Direct {
		if ptr == 0 {
			continue
		}
		if ptr >= dataStart && ptr < sb.TotalBlocks {
			bm.Set(int(ptr), false)
		}
	}

	if inode.Size <= ondisk.DirectSpanBytes {
		return nil
	}

	if inode.Indirect < dataStart || inode.Indirect >= sb.TotalBlocks {
		return nil
	}
	bm.Set(int(inode.Indirect), false)

	var buf [block.Size]byte
	if _, err := device.Read(block.ID(inode.Indirect), buf[:]); err != nil {
		return err
	}
	pointers := ondisk.DecodePointerBlock(buf[:])

	count := ceilDiv(inode.Size-ondisk.DirectSpanBytes, ondisk.BlockSize)
	for i := uint32(0); i < count && i < ondisk.PointersPerBlock; i++ {
		ptr := pointers[i]
		if ptr == 0 {
			continue
		}
		if ptr >= dataStart && ptr < sb.TotalBlocks {
			bm.Set(int(ptr), false)
		}
	}
	return nil
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
