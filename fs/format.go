package fs

import (
	"fmt"

	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// Format writes a fresh superblock and clears every other block on device.
// It refuses to run on an already-mounted device and reports success iff
// every required block write succeeded.
func Format(device *block.Device) bool {
	if device == nil || device.Mounted {
		return false
	}

	totalBlocks := device.TotalBlocks
	inodeBlocks := ondisk.InodeBlocksForTotal(totalBlocks)
	if 1+inodeBlocks > totalBlocks {
		return false
	}
	inodes := inodeBlocks * ondisk.InodesPerBlock

	sb := ondisk.Superblock{
		MagicNumber: ondisk.MagicNumber,
		TotalBlocks: totalBlocks,
		TotalInodes: inodes,
		Blocks:      totalBlocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodes,
	}

	encoded := ondisk.EncodeSuperblock(sb)
	if _, err := device.Write(0, encoded[:]); err != nil {
		return false
	}

	var zero [block.Size]byte
	for b := uint32(1); b < totalBlocks; b++ {
		if _, err := device.Write(block.ID(b), zero[:]); err != nil {
			return false
		}
	}
	return true
}

// Debug prints a one-line-per-field superblock summary: total blocks,
// inode-table blocks, and total inodes.
func Debug(device *block.Device) {
	var buf [block.Size]byte
	if _, err := device.Read(0, buf[:]); err != nil {
		return
	}
	sb := ondisk.DecodeSuperblock(buf[:])
	printSuperblockSummary(sb)
}

func printSuperblockSummary(sb ondisk.Superblock) {
	fmt.Printf("%d blocks\n", sb.Blocks)
	fmt.Printf("%d inode blocks\n", sb.InodeBlocks)
	fmt.Printf("%d inodes\n", sb.Inodes)
}
