// Package ondisk defines SimpleFS's on-disk structures and the codec that
// converts them to and from raw block buffers.
//
// Rather than overlaying one raw buffer as a superblock, inode table, or
// pointer table, the package exposes explicit typed values plus an explicit
// codec for each. Encoding goes through encoding/binary.Write into a
// github.com/noxer/bytewriter.Writer wrapped around a fixed-size output
// slice.
package ondisk

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// BlockSize is the fixed size, in bytes, of every on-disk block.
const BlockSize = 4096

// MagicNumber identifies a block 0 as a valid SimpleFS superblock.
const MagicNumber uint32 = 0xF0F03410

// InodesPerBlock is the number of 32-byte inodes packed into one inode
// table block (4096 / 32).
const InodesPerBlock = 128

// DirectPointers is the number of direct block pointers stored in an inode.
const DirectPointers = 5

// PointersPerBlock is the number of uint32 pointers packed into one
// indirect block (4096 / 4).
const PointersPerBlock = 1024

// InodeSize is the packed, on-disk size of one inode, in bytes.
const InodeSize = 32

// DirectSpanBytes is the largest logical size an inode can reach using only
// its direct pointers, before an indirect block is needed.
const DirectSpanBytes = DirectPointers * BlockSize

// MaxFileSize is the largest logical size an inode can reach: five direct
// blocks plus one indirect block's worth of pointers.
const MaxFileSize = DirectSpanBytes + PointersPerBlock*BlockSize

// Superblock is the decoded form of block 0's first 24 bytes.
type Superblock struct {
	MagicNumber uint32
	TotalBlocks uint32
	TotalInodes uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// Inode is the decoded form of one 32-byte packed inode record.
type Inode struct {
	Valid    uint32
	Size     uint32
	Direct   [DirectPointers]uint32
	Indirect uint32
}

// IsValid reports whether this inode slot is currently allocated.
func (i Inode) IsValid() bool {
	return i.Valid != 0
}

// EncodeSuperblock serializes sb into a freshly zeroed 4096-byte block
// buffer, little-endian, occupying the first 24 bytes. The remainder is
// zeroed to aid forensics.
func EncodeSuperblock(sb Superblock) [BlockSize]byte {
	var block [BlockSize]byte
	w := bytewriter.New(block[:])
	binary.Write(w, binary.LittleEndian, &sb)
	return block
}

// DecodeSuperblock deserializes a 4096-byte block buffer into a Superblock.
func DecodeSuperblock(buf []byte) Superblock {
	var sb Superblock
	binary.Read(bytes.NewReader(buf[:BlockSize]), binary.LittleEndian, &sb)
	return sb
}

// EncodeInodeTable serializes 128 inodes, packed end-to-end starting at
// offset 0, into a 4096-byte block buffer.
func EncodeInodeTable(inodes [InodesPerBlock]Inode) [BlockSize]byte {
	var block [BlockSize]byte
	w := bytewriter.New(block[:])
	for i := range inodes {
		binary.Write(w, binary.LittleEndian, &inodes[i])
	}
	return block
}

// DecodeInodeTable deserializes a 4096-byte block buffer into 128 inodes.
func DecodeInodeTable(buf []byte) [InodesPerBlock]Inode {
	var inodes [InodesPerBlock]Inode
	r := bytes.NewReader(buf[:BlockSize])
	for i := range inodes {
		binary.Read(r, binary.LittleEndian, &inodes[i])
	}
	return inodes
}

// EncodePointerBlock serializes 1024 densely packed little-endian uint32
// block pointers into a 4096-byte block buffer.
func EncodePointerBlock(pointers [PointersPerBlock]uint32) [BlockSize]byte {
	var block [BlockSize]byte
	w := bytewriter.New(block[:])
	binary.Write(w, binary.LittleEndian, &pointers)
	return block
}

// DecodePointerBlock deserializes a 4096-byte block buffer into 1024
// uint32 block pointers.
func DecodePointerBlock(buf []byte) [PointersPerBlock]uint32 {
	var pointers [PointersPerBlock]uint32
	binary.Read(bytes.NewReader(buf[:BlockSize]), binary.LittleEndian, &pointers)
	return pointers
}

// InodeBlocksForTotal computes ceil(0.10 * totalBlocks) using integer
// arithmetic: ceil(n/10) == (n + 9) / 10 under truncating integer division,
// evaluated in 64 bits so the addition cannot wrap. This avoids
// floating-point rounding at the boundary between representable doubles
// for every totalBlocks a uint32 can hold.
func InodeBlocksForTotal(totalBlocks uint32) uint32 {
	return uint32((uint64(totalBlocks) + 9) / 10)
}
